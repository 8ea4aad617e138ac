package export

import (
	"strings"
	"testing"
	"time"

	"shuttlestats/backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(id string, mutate func(*domain.ScheduleSession)) *domain.ScheduleSession {
	s := &domain.ScheduleSession{
		Title:    "Club night",
		Type:     "training",
		Date:     "2026-06-18",
		Time:     "19:00",
		Duration: 120,
		Location: "Sports Hall B",
	}
	s.SetRecordID(id)
	if mutate != nil {
		mutate(s)
	}
	return s
}

func TestScheduleICS(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	ics := ScheduleICS([]*domain.ScheduleSession{
		testSession("schedule_1_abc", nil),
	}, now, time.UTC)

	lines := strings.Split(ics, "\r\n")
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
	assert.Contains(t, lines, "PRODID:-//ShuttleStats//Badminton Schedule//EN")
	assert.Contains(t, lines, "UID:schedule_1_abc@shuttlestats.com")
	assert.Contains(t, lines, "DTSTAMP:20260615T090000Z")
	assert.Contains(t, lines, "DTSTART:20260618T190000Z")
	assert.Contains(t, lines, "DTEND:20260618T210000Z")
	assert.Contains(t, lines, "SUMMARY:Club night")
	assert.Contains(t, lines, "DESCRIPTION:TRAINING session")
	assert.Contains(t, lines, "LOCATION:Sports Hall B")
	assert.NotContains(t, ics, "VALARM")
	assert.NotContains(t, ics, "\n\r", "only CRLF line breaks")
}

func TestScheduleICSAlarmBlock(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	ics := ScheduleICS([]*domain.ScheduleSession{
		testSession("schedule_2_def", func(s *domain.ScheduleSession) {
			s.ReminderEnabled = true
			s.ReminderMinutes = 45
			s.Notes = "bring spare grips"
		}),
	}, now, time.UTC)

	lines := strings.Split(ics, "\r\n")
	alarmIdx := -1
	for i, line := range lines {
		if line == "BEGIN:VALARM" {
			alarmIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, alarmIdx, 0)
	assert.Equal(t, "TRIGGER:-PT45M", lines[alarmIdx+1])
	assert.Equal(t, "ACTION:DISPLAY", lines[alarmIdx+2])
	assert.Equal(t, "DESCRIPTION:Reminder: Club night", lines[alarmIdx+3])
	assert.Equal(t, "END:VALARM", lines[alarmIdx+4])
	assert.Contains(t, lines, "DESCRIPTION:bring spare grips")
}

func TestScheduleICSSkipsUnparseableSessions(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	ics := ScheduleICS([]*domain.ScheduleSession{
		testSession("schedule_3_bad", func(s *domain.ScheduleSession) {
			s.Date = "soonish"
		}),
	}, now, time.UTC)
	assert.NotContains(t, ics, "VEVENT")
}
