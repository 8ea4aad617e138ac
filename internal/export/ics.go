package export

import (
	"fmt"
	"strings"
	"time"

	"shuttlestats/backend/internal/domain"
)

const icsTimeLayout = "20060102T150405Z"

// ScheduleICS renders the planned sessions as an iCalendar document
// with CRLF line endings. Sessions whose date or time fails to parse
// are skipped. Reminder-enabled sessions carry a display alarm with
// the session's lead time.
func ScheduleICS(sessions []*domain.ScheduleSession, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ShuttleStats//Badminton Schedule//EN",
		"CALSCALE:GREGORIAN",
	}
	stamp := now.UTC().Format(icsTimeLayout)

	for _, s := range sessions {
		start, err := s.StartAt(loc)
		if err != nil {
			continue
		}
		end := start.Add(time.Duration(s.Duration) * time.Minute)

		description := s.Notes
		if description == "" {
			description = strings.ToUpper(s.Type) + " session"
		}

		lines = append(lines,
			"BEGIN:VEVENT",
			fmt.Sprintf("UID:%s@shuttlestats.com", s.RecordID()),
			"DTSTAMP:"+stamp,
			"DTSTART:"+start.UTC().Format(icsTimeLayout),
			"DTEND:"+end.UTC().Format(icsTimeLayout),
			"SUMMARY:"+s.Title,
			"DESCRIPTION:"+description,
			"LOCATION:"+s.Location,
		)
		if s.ReminderEnabled {
			lines = append(lines,
				"BEGIN:VALARM",
				fmt.Sprintf("TRIGGER:-PT%dM", s.ReminderMinutes),
				"ACTION:DISPLAY",
				"DESCRIPTION:Reminder: "+s.Title,
				"END:VALARM",
			)
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n")
}
