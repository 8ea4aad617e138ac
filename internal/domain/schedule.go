package domain

import (
	"fmt"
	"time"
)

// ScheduleSession is a planned (future) session on the calendar.
type ScheduleSession struct {
	Meta            `bson:",inline"`
	Title           string `bson:"title" json:"title" validate:"required"`
	Type            string `bson:"type" json:"type" validate:"required"`
	Date            string `bson:"date" json:"date" validate:"required"`
	Time            string `bson:"time" json:"time" validate:"required"` // HH:MM, 24h
	Duration        int    `bson:"duration" json:"duration" validate:"gt=0"`
	Location        string `bson:"location,omitempty" json:"location,omitempty"`
	Opponent        string `bson:"opponent,omitempty" json:"opponent,omitempty"`
	Coach           string `bson:"coach,omitempty" json:"coach,omitempty"`
	Intensity       string `bson:"intensity,omitempty" json:"intensity,omitempty"`
	Notes           string `bson:"notes,omitempty" json:"notes,omitempty"`
	Recurring       bool   `bson:"recurring,omitempty" json:"recurring,omitempty"`
	ReminderEnabled bool   `bson:"reminderEnabled,omitempty" json:"reminderEnabled,omitempty"`
	ReminderMinutes int    `bson:"reminderMinutes,omitempty" json:"reminderMinutes,omitempty"`
}

// StartAt parses the session's date and time in the given location.
func (s *ScheduleSession) StartAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout+" 15:04", fmt.Sprintf("%s %s", s.Date, s.Time), loc)
}

// EndAt is StartAt plus the session duration.
func (s *ScheduleSession) EndAt(loc *time.Location) (time.Time, error) {
	start, err := s.StartAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(s.Duration) * time.Minute), nil
}

// ReminderSettings are the user's reminder preferences, persisted under
// the shuttleStats_reminderSettings storage key.
type ReminderSettings struct {
	Enabled            bool `json:"enabled" bson:"enabled"`
	DefaultLeadMinutes int  `json:"defaultLeadMinutes" bson:"defaultLeadMinutes"`
}

// RecurrenceType values accepted by the schedule recurrence expansion.
const (
	RecurDaily  = "daily"
	RecurWeekly = "weekly"
)

// Recurrence describes how a recurring schedule entry repeats.
type Recurrence struct {
	Type     string         `json:"type" validate:"required,oneof=daily weekly"`
	Weekdays []time.Weekday `json:"weekdays,omitempty"` // weekly only
	Until    string         `json:"until" validate:"required"` // inclusive end date
}
