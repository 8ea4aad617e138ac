package service

import (
	"context"
	"fmt"
	"time"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/notify"
	"shuttlestats/backend/internal/repository/local"
)

// Schedule list views accepted by ScheduleManager.View.
const (
	ScheduleViewToday    = "today"
	ScheduleViewWeek     = "week"
	ScheduleViewMonth    = "month"
	ScheduleViewUpcoming = "upcoming"
	ScheduleViewAll      = "all"
)

// ScheduleStats summarize the week around now.
type ScheduleStats struct {
	SessionsThisWeek int     `json:"sessionsThisWeek"`
	UpcomingThisWeek int     `json:"upcomingThisWeek"`
	HoursThisWeek    float64 `json:"hoursThisWeek"`
}

// ScheduleManager owns the planned-session collection for one owner.
// Reminder settings ride along on their own legacy storage key when a
// local store is available.
type ScheduleManager struct {
	*Manager[*domain.ScheduleSession]

	settings *local.Store // nil on the pure-remote path
	notified map[string]bool
}

// NewScheduleManager builds the manager; call Start before use.
// settings may be nil when no local store exists.
func NewScheduleManager(owner string, source Source[*domain.ScheduleSession], settings *local.Store, deps Deps) *ScheduleManager {
	m := newManager(domain.KindSchedule, "schedule", owner, source, deps)
	return &ScheduleManager{Manager: m, settings: settings, notified: map[string]bool{}}
}

// View lists sessions for a calendar view, soonest first. Unknown
// views behave as "all".
func (m *ScheduleManager) View(view string) []*domain.ScheduleSession {
	now := m.deps.Now()
	today := now.Format(domain.DateLayout)

	var pred func(*domain.ScheduleSession) bool
	switch view {
	case ScheduleViewToday:
		pred = func(s *domain.ScheduleSession) bool { return s.Date == today }
	case ScheduleViewWeek:
		start, end := weekBounds(now)
		pred = func(s *domain.ScheduleSession) bool { return s.Date >= start && s.Date <= end }
	case ScheduleViewMonth:
		prefix := now.Format("2006-01")
		pred = func(s *domain.ScheduleSession) bool { return len(s.Date) >= 7 && s.Date[:7] == prefix }
	case ScheduleViewUpcoming:
		pred = func(s *domain.ScheduleSession) bool { return s.Date >= today }
	}

	return m.List(pred, func(a, b *domain.ScheduleSession) bool {
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})
}

// CreateRecurring expands a base session according to the recurrence
// rule and creates each occurrence. Returns the created sessions.
func (m *ScheduleManager) CreateRecurring(ctx context.Context, base *domain.ScheduleSession, rule domain.Recurrence) ([]*domain.ScheduleSession, error) {
	if err := validate.Struct(&rule); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	start, err := time.Parse(domain.DateLayout, base.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ErrValidation, base.Date)
	}
	until, err := time.Parse(domain.DateLayout, rule.Until)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", ErrValidation, rule.Until)
	}

	weekdays := map[time.Weekday]bool{}
	for _, d := range rule.Weekdays {
		weekdays[d] = true
	}

	var created []*domain.ScheduleSession
	for day := start; !day.After(until); day = day.AddDate(0, 0, 1) {
		if rule.Type == domain.RecurWeekly && !weekdays[day.Weekday()] {
			continue
		}
		occurrence := *base
		occurrence.Meta = domain.Meta{}
		occurrence.Date = day.Format(domain.DateLayout)
		occurrence.Recurring = true

		rec, err := m.Create(ctx, &occurrence)
		if err != nil {
			return created, err
		}
		created = append(created, rec)
	}
	if len(created) > 0 {
		m.deps.Msgs.Show(fmt.Sprintf("%d recurring sessions created!", len(created)), notify.Success, 0)
	}
	return created, nil
}

// DueReminders returns sessions whose reminder lead window covers now.
// Each session fires at most once per manager lifetime.
func (m *ScheduleManager) DueReminders(now time.Time) []*domain.ScheduleSession {
	var due []*domain.ScheduleSession
	for _, s := range m.Snapshot() {
		if !s.ReminderEnabled || m.notified[s.RecordID()] {
			continue
		}
		start, err := s.StartAt(now.Location())
		if err != nil {
			continue
		}
		lead := time.Duration(s.ReminderMinutes) * time.Minute
		if !now.Before(start.Add(-lead)) && now.Before(start) {
			m.notified[s.RecordID()] = true
			due = append(due, s)
		}
	}
	return due
}

// Stats summarizes this week's schedule.
func (m *ScheduleManager) Stats() ScheduleStats {
	now := m.deps.Now()
	start, end := weekBounds(now)
	today := now.Format(domain.DateLayout)

	var stats ScheduleStats
	for _, s := range m.Snapshot() {
		if s.Date < start || s.Date > end {
			continue
		}
		stats.SessionsThisWeek++
		stats.HoursThisWeek += float64(s.Duration) / 60
		if s.Date >= today {
			stats.UpcomingThisWeek++
		}
	}
	return stats
}

// ReminderSettings loads the persisted reminder preferences, with a
// 30-minute default lead when nothing is stored.
func (m *ScheduleManager) ReminderSettings() domain.ReminderSettings {
	settings := domain.ReminderSettings{Enabled: true, DefaultLeadMinutes: 30}
	if m.settings != nil {
		m.settings.Load(local.LegacyReminderSettingsKey, &settings)
	}
	return settings
}

// SaveReminderSettings persists the reminder preferences.
func (m *ScheduleManager) SaveReminderSettings(settings domain.ReminderSettings) error {
	if m.settings == nil {
		return nil
	}
	return m.settings.Save(local.LegacyReminderSettingsKey, settings)
}

// weekBounds returns the Sunday-to-Saturday date range containing t.
func weekBounds(t time.Time) (start, end string) {
	weekStart := t.AddDate(0, 0, -int(t.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 6)
	return weekStart.Format(domain.DateLayout), weekEnd.Format(domain.DateLayout)
}
