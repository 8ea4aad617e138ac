package service

import (
	"errors"
	"time"

	"shuttlestats/backend/internal/domain"
)

// TrainingStats are the aggregate figures shown above the session
// list, recomputed from the full collection on every call.
type TrainingStats struct {
	TotalSessions     int     `json:"totalSessions"`
	TotalMinutes      int     `json:"totalMinutes"`
	AvgDuration       int     `json:"avgDuration"`
	AvgRating         float64 `json:"avgRating"`
	TopFocusArea      string  `json:"topFocusArea"`
	StreakDays        int     `json:"streakDays"`
	SessionsThisMonth int     `json:"sessionsThisMonth"`
}

// TrainingManager owns the training-session collection for one owner.
type TrainingManager struct {
	*Manager[*domain.TrainingSession]
}

// NewTrainingManager builds the manager; call Start before use.
func NewTrainingManager(owner string, source Source[*domain.TrainingSession], deps Deps) *TrainingManager {
	m := newManager(domain.KindTraining, "session", owner, source, deps)
	m.checkRecord = func(s *domain.TrainingSession) error {
		if len(s.FocusAreas) == 0 {
			return errors.New("select at least one focus area")
		}
		return nil
	}
	return &TrainingManager{Manager: m}
}

// Stats recomputes the aggregate training figures.
func (m *TrainingManager) Stats() TrainingStats {
	sessions := m.Snapshot()
	stats := TrainingStats{TotalSessions: len(sessions)}
	if len(sessions) == 0 {
		return stats
	}

	var ratingSum int
	focusCounts := map[string]int{}
	now := m.deps.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for _, s := range sessions {
		stats.TotalMinutes += s.Duration
		ratingSum += s.Rating
		for _, area := range s.FocusAreas {
			focusCounts[area]++
		}
		if day, err := time.ParseInLocation(domain.DateLayout, s.Date, now.Location()); err == nil && !day.Before(monthStart) {
			stats.SessionsThisMonth++
		}
	}

	stats.AvgDuration = stats.TotalMinutes / len(sessions)
	stats.AvgRating = float64(ratingSum) / float64(len(sessions))

	best, bestCount := "", 0
	for area, count := range focusCounts {
		if count > bestCount || (count == bestCount && area < best) {
			best, bestCount = area, count
		}
	}
	stats.TopFocusArea = domain.FocusAreaLabel(best)
	stats.StreakDays = m.Streak()
	return stats
}

// Streak counts consecutive calendar days with at least one session,
// ending today. No session today means no streak; a one-day gap breaks
// it.
func (m *TrainingManager) Streak() int {
	sessions := m.Snapshot()
	if len(sessions) == 0 {
		return 0
	}

	days := map[string]bool{}
	for _, s := range sessions {
		days[s.Date] = true
	}

	streak := 0
	cursor := m.deps.Now()
	for days[cursor.Format(domain.DateLayout)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
