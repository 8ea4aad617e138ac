package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/notify"
)

// Goal list filters and sorts accepted by GoalManager.Filtered.
const (
	GoalFilterAll       = "all"
	GoalFilterActive    = "active"
	GoalFilterCompleted = "completed"
	GoalFilterOverdue   = "overdue"

	GoalSortNewest   = "newest"
	GoalSortOldest   = "oldest"
	GoalSortDeadline = "deadline"
	GoalSortPriority = "priority"
)

// GoalStats are the aggregate goal counters.
type GoalStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Active         int `json:"active"`
	CompletionRate int `json:"completionRate"` // percent, rounded
}

// GoalManager owns the goal collection for one owner.
type GoalManager struct {
	*Manager[*domain.Goal]
}

// NewGoalManager builds the manager; call Start before use.
func NewGoalManager(owner string, source Source[*domain.Goal], deps Deps) *GoalManager {
	m := newManager(domain.KindGoal, "goal", owner, source, deps)
	m.prepare = func(g *domain.Goal) {
		if g.Priority == "" {
			g.Priority = domain.PriorityMedium
		}
	}
	return &GoalManager{Manager: m}
}

// Filtered lists goals through the named filter and sort. Unknown
// names behave as "all"/"newest".
func (m *GoalManager) Filtered(filter, sortName string) []*domain.Goal {
	now := m.deps.Now()

	var pred func(*domain.Goal) bool
	switch filter {
	case GoalFilterActive:
		pred = func(g *domain.Goal) bool { return !g.Completed }
	case GoalFilterCompleted:
		pred = func(g *domain.Goal) bool { return g.Completed }
	case GoalFilterOverdue:
		pred = func(g *domain.Goal) bool { return g.Overdue(now) }
	}

	var less func(a, b *domain.Goal) bool
	switch sortName {
	case GoalSortOldest:
		less = func(a, b *domain.Goal) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case GoalSortDeadline:
		// Goals without a deadline sort last.
		less = func(a, b *domain.Goal) bool {
			if a.Deadline == "" {
				return false
			}
			if b.Deadline == "" {
				return true
			}
			return a.Deadline < b.Deadline
		}
	case GoalSortPriority:
		less = func(a, b *domain.Goal) bool {
			return domain.PriorityRank(a.Priority) > domain.PriorityRank(b.Priority)
		}
	default:
		less = func(a, b *domain.Goal) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	return m.List(pred, less)
}

// ToggleComplete flips completion. Completing a measurable goal snaps
// its progress to the target.
func (m *GoalManager) ToggleComplete(ctx context.Context, id string) (*domain.Goal, error) {
	goal, err := m.Update(ctx, id, func(g *domain.Goal) {
		g.SetCompleted(!g.Completed)
	})
	if err != nil {
		return nil, err
	}
	if goal.Completed {
		m.deps.Msgs.Show("Goal completed!", notify.Success, 0)
	} else {
		m.deps.Msgs.Show("Goal marked as active.", notify.Info, 0)
	}
	return goal, nil
}

// UpdateProgress records a new progress value; reaching the target
// auto-completes the goal.
func (m *GoalManager) UpdateProgress(ctx context.Context, id string, value float64) (*domain.Goal, error) {
	var completedNow bool
	goal, err := m.Update(ctx, id, func(g *domain.Goal) {
		completedNow = g.ApplyProgress(value)
	})
	if err != nil {
		return nil, err
	}
	if completedNow {
		m.deps.Msgs.Show(fmt.Sprintf("Goal achieved: %s", goal.Title), notify.Success, 0)
	}
	return goal, nil
}

// SyncWithActivity bumps the progress of open session-count and
// match-count goals to the given activity totals. Progress never moves
// backwards.
func (m *GoalManager) SyncWithActivity(ctx context.Context, trainingCount, matchCount int) error {
	for _, goal := range m.Snapshot() {
		if goal.Completed || goal.Target == nil {
			continue
		}
		var total float64
		switch {
		case goal.Category == "training" && goal.Unit == "sessions":
			total = float64(trainingCount)
		case goal.Category == "matches" && goal.Unit == "matches":
			total = float64(matchCount)
		default:
			continue
		}
		if goal.Current >= total {
			continue
		}
		if _, err := m.UpdateProgress(ctx, goal.RecordID(), total); err != nil {
			return err
		}
	}
	return nil
}

// Stats recomputes the goal counters.
func (m *GoalManager) Stats() GoalStats {
	goals := m.Snapshot()
	stats := GoalStats{Total: len(goals)}
	for _, g := range goals {
		if g.Completed {
			stats.Completed++
		}
	}
	stats.Active = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats
}

// DueSoonestDeadline returns the next uncompleted deadline, if any.
func (m *GoalManager) DueSoonestDeadline(now time.Time) (string, bool) {
	best := ""
	for _, g := range m.Snapshot() {
		if g.Completed || g.Deadline == "" || g.Overdue(now) {
			continue
		}
		if best == "" || g.Deadline < best {
			best = g.Deadline
		}
	}
	return best, best != ""
}
