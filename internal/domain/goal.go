package domain

import "time"

// Goal priorities, ordered for the priority sort.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PriorityRank maps a priority to its sort weight (higher first).
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Goal is a player-defined target, optionally measurable.
type Goal struct {
	Meta        `bson:",inline"`
	Title       string   `bson:"title" json:"title" validate:"required"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Category    string   `bson:"category,omitempty" json:"category,omitempty"`
	Priority    string   `bson:"priority" json:"priority" validate:"omitempty,oneof=high medium low"`
	Target      *float64 `bson:"target,omitempty" json:"target,omitempty"`
	Unit        string   `bson:"unit,omitempty" json:"unit,omitempty"`
	Current     float64  `bson:"current" json:"current"`
	Completed   bool     `bson:"completed" json:"completed"`
	Deadline    string   `bson:"deadline,omitempty" json:"deadline,omitempty"`
}

// ApplyProgress records a new progress value. Reaching or exceeding the
// numeric target marks the goal completed; falling short never clears
// an earlier completion. Reports whether the completed flag flipped on.
func (g *Goal) ApplyProgress(value float64) bool {
	g.Current = value
	if !g.Completed && g.Target != nil && value >= *g.Target {
		g.Completed = true
		return true
	}
	return false
}

// SetCompleted toggles completion. Completing a measurable goal snaps
// its progress to the target.
func (g *Goal) SetCompleted(done bool) {
	g.Completed = done
	if done && g.Target != nil {
		g.Current = *g.Target
	}
}

// Overdue reports whether the goal has a deadline in the past and is
// still open. Malformed deadlines are never overdue.
func (g *Goal) Overdue(now time.Time) bool {
	if g.Completed || g.Deadline == "" {
		return false
	}
	deadline, err := time.Parse(DateLayout, g.Deadline)
	if err != nil {
		return false
	}
	return deadline.Before(now.Truncate(24 * time.Hour))
}
