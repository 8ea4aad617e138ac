package service

import (
	"context"
	"testing"
	"time"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/repository/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGoalManagerAt(t *testing.T, now time.Time) *GoalManager {
	t.Helper()
	store, err := local.NewStore(t.TempDir(), "practice@gmail.com", zap.NewNop().Sugar())
	require.NoError(t, err)
	deps := testDeps(0)
	base := now
	// Successive creates get distinct timestamps so the newest/oldest
	// sorts are deterministic.
	deps.Now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	bucket := local.NewBucket[*domain.Goal](store, domain.KindGoal)
	m := NewGoalManager("player@example.com", LocalSource(bucket), deps)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)
	return m
}

func mustCreateGoal(t *testing.T, m *GoalManager, g *domain.Goal) *domain.Goal {
	t.Helper()
	created, err := m.Create(context.Background(), g)
	require.NoError(t, err)
	return created
}

func target(v float64) *float64 { return &v }

func TestFilteredByStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newGoalManagerAt(t, now)

	mustCreateGoal(t, m, &domain.Goal{Title: "open"})
	done := mustCreateGoal(t, m, &domain.Goal{Title: "done"})
	late := mustCreateGoal(t, m, &domain.Goal{Title: "late", Deadline: "2026-06-01"})
	_, err := m.ToggleComplete(context.Background(), done.RecordID())
	require.NoError(t, err)

	active := m.Filtered(GoalFilterActive, GoalSortNewest)
	require.Len(t, active, 2)

	completed := m.Filtered(GoalFilterCompleted, GoalSortNewest)
	require.Len(t, completed, 1)
	assert.Equal(t, done.RecordID(), completed[0].RecordID())

	overdue := m.Filtered(GoalFilterOverdue, GoalSortNewest)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.RecordID(), overdue[0].RecordID())

	assert.Len(t, m.Filtered(GoalFilterAll, GoalSortNewest), 3)
}

func TestSortByDeadlinePutsUndatedLast(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newGoalManagerAt(t, now)

	mustCreateGoal(t, m, &domain.Goal{Title: "no deadline"})
	mustCreateGoal(t, m, &domain.Goal{Title: "july", Deadline: "2026-07-01"})
	mustCreateGoal(t, m, &domain.Goal{Title: "june", Deadline: "2026-06-20"})

	goals := m.Filtered(GoalFilterAll, GoalSortDeadline)
	require.Len(t, goals, 3)
	assert.Equal(t, "june", goals[0].Title)
	assert.Equal(t, "july", goals[1].Title)
	assert.Equal(t, "no deadline", goals[2].Title)
}

func TestSortByPriority(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newGoalManagerAt(t, now)

	mustCreateGoal(t, m, &domain.Goal{Title: "low", Priority: domain.PriorityLow})
	mustCreateGoal(t, m, &domain.Goal{Title: "high", Priority: domain.PriorityHigh})
	mustCreateGoal(t, m, &domain.Goal{Title: "medium"}) // defaults to medium

	goals := m.Filtered(GoalFilterAll, GoalSortPriority)
	require.Len(t, goals, 3)
	assert.Equal(t, "high", goals[0].Title)
	assert.Equal(t, "medium", goals[1].Title)
	assert.Equal(t, "low", goals[2].Title)
}

func TestToggleCompleteSnapsProgressToTarget(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newGoalManagerAt(t, now)

	goal := mustCreateGoal(t, m, &domain.Goal{Title: "sessions", Target: target(20), Current: 5})
	toggled, err := m.ToggleComplete(context.Background(), goal.RecordID())
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, 20.0, toggled.Current)

	reopened, err := m.ToggleComplete(context.Background(), goal.RecordID())
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
}

func TestProgressReachingTargetCompletes(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newGoalManagerAt(t, now)

	goal := mustCreateGoal(t, m, &domain.Goal{Title: "sessions", Target: target(10)})
	updated, err := m.UpdateProgress(context.Background(), goal.RecordID(), 10)
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	// Dropping below the target afterwards never un-completes.
	updated, err = m.UpdateProgress(context.Background(), goal.RecordID(), 4)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, 4.0, updated.Current)
}

func TestSyncWithActivityNeverMovesBackwards(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newGoalManagerAt(t, now)

	training := mustCreateGoal(t, m, &domain.Goal{
		Title: "log sessions", Category: "training", Unit: "sessions", Target: target(50), Current: 12,
	})
	matches := mustCreateGoal(t, m, &domain.Goal{
		Title: "play matches", Category: "matches", Unit: "matches", Target: target(10),
	})
	unrelated := mustCreateGoal(t, m, &domain.Goal{Title: "mindset"})

	require.NoError(t, m.SyncWithActivity(context.Background(), 8, 3))

	got, _ := m.Get(training.RecordID())
	assert.Equal(t, 12.0, got.Current, "8 sessions is behind the recorded 12")

	got, _ = m.Get(matches.RecordID())
	assert.Equal(t, 3.0, got.Current)

	got, _ = m.Get(unrelated.RecordID())
	assert.Equal(t, 0.0, got.Current)
}

func TestGoalStats(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m := newGoalManagerAt(t, now)

	mustCreateGoal(t, m, &domain.Goal{Title: "a"})
	done := mustCreateGoal(t, m, &domain.Goal{Title: "b"})
	mustCreateGoal(t, m, &domain.Goal{Title: "c"})
	_, err := m.ToggleComplete(context.Background(), done.RecordID())
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 33, stats.CompletionRate)
}
