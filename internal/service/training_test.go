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

func newTrainingManager(t *testing.T, now time.Time) *TrainingManager {
	t.Helper()
	store, err := local.NewStore(t.TempDir(), "practice@gmail.com", zap.NewNop().Sugar())
	require.NoError(t, err)
	deps := testDeps(0)
	deps.Now = func() time.Time { return now }
	bucket := local.NewBucket[*domain.TrainingSession](store, domain.KindTraining)
	m := NewTrainingManager("player@example.com", LocalSource(bucket), deps)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)
	return m
}

func logSession(t *testing.T, m *TrainingManager, date string, duration, rating int, focus ...string) {
	t.Helper()
	_, err := m.Create(context.Background(), &domain.TrainingSession{
		Date:       date,
		Duration:   duration,
		Type:       "technique",
		FocusAreas: focus,
		Rating:     rating,
		Effort:     7,
	})
	require.NoError(t, err)
}

func TestTrainingRequiresFocusArea(t *testing.T) {
	m := newTrainingManager(t, time.Now())
	_, err := m.Create(context.Background(), &domain.TrainingSession{
		Date: "2026-06-01", Duration: 60, Type: "technique", Rating: 5, Effort: 5,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTrainingStats(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	m := newTrainingManager(t, now)

	logSession(t, m, "2026-06-10", 60, 8, "smash", "footwork")
	logSession(t, m, "2026-06-12", 90, 6, "smash")
	logSession(t, m, "2026-05-30", 30, 7, "serve")

	stats := m.Stats()
	assert.Equal(t, 3, stats.TotalSessions)
	assert.Equal(t, 180, stats.TotalMinutes)
	assert.Equal(t, 60, stats.AvgDuration)
	assert.InDelta(t, 7.0, stats.AvgRating, 0.001)
	assert.Equal(t, "Smash", stats.TopFocusArea)
	assert.Equal(t, 2, stats.SessionsThisMonth, "the May session is outside this month")
}

func TestStreakCountsConsecutiveDaysEndingToday(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	m := newTrainingManager(t, now)

	logSession(t, m, "2026-06-15", 60, 8, "smash")
	logSession(t, m, "2026-06-14", 60, 8, "smash")
	logSession(t, m, "2026-06-13", 60, 8, "smash")
	assert.Equal(t, 3, m.Streak())
}

func TestStreakBrokenByGap(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	m := newTrainingManager(t, now)

	logSession(t, m, "2026-06-15", 60, 8, "smash")
	logSession(t, m, "2026-06-13", 60, 8, "smash") // gap on the 14th
	assert.Equal(t, 1, m.Streak())
}

func TestStreakZeroWithoutSessionToday(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	m := newTrainingManager(t, now)

	logSession(t, m, "2026-06-14", 60, 8, "smash")
	assert.Equal(t, 0, m.Streak())
}

func TestMultipleSessionsSameDayCountOnceForStreak(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	m := newTrainingManager(t, now)

	logSession(t, m, "2026-06-15", 60, 8, "smash")
	logSession(t, m, "2026-06-15", 30, 6, "net")
	assert.Equal(t, 1, m.Streak())
}
