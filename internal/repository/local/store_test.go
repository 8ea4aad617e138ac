package local

import (
	"os"
	"path/filepath"
	"testing"

	"shuttlestats/backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), "practice@gmail.com", zap.NewNop().Sugar())
	require.NoError(t, err)
	return store
}

func TestBucketRoundTrip(t *testing.T) {
	store := newTestStore(t)
	bucket := NewBucket[*domain.Goal](store, domain.KindGoal)

	saved := []*domain.Goal{
		{Meta: domain.Meta{ID: "g1", OwnerID: "kai@example.com"}, Title: "Win a local tournament"},
		{Meta: domain.Meta{ID: "g2", OwnerID: "kai@example.com"}, Title: "Train 3x per week", Current: 2},
	}
	require.NoError(t, bucket.Save("kai@example.com", saved))

	loaded := bucket.Load("kai@example.com")
	assert.Equal(t, saved, loaded)
}

func TestLoadMissingKeyYieldsEmptyCollection(t *testing.T) {
	store := newTestStore(t)
	bucket := NewBucket[*domain.Match](store, domain.KindMatch)

	loaded := bucket.Load("nobody@example.com")
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestLoadMalformedContentYieldsEmptyCollection(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "practice@gmail.com", zap.NewNop().Sugar())
	require.NoError(t, err)

	key := string(domain.KindTraining) + "_kai@example.com"
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0o644))

	bucket := NewBucket[*domain.TrainingSession](store, domain.KindTraining)
	loaded := bucket.Load("kai@example.com")
	assert.Empty(t, loaded)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	bucket := NewBucket[*domain.Goal](store, domain.KindGoal)

	require.NoError(t, bucket.Save("kai@example.com", []*domain.Goal{{Meta: domain.Meta{ID: "g1"}, Title: "x"}}))
	require.NoError(t, bucket.Clear("kai@example.com"))
	assert.Empty(t, bucket.Load("kai@example.com"))

	// Clearing again is a no-op.
	require.NoError(t, bucket.Clear("kai@example.com"))
}

func TestOwnerFallsBackToDemoIdentity(t *testing.T) {
	store := newTestStore(t)
	bucket := NewBucket[*domain.Goal](store, domain.KindGoal)

	require.NoError(t, bucket.Save("", []*domain.Goal{{Meta: domain.Meta{ID: "g1"}, Title: "demo goal"}}))

	// The unset owner and the demo owner read the same collection.
	assert.Len(t, bucket.Load("practice@gmail.com"), 1)
}

func TestScheduleBucketUsesLegacyKey(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "practice@gmail.com", zap.NewNop().Sugar())
	require.NoError(t, err)

	bucket := NewScheduleBucket(store)
	require.NoError(t, bucket.Save("kai@example.com", []*domain.ScheduleSession{
		{Meta: domain.Meta{ID: "s1"}, Title: "Club night", Date: "2026-09-01", Time: "19:00", Duration: 90},
	}))

	_, err = os.Stat(filepath.Join(dir, LegacyScheduleKey+".json"))
	assert.NoError(t, err)
}
