package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/repository/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeColl mimics the document store's subscription contract: the
// callback stops firing once the subscribing context is cancelled or
// the returned stop function runs.
type fakeColl[T domain.Record] struct {
	mu         sync.Mutex
	records    []T
	subCtx     context.Context
	subscriber func([]T)
}

func (f *fakeColl[T]) List(ctx context.Context, owner string) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]T{}, f.records...), nil
}

func (f *fakeColl[T]) Create(ctx context.Context, rec T) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.SetRecordID(domain.NewLocalID("fake", time.Now()))
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeColl[T]) Update(ctx context.Context, rec T) error { return nil }

func (f *fakeColl[T]) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeColl[T]) Subscribe(ctx context.Context, owner string, fn func([]T)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	f.subCtx = subCtx
	f.subscriber = fn
	snapshot := append([]T{}, f.records...)
	f.mu.Unlock()
	fn(snapshot)
	return cancel, nil
}

func (f *fakeColl[T]) push(recs []T) {
	f.mu.Lock()
	ctx, fn := f.subCtx, f.subscriber
	f.mu.Unlock()
	if fn == nil || ctx == nil || ctx.Err() != nil {
		return
	}
	fn(recs)
}

func newRemoteHub(t *testing.T) (*Hub, *fakeColl[*domain.Goal]) {
	t.Helper()
	store, err := local.NewStore(t.TempDir(), "practice@gmail.com", zap.NewNop().Sugar())
	require.NoError(t, err)
	goals := &fakeColl[*domain.Goal]{}
	hub := NewHub(Stores{
		Training: &fakeColl[*domain.TrainingSession]{},
		Matches:  &fakeColl[*domain.Match]{},
		Schedule: &fakeColl[*domain.ScheduleSession]{},
		Goals:    goals,
		Local:    store,
	}, testDeps(time.Second))
	t.Cleanup(hub.Close)
	return hub, goals
}

func newLocalHub(t *testing.T) *Hub {
	t.Helper()
	store, err := local.NewStore(t.TempDir(), "practice@gmail.com", zap.NewNop().Sugar())
	require.NoError(t, err)
	hub := NewHub(Stores{Local: store}, testDeps(0))
	t.Cleanup(hub.Close)
	return hub
}

func TestHubReusesWorkspacePerOwner(t *testing.T) {
	hub := newLocalHub(t)

	a, err := hub.For(context.Background(), "alice@example.com")
	require.NoError(t, err)
	again, err := hub.For(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Same(t, a, again)

	b, err := hub.For(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestHubMapsEmptyOwnerToDemoIdentity(t *testing.T) {
	hub := newLocalHub(t)

	anon, err := hub.For(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "practice@gmail.com", anon.Owner)

	demo, err := hub.For(context.Background(), "practice@gmail.com")
	require.NoError(t, err)
	assert.Same(t, anon, demo)
}

func TestHubDropTearsDownManagers(t *testing.T) {
	hub := newLocalHub(t)

	ws, err := hub.For(context.Background(), "alice@example.com")
	require.NoError(t, err)
	hub.Drop("alice@example.com")
	assert.Equal(t, StateTornDown, ws.Training.State())

	fresh, err := hub.For(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotSame(t, ws, fresh)
	assert.Equal(t, StateReady, fresh.Training.State())
}

func TestHubSyncGoalsFromActivity(t *testing.T) {
	hub := newLocalHub(t)
	ctx := context.Background()

	ws, err := hub.For(ctx, "alice@example.com")
	require.NoError(t, err)

	_, err = ws.Training.Create(ctx, &domain.TrainingSession{
		Date: "2026-06-15", Duration: 60, Type: "technique",
		FocusAreas: []string{"smash"}, Rating: 7, Effort: 7,
	})
	require.NoError(t, err)

	goal, err := ws.Goals.Create(ctx, &domain.Goal{
		Title: "log sessions", Category: "training", Unit: "sessions", Target: target(10),
	})
	require.NoError(t, err)

	require.NoError(t, hub.SyncGoals(ctx, "alice@example.com"))
	got, err := ws.Goals.Get(goal.RecordID())
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Current)
}

func TestWorkspaceOutlivesCreatingRequest(t *testing.T) {
	hub, goals := newRemoteHub(t)

	reqCtx, finish := context.WithCancel(context.Background())
	ws, err := hub.For(reqCtx, "alice@example.com")
	require.NoError(t, err)
	finish() // the request that built the workspace completes

	goals.push([]*domain.Goal{
		{Meta: domain.Meta{ID: "g1", OwnerID: "alice@example.com"}, Title: "Win a tournament"},
	})
	assert.Equal(t, 1, ws.Goals.Count(), "snapshots keep arriving after the creating request ends")
}

func TestHubCloseEndsSnapshotDelivery(t *testing.T) {
	hub, goals := newRemoteHub(t)

	ws, err := hub.For(context.Background(), "alice@example.com")
	require.NoError(t, err)
	hub.Close()

	goals.push([]*domain.Goal{
		{Meta: domain.Meta{ID: "g1", OwnerID: "alice@example.com"}, Title: "Win a tournament"},
	})
	assert.Zero(t, ws.Goals.Count())
}

func TestHubCloseRejectsFurtherUse(t *testing.T) {
	hub := newLocalHub(t)
	hub.Close()

	_, err := hub.For(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrTornDown)
}
