package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/repository/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGoals is an in-memory repository.Collection with controllable
// latency and snapshot delivery, standing in for the document database.
type fakeGoals struct {
	mu          sync.Mutex
	records     []*domain.Goal
	seq         int
	createDelay time.Duration
	createErr   error
	autoPush    bool // push a snapshot to the subscriber after each write
	subscriber  func([]*domain.Goal)
}

func (f *fakeGoals) List(ctx context.Context, owner string) ([]*domain.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.Goal{}, f.records...), nil
}

func (f *fakeGoals) Create(ctx context.Context, rec *domain.Goal) (*domain.Goal, error) {
	if f.createDelay > 0 {
		time.Sleep(f.createDelay)
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	f.seq++
	rec.SetRecordID(fmt.Sprintf("r%d", f.seq))
	rec.StampCreated(time.Now())
	f.records = append(f.records, rec)
	f.mu.Unlock()
	if f.autoPush {
		f.push()
	}
	return rec, nil
}

func (f *fakeGoals) Update(ctx context.Context, rec *domain.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.RecordID() == rec.RecordID() {
			f.records[i] = rec
			return nil
		}
	}
	return nil
}

func (f *fakeGoals) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.RecordID() == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return nil // absent id is not an error
}

func (f *fakeGoals) Subscribe(ctx context.Context, owner string, fn func([]*domain.Goal)) (func(), error) {
	f.mu.Lock()
	f.subscriber = fn
	snapshot := append([]*domain.Goal{}, f.records...)
	f.mu.Unlock()
	fn(snapshot)
	return func() {
		f.mu.Lock()
		f.subscriber = nil
		f.mu.Unlock()
	}, nil
}

func (f *fakeGoals) push() {
	f.mu.Lock()
	fn := f.subscriber
	snapshot := append([]*domain.Goal{}, f.records...)
	f.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

func testDeps(timeout time.Duration) Deps {
	return Deps{Log: zap.NewNop().Sugar(), Timeout: timeout}
}

func newRemoteGoals(t *testing.T, fake *fakeGoals, timeout time.Duration) *GoalManager {
	t.Helper()
	m := NewGoalManager("player@example.com", RemoteSource[*domain.Goal](fake), testDeps(timeout))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)
	return m
}

func newLocalGoals(t *testing.T) (*GoalManager, *local.Bucket[*domain.Goal]) {
	t.Helper()
	store, err := local.NewStore(t.TempDir(), "practice@gmail.com", zap.NewNop().Sugar())
	require.NoError(t, err)
	bucket := local.NewBucket[*domain.Goal](store, domain.KindGoal)
	m := NewGoalManager("player@example.com", LocalSource(bucket), testDeps(0))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)
	return m, bucket
}

func TestLocalCreateAssignsIDAndPersists(t *testing.T) {
	m, bucket := newLocalGoals(t)

	goal, err := m.Create(context.Background(), &domain.Goal{Title: "Win the club league"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(goal.RecordID(), "goal_"), "id %q", goal.RecordID())
	assert.Equal(t, "player@example.com", goal.Owner())
	assert.Equal(t, domain.PriorityMedium, goal.Priority)
	assert.False(t, goal.CreatedAt.IsZero())

	stored := bucket.Load("player@example.com")
	require.Len(t, stored, 1)
	assert.Equal(t, goal.RecordID(), stored[0].RecordID())
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	m, bucket := newLocalGoals(t)

	_, err := m.Create(context.Background(), &domain.Goal{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, m.Count())
	assert.Empty(t, bucket.Load("player@example.com"))
}

func TestRemoteCreateShowsRecordImmediately(t *testing.T) {
	fake := &fakeGoals{}
	m := newRemoteGoals(t, fake, time.Second)

	goal, err := m.Create(context.Background(), &domain.Goal{Title: "Improve smash"})
	require.NoError(t, err)
	assert.NotEmpty(t, goal.RecordID())
	assert.Equal(t, 1, m.Count())
}

func TestRemoteCreateNotDuplicatedBySnapshot(t *testing.T) {
	fake := &fakeGoals{autoPush: true}
	m := newRemoteGoals(t, fake, time.Second)

	_, err := m.Create(context.Background(), &domain.Goal{Title: "Improve smash"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count(), "snapshot confirming the create must not duplicate it")

	// A later snapshot still carries exactly one copy.
	fake.push()
	assert.Equal(t, 1, m.Count())
}

func TestRemoteCreateSurvivesEmptySnapshot(t *testing.T) {
	// The subscription can deliver a stale snapshot that predates the
	// create; the new record must not flicker out of the list.
	fake := &fakeGoals{}
	m := newRemoteGoals(t, fake, time.Second)

	goal, err := m.Create(context.Background(), &domain.Goal{Title: "Improve smash"})
	require.NoError(t, err)

	m.applySnapshot(nil)
	_, err = m.Get(goal.RecordID())
	assert.NoError(t, err)

	// Once a snapshot confirms the record it is no longer pending.
	fake.push()
	assert.Equal(t, 1, m.Count())
}

func TestRemoteCreateTimeoutAppliesNothing(t *testing.T) {
	fake := &fakeGoals{createDelay: 300 * time.Millisecond}
	m := newRemoteGoals(t, fake, 30*time.Millisecond)

	_, err := m.Create(context.Background(), &domain.Goal{Title: "Improve smash"})
	require.ErrorIs(t, err, ErrStillSyncing)
	assert.Zero(t, m.Count())
}

func TestUpdateMissingIDLeavesCollectionUntouched(t *testing.T) {
	m, _ := newLocalGoals(t)
	created, err := m.Create(context.Background(), &domain.Goal{Title: "Improve smash"})
	require.NoError(t, err)

	_, err = m.Update(context.Background(), "goal_0_missing", func(g *domain.Goal) {
		g.Title = "changed"
	})
	require.ErrorIs(t, err, ErrRecordNotFound)

	got, err := m.Get(created.RecordID())
	require.NoError(t, err)
	assert.Equal(t, "Improve smash", got.Title)
}

func TestUpdateRejectsMergeThatBreaksValidation(t *testing.T) {
	m, _ := newLocalGoals(t)
	created, err := m.Create(context.Background(), &domain.Goal{Title: "Improve smash"})
	require.NoError(t, err)

	_, err = m.Update(context.Background(), created.RecordID(), func(g *domain.Goal) {
		g.Title = ""
	})
	require.ErrorIs(t, err, ErrValidation)

	got, err := m.Get(created.RecordID())
	require.NoError(t, err)
	assert.Equal(t, "Improve smash", got.Title, "a rejected merge leaves the record untouched")
}

func TestUpdateStampsUpdatedAtNotCreatedAt(t *testing.T) {
	m, _ := newLocalGoals(t)
	created, err := m.Create(context.Background(), &domain.Goal{Title: "Improve smash"})
	require.NoError(t, err)
	createdAt := created.CreatedAt

	updated, err := m.Update(context.Background(), created.RecordID(), func(g *domain.Goal) {
		g.Title = "Improve backhand"
	})
	require.NoError(t, err)
	assert.Equal(t, createdAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.IsZero())
	assert.Equal(t, "Improve backhand", updated.Title)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, _ := newLocalGoals(t)
	created, err := m.Create(context.Background(), &domain.Goal{Title: "Improve smash"})
	require.NoError(t, err)

	err = m.Delete(context.Background(), created.RecordID(), false)
	require.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, 1, m.Count())

	require.NoError(t, m.Delete(context.Background(), created.RecordID(), true))
	assert.Zero(t, m.Count())
}

func TestDeleteMissingIDIsNoop(t *testing.T) {
	localMgr, _ := newLocalGoals(t)
	assert.NoError(t, localMgr.Delete(context.Background(), "goal_0_missing", true))

	remoteMgr := newRemoteGoals(t, &fakeGoals{}, time.Second)
	assert.NoError(t, remoteMgr.Delete(context.Background(), "r99", true))
}

func TestListNeverMutatesTheCollection(t *testing.T) {
	m, _ := newLocalGoals(t)
	for _, title := range []string{"a", "b", "c"} {
		_, err := m.Create(context.Background(), &domain.Goal{Title: title})
		require.NoError(t, err)
	}

	reversed := m.List(
		func(g *domain.Goal) bool { return g.Title != "b" },
		func(a, b *domain.Goal) bool { return a.Title > b.Title },
	)
	require.Len(t, reversed, 2)
	assert.Equal(t, "c", reversed[0].Title)

	titles := make([]string, 0, 3)
	for _, g := range m.Snapshot() {
		titles = append(titles, g.Title)
	}
	assert.Equal(t, []string{"a", "b", "c"}, titles, "insertion order must survive a filtered sort")
}

func TestStoppedManagerRejectsMutations(t *testing.T) {
	fake := &fakeGoals{}
	m := NewGoalManager("player@example.com", RemoteSource[*domain.Goal](fake), testDeps(time.Second))
	require.NoError(t, m.Start(context.Background()))
	m.Stop()

	_, err := m.Create(context.Background(), &domain.Goal{Title: "late"})
	assert.ErrorIs(t, err, ErrTornDown)

	// A stale snapshot arriving after teardown is ignored.
	m.applySnapshot([]*domain.Goal{{Title: "ghost"}})
	assert.Zero(t, m.Count())
	assert.Equal(t, StateTornDown, m.State())
}
