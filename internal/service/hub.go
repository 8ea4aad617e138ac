package service

import (
	"context"
	"sync"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/repository"
	"shuttlestats/backend/internal/repository/local"
)

// Stores bundles the persistence backends the hub builds managers
// from. Remote collections are nil in local mode; the local store is
// always present (it also carries reminder settings in remote mode).
type Stores struct {
	Training repository.Collection[*domain.TrainingSession]
	Matches  repository.Collection[*domain.Match]
	Schedule repository.Collection[*domain.ScheduleSession]
	Goals    repository.Collection[*domain.Goal]

	Local *local.Store
}

// Remote reports whether the record collections live in the document
// database.
func (s Stores) Remote() bool { return s.Training != nil }

// OwnerWorkspace is the set of four feature managers serving one owner.
type OwnerWorkspace struct {
	Owner    string
	Training *TrainingManager
	Matches  *MatchManager
	Schedule *ScheduleManager
	Goals    *GoalManager
}

func (w *OwnerWorkspace) stopAll() {
	for _, stop := range []func(){w.Training.Stop, w.Matches.Stop, w.Schedule.Stop, w.Goals.Stop} {
		stop()
	}
}

// Hub hands out per-owner workspaces, creating and starting the four
// managers lazily and tearing down their subscriptions when an owner
// is dropped. Switching owners therefore never leaves a stale live
// callback running.
type Hub struct {
	stores Stores
	deps   Deps

	// Subscriptions are opened under the hub's own lifetime context,
	// never the request that happened to create the workspace: the
	// workspace outlives that request and must keep receiving
	// snapshots after it finishes.
	lifeCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	owners map[string]*OwnerWorkspace
	closed bool
}

// NewHub creates an empty hub.
func NewHub(stores Stores, deps Deps) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		stores:  stores,
		deps:    deps.withDefaults(),
		lifeCtx: ctx,
		cancel:  cancel,
		owners:  map[string]*OwnerWorkspace{},
	}
}

// For returns the workspace for owner, creating and starting it on
// first use. An empty owner maps to the demo identity. The workspace
// and its live subscriptions are bound to the hub's lifetime, not to
// ctx; cancelling the calling request leaves them running.
func (h *Hub) For(ctx context.Context, owner string) (*OwnerWorkspace, error) {
	owner = h.stores.Local.OwnerOrFallback(owner)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrTornDown
	}
	if ws, ok := h.owners[owner]; ok {
		h.mu.Unlock()
		return ws, nil
	}
	h.mu.Unlock()

	ws := h.build(owner)
	for _, start := range []func(context.Context) error{
		ws.Training.Start, ws.Matches.Start, ws.Schedule.Start, ws.Goals.Start,
	} {
		if err := start(h.lifeCtx); err != nil {
			ws.stopAll()
			return nil, err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		ws.stopAll()
		return nil, ErrTornDown
	}
	if existing, ok := h.owners[owner]; ok {
		// Lost the race with a concurrent first request.
		ws.stopAll()
		return existing, nil
	}
	h.owners[owner] = ws
	return ws, nil
}

func (h *Hub) build(owner string) *OwnerWorkspace {
	var (
		training Source[*domain.TrainingSession]
		matches  Source[*domain.Match]
		schedule Source[*domain.ScheduleSession]
		goals    Source[*domain.Goal]
	)
	if h.stores.Remote() {
		training = RemoteSource(h.stores.Training)
		matches = RemoteSource(h.stores.Matches)
		schedule = RemoteSource(h.stores.Schedule)
		goals = RemoteSource(h.stores.Goals)
	} else {
		training = LocalSource(local.NewBucket[*domain.TrainingSession](h.stores.Local, domain.KindTraining))
		matches = LocalSource(local.NewBucket[*domain.Match](h.stores.Local, domain.KindMatch))
		schedule = LocalSource(local.NewScheduleBucket(h.stores.Local))
		goals = LocalSource(local.NewBucket[*domain.Goal](h.stores.Local, domain.KindGoal))
	}
	return &OwnerWorkspace{
		Owner:    owner,
		Training: NewTrainingManager(owner, training, h.deps),
		Matches:  NewMatchManager(owner, matches, h.deps),
		Schedule: NewScheduleManager(owner, schedule, h.stores.Local, h.deps),
		Goals:    NewGoalManager(owner, goals, h.deps),
	}
}

// Drop tears down the owner's workspace, releasing its subscriptions.
func (h *Hub) Drop(owner string) {
	owner = h.stores.Local.OwnerOrFallback(owner)

	h.mu.Lock()
	ws, ok := h.owners[owner]
	delete(h.owners, owner)
	h.mu.Unlock()
	if ok {
		ws.stopAll()
	}
}

// SyncGoals pushes the owner's current activity totals into matching
// open goals (the ad-hoc progress sync the trackers trigger after
// logging activity).
func (h *Hub) SyncGoals(ctx context.Context, owner string) error {
	ws, err := h.For(ctx, owner)
	if err != nil {
		return err
	}
	return ws.Goals.SyncWithActivity(ctx, ws.Training.Count(), ws.Matches.Count())
}

// Close tears down every workspace and ends the lifetime context the
// subscriptions run under.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	owners := h.owners
	h.owners = map[string]*OwnerWorkspace{}
	h.mu.Unlock()

	for _, ws := range owners {
		ws.stopAll()
	}
	h.cancel()
}
