package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/notify"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrValidation           = errors.New("validation failed")
	ErrRecordNotFound       = errors.New("record not found")
	ErrStillSyncing         = errors.New("still syncing")
	ErrConfirmationRequired = errors.New("delete requires confirmation")
	ErrTornDown             = errors.New("manager is torn down")
)

// How long a remote call may keep the caller waiting before the manager
// stops blocking and reports "still syncing". The in-flight call is not
// cancelled; its result arrives through the live subscription.
const DefaultRemoteTimeout = 8 * time.Second

var validate = validator.New()

// State of a manager across its lifetime.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateTornDown
)

// Deps bundles the cross-cutting dependencies every manager receives
// explicitly; there are no ambient singletons.
type Deps struct {
	Msgs    *notify.Center
	Log     *zap.SugaredLogger
	Timeout time.Duration
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Timeout <= 0 {
		d.Timeout = DefaultRemoteTimeout
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Msgs == nil {
		d.Msgs = notify.NewCenter(d.Log)
	}
	return d
}

// Manager owns the in-memory collection for one record kind and one
// owner. All mutations go through it; nothing else touches the slice.
// On the remote path the collection mirrors the live subscription, with
// optimistically created records carried as pending until a snapshot
// confirms them. On the local path the collection is authoritative and
// every mutation rewrites the stored collection wholesale.
type Manager[T domain.Record] struct {
	kind     domain.Kind
	idPrefix string
	owner    string
	source   Source[T]
	deps     Deps

	// prepare runs before validation on create (derive fields, apply
	// defaults). checkRecord adds kind rules on top of the struct tags.
	prepare     func(T)
	checkRecord func(T) error
	onChange    func([]T)

	mu      sync.Mutex
	state   State
	records []T
	pending map[string]T
	stop    func()
}

func newManager[T domain.Record](kind domain.Kind, idPrefix, owner string, source Source[T], deps Deps) *Manager[T] {
	return &Manager[T]{
		kind:     kind,
		idPrefix: idPrefix,
		owner:    owner,
		source:   source,
		deps:     deps.withDefaults(),
		pending:  map[string]T{},
	}
}

// OnChange registers the presentation hook, invoked with a snapshot of
// the collection after every visible change.
func (m *Manager[T]) OnChange(fn func([]T)) { m.onChange = fn }

// Start brings the manager to Ready. Remote sources open the live
// subscription (the first snapshot arrives before Start returns); local
// sources load the stored collection synchronously.
func (m *Manager[T]) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return nil
	}
	if !m.source.IsRemote() {
		m.records = m.source.local.Load(m.owner)
		m.state = StateReady
		m.mu.Unlock()
		m.notifyChange()
		return nil
	}
	m.state = StateLoading
	m.mu.Unlock()

	stop, err := m.source.remote.Subscribe(ctx, m.owner, m.applySnapshot)
	if err != nil {
		m.mu.Lock()
		m.state = StateUninitialized
		m.mu.Unlock()
		m.deps.Msgs.Show("Could not load your data. Please try again.", notify.Error, 0)
		return err
	}
	m.mu.Lock()
	m.stop = stop
	m.mu.Unlock()
	return nil
}

// applySnapshot replaces the collection with a subscription snapshot,
// in delivery order, wholesale. Pending optimistic records confirmed by
// the snapshot are released; the rest are re-appended so a just-created
// record never flickers out of the list.
func (m *Manager[T]) applySnapshot(recs []T) {
	m.mu.Lock()
	if m.state == StateTornDown {
		m.mu.Unlock()
		return
	}
	next := append(make([]T, 0, len(recs)), recs...)
	for id := range m.pending {
		if indexOf(next, id) >= 0 {
			delete(m.pending, id)
		}
	}
	for _, rec := range m.pending {
		next = append(next, rec)
	}
	m.records = next
	m.state = StateReady
	m.mu.Unlock()
	m.notifyChange()
}

// Create validates and persists a new record. Remote path: the call is
// bounded by the configured timeout; on success the record is shown
// immediately (pending until the subscription confirms it, matched by
// id, never duplicated); on timeout nothing is applied and the caller
// gets ErrStillSyncing. Local path: append plus a whole-collection
// save, rolled back if the save fails.
func (m *Manager[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := m.ensureUsable(); err != nil {
		return zero, err
	}
	if m.prepare != nil {
		m.prepare(rec)
	}
	if err := m.validateRecord(rec); err != nil {
		m.deps.Msgs.Show("Please check the form: "+err.Error(), notify.Error, 0)
		return zero, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	rec.SetOwner(m.owner)

	if m.source.IsRemote() {
		return m.createRemote(ctx, rec)
	}

	now := m.deps.Now()
	rec.SetRecordID(domain.NewLocalID(m.idPrefix, now))
	rec.StampCreated(now)
	rec.Touch(now)

	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()

	if err := m.persistLocal(); err != nil {
		m.removeFromMemory(rec.RecordID())
		m.deps.Msgs.Show("Failed to save. Please try again.", notify.Error, 0)
		return zero, err
	}
	m.notifyChange()
	return rec, nil
}

func (m *Manager[T]) createRemote(ctx context.Context, rec T) (T, error) {
	var zero T
	type result struct {
		rec T
		err error
	}
	done := make(chan result, 1)
	go func() {
		created, err := m.source.remote.Create(context.WithoutCancel(ctx), rec)
		done <- result{created, err}
	}()

	timer := time.NewTimer(m.deps.Timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			m.deps.Log.Errorw("remote create failed", "kind", m.kind, "error", res.err)
			m.deps.Msgs.Show("Failed to save. Please try again.", notify.Error, 0)
			return zero, res.err
		}
		m.addOptimistic(res.rec)
		return res.rec, nil
	case <-timer.C:
		m.deps.Msgs.Show("Network is slow. Your entry will appear once synced.", notify.Info, 0)
		return zero, ErrStillSyncing
	}
}

// addOptimistic appends a confirmed-created record unless a snapshot
// already delivered it, guaranteeing exactly one visible instance.
func (m *Manager[T]) addOptimistic(rec T) {
	m.mu.Lock()
	if indexOf(m.records, rec.RecordID()) < 0 {
		m.pending[rec.RecordID()] = rec
		m.records = append(m.records, rec)
	}
	m.mu.Unlock()
	m.notifyChange()
}

// Update merges changes into the record via the mutator and stamps
// UpdatedAt; CreatedAt is never altered. The merged record goes
// through the same validation as a create, so a mutation cannot store
// values a create would have rejected. A missing id is reported, not
// thrown: the collection is untouched and ErrRecordNotFound returned.
// A remote timeout keeps the merged record locally ("still syncing");
// a remote hard failure applies nothing.
func (m *Manager[T]) Update(ctx context.Context, id string, mutate func(T)) (T, error) {
	var zero T
	if err := m.ensureUsable(); err != nil {
		return zero, err
	}

	m.mu.Lock()
	idx := indexOf(m.records, id)
	if idx < 0 {
		m.mu.Unlock()
		m.deps.Msgs.Show("Could not find the entry to update.", notify.Error, 0)
		return zero, ErrRecordNotFound
	}
	updated := cloneRecord(m.records[idx])
	m.mu.Unlock()

	mutate(updated)
	updated.Touch(m.deps.Now())

	if err := m.validateRecord(updated); err != nil {
		m.deps.Msgs.Show("Please check the form: "+err.Error(), notify.Error, 0)
		return zero, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if m.source.IsRemote() {
		if err := m.updateRemote(ctx, updated); err != nil {
			m.deps.Msgs.Show("Failed to update. Please try again.", notify.Error, 0)
			return zero, err
		}
	}

	previous, ok := m.replaceInMemory(id, updated)
	if !ok {
		return zero, ErrRecordNotFound
	}
	if !m.source.IsRemote() {
		if err := m.persistLocal(); err != nil {
			m.replaceInMemory(id, previous)
			m.deps.Msgs.Show("Failed to save changes. Please try again.", notify.Error, 0)
			return zero, err
		}
	}
	m.notifyChange()
	return updated, nil
}

func (m *Manager[T]) updateRemote(ctx context.Context, rec T) error {
	done := make(chan error, 1)
	go func() {
		done <- m.source.remote.Update(context.WithoutCancel(ctx), rec)
	}()

	timer := time.NewTimer(m.deps.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		// Keep the merged record; the write lands in the background and
		// the next snapshot settles any difference.
		m.deps.Msgs.Show("Network is slow. Changes will sync in the background.", notify.Info, 0)
		return nil
	}
}

// Delete removes the record after the boundary has confirmed the
// action. Deleting an id that is already gone is a no-op on both
// paths.
func (m *Manager[T]) Delete(ctx context.Context, id string, confirmed bool) error {
	if err := m.ensureUsable(); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}

	if m.source.IsRemote() {
		if err := m.deleteRemote(ctx, id); err != nil {
			m.deps.Msgs.Show("Failed to delete. Please try again.", notify.Error, 0)
			return err
		}
		m.removeFromMemory(id)
		m.notifyChange()
		return nil
	}

	if !m.removeFromMemory(id) {
		return nil // already gone
	}
	if err := m.persistLocal(); err != nil {
		m.deps.Msgs.Show("Failed to save changes. Please try again.", notify.Error, 0)
		return err
	}
	m.notifyChange()
	return nil
}

func (m *Manager[T]) deleteRemote(ctx context.Context, id string) error {
	done := make(chan error, 1)
	go func() {
		done <- m.source.remote.Delete(context.WithoutCancel(ctx), id)
	}()

	timer := time.NewTimer(m.deps.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		m.deps.Msgs.Show("Network is slow. The entry will disappear once synced.", notify.Info, 0)
		return nil
	}
}

// List returns the records passing filter, ordered by less. It never
// mutates the underlying collection; both arguments may be nil.
func (m *Manager[T]) List(filter func(T) bool, less func(a, b T) bool) []T {
	m.mu.Lock()
	recs := append(make([]T, 0, len(m.records)), m.records...)
	m.mu.Unlock()

	if filter != nil {
		kept := recs[:0]
		for _, r := range recs {
			if filter(r) {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	if less != nil {
		sort.SliceStable(recs, func(i, j int) bool { return less(recs[i], recs[j]) })
	}
	return recs
}

// Get returns the record with the given id.
func (m *Manager[T]) Get(id string) (T, error) {
	var zero T
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := indexOf(m.records, id); idx >= 0 {
		return m.records[idx], nil
	}
	return zero, ErrRecordNotFound
}

// Snapshot returns a copy of the full collection in its current order.
func (m *Manager[T]) Snapshot() []T { return m.List(nil, nil) }

// Count returns the collection size.
func (m *Manager[T]) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Owner returns the identity this manager's collection belongs to.
func (m *Manager[T]) Owner() string { return m.owner }

// State returns the lifecycle state.
func (m *Manager[T]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stop releases the live subscription and tears the manager down. A
// stale callback arriving afterwards is ignored. Required before
// switching owners or discarding the manager.
func (m *Manager[T]) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.state = StateTornDown
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// --- internals ---

func (m *Manager[T]) ensureUsable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateTornDown {
		return ErrTornDown
	}
	return nil
}

func (m *Manager[T]) validateRecord(rec T) error {
	if err := validate.Struct(rec); err != nil {
		return err
	}
	if m.checkRecord != nil {
		return m.checkRecord(rec)
	}
	return nil
}

func (m *Manager[T]) persistLocal() error {
	m.mu.Lock()
	snapshot := append(make([]T, 0, len(m.records)), m.records...)
	m.mu.Unlock()
	return m.source.local.Save(m.owner, snapshot)
}

func (m *Manager[T]) removeFromMemory(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, id)
	idx := indexOf(m.records, id)
	if idx < 0 {
		return false
	}
	m.records = append(m.records[:idx], m.records[idx+1:]...)
	return true
}

func (m *Manager[T]) replaceInMemory(id string, rec T) (previous T, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := indexOf(m.records, id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	previous = m.records[idx]
	m.records[idx] = rec
	if _, pending := m.pending[id]; pending {
		m.pending[id] = rec
	}
	return previous, true
}

func (m *Manager[T]) notifyChange() {
	if m.onChange == nil {
		return
	}
	m.onChange(m.Snapshot())
}

func indexOf[T domain.Record](recs []T, id string) int {
	for i, r := range recs {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

// cloneRecord makes a shallow copy of the struct behind the record
// pointer, so a mutation can be discarded if persisting it fails.
func cloneRecord[T domain.Record](rec T) T {
	v := reflect.ValueOf(rec).Elem()
	clone := reflect.New(v.Type())
	clone.Elem().Set(v)
	return clone.Interface().(T)
}
