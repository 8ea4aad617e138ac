package local

import (
	"shuttlestats/backend/internal/domain"
)

// Legacy storage keys carried over from earlier releases. The schedule
// collection predates owner scoping and lives under a fixed key, as do
// the reminder settings.
const (
	LegacyScheduleKey         = "shuttleStats_sessions"
	LegacyReminderSettingsKey = "shuttleStats_reminderSettings"
)

// Bucket is a typed view of the Store for one record kind. The key
// space is "<kind>_<ownerEmail>" unless the kind carries a legacy key.
type Bucket[T domain.Record] struct {
	store *Store
	key   func(owner string) string
}

// NewBucket creates the standard owner-scoped bucket for a kind.
func NewBucket[T domain.Record](store *Store, kind domain.Kind) *Bucket[T] {
	return &Bucket[T]{
		store: store,
		key: func(owner string) string {
			return string(kind) + "_" + store.OwnerOrFallback(owner)
		},
	}
}

// NewScheduleBucket creates the schedule bucket on its legacy,
// owner-unscoped key.
func NewScheduleBucket(store *Store) *Bucket[*domain.ScheduleSession] {
	return &Bucket[*domain.ScheduleSession]{
		store: store,
		key:   func(string) string { return LegacyScheduleKey },
	}
}

// Load returns the owner's whole collection; absent or malformed
// content yields an empty one.
func (b *Bucket[T]) Load(owner string) []T {
	recs := make([]T, 0)
	b.store.Load(b.key(owner), &recs)
	return recs
}

// Save replaces the owner's whole collection.
func (b *Bucket[T]) Save(owner string, recs []T) error {
	return b.store.Save(b.key(owner), recs)
}

// Clear removes the owner's collection.
func (b *Bucket[T]) Clear(owner string) error {
	return b.store.Clear(b.key(owner))
}
