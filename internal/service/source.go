package service

import (
	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/repository"
	"shuttlestats/backend/internal/repository/local"
)

// Source selects the persistence path for a manager, decided once at
// construction. Exactly one of the two fields is set; there is no
// runtime capability probing after that.
type Source[T domain.Record] struct {
	remote repository.Collection[T]
	local  *local.Bucket[T]
}

// RemoteSource builds a Source backed by the document database.
func RemoteSource[T domain.Record](c repository.Collection[T]) Source[T] {
	if c == nil {
		panic("service: nil remote collection")
	}
	return Source[T]{remote: c}
}

// LocalSource builds a Source backed by the local file store.
func LocalSource[T domain.Record](b *local.Bucket[T]) Source[T] {
	if b == nil {
		panic("service: nil local bucket")
	}
	return Source[T]{local: b}
}

// IsRemote reports which path this source uses.
func (s Source[T]) IsRemote() bool { return s.remote != nil }
