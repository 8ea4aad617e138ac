package repository

import (
	"context"

	"shuttlestats/backend/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrEmailTaken   = RepositoryError("email already registered")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Collection is the remote store contract for one record kind. All four
// kinds share it; implementations fix the backing collection and its
// designated ordering.
//
// List returns the owner's records in the kind's order. Create assigns
// the id and creation time and returns the stored record. Delete is
// idempotent: deleting an id that is already gone is not an error.
// Subscribe delivers the full ordered result set immediately and again
// after every change, until the returned stop function (or ctx) cancels
// it. A manager holds at most one live subscription per kind.
type Collection[T domain.Record] interface {
	List(ctx context.Context, owner string) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, owner string, fn func([]T)) (stop func(), err error)
}

// UserRepository is the account store used by the auth service.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
