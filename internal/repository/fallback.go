package repository

import (
	"context"
	"sort"
)

// ListOrdered runs an ordered query, falling back to the unordered form
// of the same predicate when the store cannot serve the ordering (a
// missing or exhausted index). The fallback result is sorted client-side
// with the same comparator the ordered query would have applied, so
// callers see identical output either way.
func ListOrdered[T any](
	ctx context.Context,
	ordered func(context.Context) ([]T, error),
	unordered func(context.Context) ([]T, error),
	less func(a, b T) bool,
	isIndexErr func(error) bool,
) ([]T, error) {
	recs, err := ordered(ctx)
	if err == nil {
		return recs, nil
	}
	if !isIndexErr(err) {
		return nil, err
	}
	recs, err = unordered(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return less(recs[i], recs[j]) })
	return recs, nil
}
