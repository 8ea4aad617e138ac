package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   string
	Date string
}

func byDateDesc(a, b row) bool { return a.Date > b.Date }

func TestListOrderedUsesOrderedResult(t *testing.T) {
	want := []row{{"a", "2026-02-02"}, {"b", "2026-01-01"}}

	got, err := ListOrdered(context.Background(),
		func(context.Context) ([]row, error) { return want, nil },
		func(context.Context) ([]row, error) { t.Fatal("unordered query should not run"); return nil, nil },
		byDateDesc,
		func(error) bool { return false },
	)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListOrderedFallsBackAndSortsClientSide(t *testing.T) {
	indexErr := errors.New("ordering index unavailable")
	unsorted := []row{{"b", "2026-01-01"}, {"c", "2026-03-03"}, {"a", "2026-02-02"}}

	got, err := ListOrdered(context.Background(),
		func(context.Context) ([]row, error) { return nil, indexErr },
		func(context.Context) ([]row, error) { return unsorted, nil },
		byDateDesc,
		func(err error) bool { return errors.Is(err, indexErr) },
	)

	require.NoError(t, err)
	assert.Equal(t, []row{{"c", "2026-03-03"}, {"a", "2026-02-02"}, {"b", "2026-01-01"}}, got)
}

func TestListOrderedPropagatesNonIndexErrors(t *testing.T) {
	boom := errors.New("connection reset")

	_, err := ListOrdered(context.Background(),
		func(context.Context) ([]row, error) { return nil, boom },
		func(context.Context) ([]row, error) { t.Fatal("no fallback for non-index errors"); return nil, nil },
		byDateDesc,
		func(error) bool { return false },
	)

	assert.ErrorIs(t, err, boom)
}
