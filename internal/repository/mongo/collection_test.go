package mongo

import (
	"testing"
	"time"

	"shuttlestats/backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotSignatureChangesWhenFieldsChange(t *testing.T) {
	touched := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	before := []*domain.Goal{
		{Meta: domain.Meta{ID: "g1", UpdatedAt: touched}, Title: "Improve smash", Current: 1},
	}
	after := []*domain.Goal{
		{Meta: domain.Meta{ID: "g1", UpdatedAt: touched.Add(time.Minute)}, Title: "Improve backhand", Current: 2},
	}

	assert.NotEqual(t, snapshotSignature(before), snapshotSignature(after),
		"an update with unchanged membership must still be delivered")
}

func TestSnapshotSignatureStableForIdenticalSets(t *testing.T) {
	touched := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	recs := []*domain.Goal{
		{Meta: domain.Meta{ID: "g1", UpdatedAt: touched}, Title: "Improve smash"},
		{Meta: domain.Meta{ID: "g2", UpdatedAt: touched}, Title: "Play weekly"},
	}

	assert.Equal(t, snapshotSignature(recs), snapshotSignature(recs))

	grown := append(append([]*domain.Goal{}, recs...),
		&domain.Goal{Meta: domain.Meta{ID: "g3", UpdatedAt: touched}, Title: "Enter a tournament"})
	assert.NotEqual(t, snapshotSignature(recs), snapshotSignature(grown))
}
