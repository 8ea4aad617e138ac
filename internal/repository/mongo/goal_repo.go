package mongo

import (
	"context"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const goalCollectionName = "goals"

// NewGoalCollection returns the goal store, ordered by creation time,
// newest first.
func NewGoalCollection(db *mongo.Database, log *zap.SugaredLogger) repository.Collection[*domain.Goal] {
	return newCollection[*domain.Goal](db, goalCollectionName,
		order{field: "createdAt", desc: true},
		func(a, b *domain.Goal) bool { return a.CreatedAt.After(b.CreatedAt) },
		log,
	)
}

// EnsureGoalIndexes creates the owner+createdAt index backing the
// ordered query. Call during startup.
func EnsureGoalIndexes(ctx context.Context, collection *mongo.Collection, log *zap.SugaredLogger) {
	ensureIndexes(ctx, collection, log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	})
}
