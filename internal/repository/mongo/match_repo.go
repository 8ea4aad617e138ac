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

const matchCollectionName = "matches"

// NewMatchCollection returns the match store, ordered by match date,
// newest first.
func NewMatchCollection(db *mongo.Database, logger *zap.SugaredLogger) repository.Collection[*domain.Match] {
	return newCollection[*domain.Match](db, matchCollectionName,
		order{field: "date", desc: true},
		func(a, b *domain.Match) bool { return a.Date > b.Date },
		logger,
	)
}

// EnsureMatchIndexes creates the owner+date index backing the ordered
// query. Call during startup.
func EnsureMatchIndexes(ctx context.Context, collection *mongo.Collection, log *zap.SugaredLogger) {
	ensureIndexes(ctx, collection, log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	})
}

// ensureIndexes is shared by the per-kind Ensure*Indexes helpers.
// Index creation failures are logged, not fatal: queries still work
// through the unordered fallback.
func ensureIndexes(ctx context.Context, collection *mongo.Collection, log *zap.SugaredLogger, models []mongo.IndexModel) {
	if _, err := collection.Indexes().CreateMany(ctx, models); err != nil {
		log.Warnw("failed to create indexes", "collection", collection.Name(), "error", err)
	}
}
