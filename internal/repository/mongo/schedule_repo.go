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

const scheduleCollectionName = "schedule_sessions"

// NewScheduleCollection returns the schedule store, ordered by session
// date ascending (soonest first).
func NewScheduleCollection(db *mongo.Database, log *zap.SugaredLogger) repository.Collection[*domain.ScheduleSession] {
	return newCollection[*domain.ScheduleSession](db, scheduleCollectionName,
		order{field: "date", desc: false},
		func(a, b *domain.ScheduleSession) bool { return a.Date < b.Date },
		log,
	)
}

// EnsureScheduleIndexes creates the owner+date index backing the
// ordered query. Call during startup.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection, log *zap.SugaredLogger) {
	ensureIndexes(ctx, collection, log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	})
}
