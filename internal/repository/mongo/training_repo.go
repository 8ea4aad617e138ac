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

const trainingCollectionName = "training_sessions"

// NewTrainingCollection returns the training-session store, ordered by
// session date, newest first.
func NewTrainingCollection(db *mongo.Database, log *zap.SugaredLogger) repository.Collection[*domain.TrainingSession] {
	return newCollection[*domain.TrainingSession](db, trainingCollectionName,
		order{field: "date", desc: true},
		func(a, b *domain.TrainingSession) bool { return a.Date > b.Date },
		log,
	)
}

// EnsureTrainingIndexes creates the owner+date index backing the
// ordered query. Call during startup.
func EnsureTrainingIndexes(ctx context.Context, collection *mongo.Collection, log *zap.SugaredLogger) {
	ensureIndexes(ctx, collection, log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	})
}
