package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// How often the polling fallback resyncs when change streams are not
// available (standalone mongod has no oplog to watch).
const defaultPollInterval = 3 * time.Second

// order is the kind's designated query ordering.
type order struct {
	field string
	desc  bool
}

func (o order) sortDoc() bson.D {
	dir := 1
	if o.desc {
		dir = -1
	}
	return bson.D{{Key: o.field, Value: dir}}
}

// collection implements repository.Collection for one record kind.
// The ordered List falls back to an unordered query plus a client-side
// sort when the server rejects the sort (missing index, sort stage out
// of memory); the live subscription resyncs through List and so picks
// up the same fallback.
type collection[T domain.Record] struct {
	coll         *mongo.Collection
	order        order
	less         func(a, b T) bool
	pollInterval time.Duration
	log          *zap.SugaredLogger
}

func newCollection[T domain.Record](db *mongo.Database, name string, ord order, less func(a, b T) bool, log *zap.SugaredLogger) *collection[T] {
	return &collection[T]{
		coll:         db.Collection(name),
		order:        ord,
		less:         less,
		pollInterval: defaultPollInterval,
		log:          log.Named(name),
	}
}

// List retrieves all of the owner's records in the kind's order.
func (c *collection[T]) List(ctx context.Context, owner string) ([]T, error) {
	filter := bson.M{"ownerId": owner}
	return repository.ListOrdered(ctx,
		func(ctx context.Context) ([]T, error) { return c.find(ctx, filter, c.order.sortDoc()) },
		func(ctx context.Context) ([]T, error) { return c.find(ctx, filter, nil) },
		c.less,
		isIndexError,
	)
}

func (c *collection[T]) find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recs := make([]T, 0)
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Create assigns the id and creation time and inserts the record.
func (c *collection[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if rec.Owner() == "" {
		return zero, errors.New("record owner is required")
	}
	now := time.Now().UTC()
	rec.SetRecordID(primitive.NewObjectID().Hex())
	rec.StampCreated(now)
	rec.Touch(now)

	if _, err := c.coll.InsertOne(ctx, rec); err != nil {
		return zero, err
	}
	return rec, nil
}

// Update replaces the stored document with the given record.
func (c *collection[T]) Update(ctx context.Context, rec T) error {
	if rec.RecordID() == "" {
		return errors.New("record ID is required for update")
	}
	rec.Touch(time.Now().UTC())

	result, err := c.coll.ReplaceOne(ctx, bson.M{"_id": rec.RecordID()}, rec)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the record. Deleting an id that is already gone is a
// no-op, not an error.
func (c *collection[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("record ID is required for delete")
	}
	_, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Subscribe delivers the owner's full ordered collection immediately
// and again after every change, until stop or ctx cancels it.
func (c *collection[T]) Subscribe(ctx context.Context, owner string, fn func([]T)) (func(), error) {
	recs, err := c.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	subCtx, cancel := context.WithCancel(ctx)
	fn(recs)

	go c.watch(subCtx, owner, fn)
	return cancel, nil
}

func (c *collection[T]) watch(ctx context.Context, owner string, fn func([]T)) {
	stream, err := c.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		c.log.Debugw("change streams unavailable, polling instead", "error", err)
		c.pollLoop(ctx, owner, fn)
		return
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		c.resync(ctx, owner, fn)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		c.log.Warnw("change stream closed, polling instead", "error", err)
		c.pollLoop(ctx, owner, fn)
	}
}

func (c *collection[T]) pollLoop(ctx context.Context, owner string, fn func([]T)) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var lastSig string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			recs, err := c.List(ctx, owner)
			if err != nil {
				if ctx.Err() == nil {
					c.log.Warnw("resync failed", "error", err)
				}
				continue
			}
			sig := snapshotSignature(recs)
			if sig != lastSig {
				lastSig = sig
				fn(recs)
			}
		}
	}
}

func (c *collection[T]) resync(ctx context.Context, owner string, fn func([]T)) {
	recs, err := c.List(ctx, owner)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Warnw("resync failed", "error", err)
		}
		return
	}
	fn(recs)
}

// snapshotSignature fingerprints a result set for the polling dedup.
// The modification time is part of the signature so an update that
// changes fields without changing membership still delivers.
func snapshotSignature[T domain.Record](recs []T) string {
	var b strings.Builder
	for _, r := range recs {
		fmt.Fprintf(&b, "%s@%d;", r.RecordID(), r.ModifiedAt().UnixNano())
	}
	fmt.Fprintf(&b, "%d", len(recs))
	return b.String()
}

// isIndexError reports whether a query failed because the server could
// not serve its ordering clause, the condition the unordered fallback
// covers. Code 96 is OperationFailed (classic "Sort operation used more
// than the maximum bytes of RAM"), 292 is the modern
// QueryExceededMemoryLimitNoDiskUseAllowed.
func isIndexError(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	switch cmdErr.Code {
	case 96, 292:
		return true
	}
	return strings.Contains(cmdErr.Message, "Sort")
}
