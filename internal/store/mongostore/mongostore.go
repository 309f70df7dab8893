// Package mongostore persists the document collections in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ventsCollection      = "vent_posts"
	ratingsCollection    = "mess_ratings"
	summariesCollection  = "mess_weekly_summary"
	tipsCollection       = "survival_tips"
	complaintsCollection = "complaints"
	eventsCollection     = "calendar_events"
)

// contentionRetries bounds the conditional-update loops used by the like
// toggle when two requests race on the same document.
const contentionRetries = 3

type Store struct {
	db *mongo.Database
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes configures the indexes the queries depend on. Called on
// startup after Mongo has connected.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		ventsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_created_at")},
			{Keys: bson.D{{Key: "likes", Value: -1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_likes_created_at")},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetName("idx_expires_at")},
		},
		ratingsCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}, {Key: "meal", Value: 1}},
				Options: options.Index().SetName("uniq_user_date_meal").SetUnique(true),
			},
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("idx_date")},
		},
		summariesCollection: {
			{Keys: bson.D{{Key: "week_starting", Value: -1}}, Options: options.Index().SetName("idx_week_starting")},
		},
		tipsCollection: {
			{Keys: bson.D{{Key: "upvotes", Value: -1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_upvotes")},
			{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("idx_tags")},
		},
		complaintsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_user_created_at")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_status_created_at")},
		},
		eventsCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("idx_date")},
		},
	}

	for name, models := range indexes {
		if _, err := s.col(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

// windowFilter adds the window's range bounds to filter.
func windowFilter(filter bson.M, w store.Window) bson.M {
	if filter == nil {
		filter = bson.M{}
	}
	if w.RangeKey == "" || (w.From == nil && w.To == nil) {
		return filter
	}
	bounds := bson.M{}
	if w.From != nil {
		bounds["$gte"] = w.From
	}
	if w.To != nil {
		bounds["$lte"] = w.To
	}
	filter[string(w.RangeKey)] = bounds
	return filter
}

// windowOptions translates the window's ordering and limit.
func windowOptions(w store.Window) *options.FindOptions {
	opts := options.Find()
	dir := 1
	if w.Order == store.Descending {
		dir = -1
	}
	var sort bson.D
	for _, k := range []store.Key{w.SortKey, w.TieKey} {
		if k != "" {
			sort = append(sort, bson.E{Key: string(k), Value: dir})
		}
	}
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	if w.Limit > 0 {
		opts.SetLimit(int64(w.Limit))
	}
	return opts
}

// find runs a windowed query on collection and decodes every row.
func find[T any](ctx context.Context, col *mongo.Collection, filter bson.M, w store.Window) ([]T, error) {
	cursor, err := col.Find(ctx, windowFilter(filter, w), windowOptions(w))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func after() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// notFound converts the driver's no-documents error into store.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func exists(ctx context.Context, col *mongo.Collection, id string) (bool, error) {
	n, err := col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}
