package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const rollbackTimeout = 10 * time.Second

// rollbackContext keeps ctx's values but drops its deadline and
// cancellation, so an insert that died on an expired context can still be
// undone.
func rollbackContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
}

// CreateEvents inserts the batch in order. If the insert fails part way the
// rows that did land are removed again, so callers never observe a partial
// batch.
func (s *Store) CreateEvents(ctx context.Context, events []*models.CalendarEvent) error {
	if len(events) == 0 {
		return nil
	}
	col := s.col(eventsCollection)

	docs := make([]interface{}, 0, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		docs = append(docs, e)
		ids = append(ids, e.ID)
	}

	_, err := col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return nil
	}
	rbCtx, cancel := rollbackContext(ctx)
	defer cancel()
	if _, rbErr := col.DeleteMany(rbCtx, bson.M{"_id": bson.M{"$in": ids}}); rbErr != nil {
		return fmt.Errorf("insert events: %w (rollback failed: %v)", err, rbErr)
	}
	return fmt.Errorf("insert events: %w", err)
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	if err := s.col(eventsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func eventUpdate(u store.EventUpdate, at time.Time) bson.M {
	set := bson.M{"updated_at": at}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	return bson.M{"$set": set}
}

func (s *Store) UpdateEvent(ctx context.Context, id string, u store.EventUpdate, at time.Time) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	err := s.col(eventsCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, eventUpdate(u, at), after()).Decode(&e)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.col(eventsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, w store.Window) ([]models.CalendarEvent, error) {
	return find[models.CalendarEvent](ctx, s.col(eventsCollection), nil, w)
}
