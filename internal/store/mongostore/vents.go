package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *Store) CreateVent(ctx context.Context, v *models.VentPost) error {
	if v.LikedBy == nil {
		v.LikedBy = []string{}
	}
	_, err := s.col(ventsCollection).InsertOne(ctx, v)
	return err
}

func (s *Store) ListVents(ctx context.Context, w store.Window) ([]models.VentPost, error) {
	return find[models.VentPost](ctx, s.col(ventsCollection), nil, w)
}

// ToggleVentLike relies on single-document conditional updates: the like
// branch only matches when uid is absent from liked_by and the unlike branch
// only when it is present, so the counter and the set always move together.
func (s *Store) ToggleVentLike(ctx context.Context, id, uid string) (bool, int, error) {
	col := s.col(ventsCollection)

	for attempt := 0; attempt < contentionRetries; attempt++ {
		var v models.VentPost
		err := col.FindOneAndUpdate(ctx,
			bson.M{"_id": id, "liked_by": bson.M{"$ne": uid}},
			bson.M{"$inc": bson.M{"likes": 1}, "$addToSet": bson.M{"liked_by": uid}},
			after(),
		).Decode(&v)
		if err == nil {
			return true, v.Likes, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, err
		}

		err = col.FindOneAndUpdate(ctx,
			bson.M{"_id": id, "liked_by": uid},
			bson.M{"$inc": bson.M{"likes": -1}, "$pull": bson.M{"liked_by": uid}},
			after(),
		).Decode(&v)
		if err == nil {
			return false, v.Likes, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, err
		}

		// neither branch matched: the post is gone or the same actor raced us
		ok, err := exists(ctx, col, id)
		if err != nil {
			return false, 0, err
		}
		if !ok {
			return false, 0, store.ErrNotFound
		}
	}
	return false, 0, fmt.Errorf("toggle like on vent %s: gave up after %d attempts", id, contentionRetries)
}

func (s *Store) DeleteExpiredVents(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.col(ventsCollection).DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
