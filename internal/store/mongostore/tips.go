package mongostore

import (
	"context"
	"errors"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *Store) CreateTip(ctx context.Context, t *models.SurvivalTip) error {
	if t.UpvotedBy == nil {
		t.UpvotedBy = []string{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	_, err := s.col(tipsCollection).InsertOne(ctx, t)
	return err
}

func tipFilter(f store.TipFilter) bson.M {
	filter := bson.M{}
	if f.Tag != "" {
		filter["$or"] = bson.A{
			bson.M{"tags": f.Tag},
			bson.M{"category": f.Tag},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func (s *Store) ListTips(ctx context.Context, f store.TipFilter, w store.Window) ([]models.SurvivalTip, error) {
	return find[models.SurvivalTip](ctx, s.col(tipsCollection), tipFilter(f), w)
}

func (s *Store) UpvoteTip(ctx context.Context, id, uid string) (int, error) {
	col := s.col(tipsCollection)

	var t models.SurvivalTip
	err := col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "upvoted_by": bson.M{"$ne": uid}},
		bson.M{"$inc": bson.M{"upvotes": 1}, "$addToSet": bson.M{"upvoted_by": uid}},
		after(),
	).Decode(&t)
	if err == nil {
		return t.Upvotes, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}

	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return 0, notFound(err)
	}
	return t.Upvotes, store.ErrAlreadyVoted
}
