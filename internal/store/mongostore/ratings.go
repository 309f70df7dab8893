package mongostore

import (
	"context"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateRating leans on the uniq_user_date_meal index so two concurrent
// submissions for the same meal can't both land.
func (s *Store) CreateRating(ctx context.Context, r *models.MessRating) error {
	_, err := s.col(ratingsCollection).InsertOne(ctx, r)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) ListRatings(ctx context.Context, w store.Window) ([]models.MessRating, error) {
	return find[models.MessRating](ctx, s.col(ratingsCollection), nil, w)
}

func (s *Store) CreateWeeklySummary(ctx context.Context, sum *models.WeeklyMessSummary) error {
	_, err := s.col(summariesCollection).InsertOne(ctx, sum)
	return err
}

func (s *Store) ListWeeklySummaries(ctx context.Context, w store.Window) ([]models.WeeklyMessSummary, error) {
	return find[models.WeeklyMessSummary](ctx, s.col(summariesCollection), nil, w)
}
