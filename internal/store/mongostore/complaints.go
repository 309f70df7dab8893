package mongostore

import (
	"context"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	_, err := s.col(complaintsCollection).InsertOne(ctx, c)
	return err
}

func (s *Store) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.col(complaintsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func complaintFilter(f store.ComplaintFilter) bson.M {
	filter := bson.M{}
	if f.AuthorID != "" {
		filter["user_id"] = f.AuthorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func (s *Store) ListComplaints(ctx context.Context, f store.ComplaintFilter, w store.Window) ([]models.Complaint, error) {
	return find[models.Complaint](ctx, s.col(complaintsCollection), complaintFilter(f), w)
}

// AppendComplaintStatus pushes the entry and mirrors its status in a single
// document update, keeping status equal to the last timeline entry.
func (s *Store) AppendComplaintStatus(ctx context.Context, id string, e models.TimelineEntry) (*models.Complaint, error) {
	var c models.Complaint
	err := s.col(complaintsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"timeline": e},
			"$set":  bson.M{"status": e.Status, "updated_at": e.Timestamp},
		},
		after(),
	).Decode(&c)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
