// Package store defines the persistence contracts used by the services.
// Implementations live in mongostore (documents), pgstore (profiles) and
// memstore (in-process, for development and tests).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/hostel-survival-kit/internal/engagement"
	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrAlreadyVoted = engagement.ErrAlreadyVoted
)

type UserStore interface {
	UpsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
	GetUsers(ctx context.Context, uids []string) (map[string]*models.User, error)
}

type VentStore interface {
	CreateVent(ctx context.Context, v *models.VentPost) error
	ListVents(ctx context.Context, w Window) ([]models.VentPost, error)
	// ToggleVentLike flips uid's like and returns whether uid now likes the
	// post together with the new like count.
	ToggleVentLike(ctx context.Context, id, uid string) (bool, int, error)
	// DeleteExpiredVents removes every vent whose expiry is at or before now.
	DeleteExpiredVents(ctx context.Context, now time.Time) (int64, error)
}

type RatingStore interface {
	// CreateRating returns ErrDuplicate when the author already rated the
	// same meal on the same date.
	CreateRating(ctx context.Context, r *models.MessRating) error
	ListRatings(ctx context.Context, w Window) ([]models.MessRating, error)
	CreateWeeklySummary(ctx context.Context, s *models.WeeklyMessSummary) error
	ListWeeklySummaries(ctx context.Context, w Window) ([]models.WeeklyMessSummary, error)
}

type TipFilter struct {
	Tag      string
	Category models.TipCategory
}

type TipStore interface {
	CreateTip(ctx context.Context, t *models.SurvivalTip) error
	ListTips(ctx context.Context, f TipFilter, w Window) ([]models.SurvivalTip, error)
	// UpvoteTip records a one-way upvote and returns the new count.
	UpvoteTip(ctx context.Context, id, uid string) (int, error)
}

type ComplaintFilter struct {
	AuthorID string
	Status   models.ComplaintStatus
	Category models.ComplaintCategory
}

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, c *models.Complaint) error
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, f ComplaintFilter, w Window) ([]models.Complaint, error)
	// AppendComplaintStatus appends e to the timeline and sets the complaint
	// status to e.Status in one update.
	AppendComplaintStatus(ctx context.Context, id string, e models.TimelineEntry) (*models.Complaint, error)
}

// EventUpdate holds the calendar fields a PUT may change. Nil fields are left
// as they are.
type EventUpdate struct {
	Title       *string
	Date        *string
	Type        *models.EventType
	Description *string
}

func (u EventUpdate) Empty() bool {
	return u.Title == nil && u.Date == nil && u.Type == nil && u.Description == nil
}

type EventStore interface {
	// CreateEvents stores the whole batch or nothing.
	CreateEvents(ctx context.Context, events []*models.CalendarEvent) error
	GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id string, u EventUpdate, at time.Time) (*models.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, w Window) ([]models.CalendarEvent, error)
}

// Store is the document side of persistence.
type Store interface {
	VentStore
	RatingStore
	TipStore
	ComplaintStore
	EventStore
}
