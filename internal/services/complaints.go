package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
)

const (
	MaxComplaintTitle       = 120
	MaxComplaintDescription = 2000
	MaxStatusNote           = 500

	submittedNote = "Complaint submitted successfully"
)

func categoryList() string {
	names := make([]string, len(models.ComplaintCategories))
	for i, c := range models.ComplaintCategories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func errInvalidCategory() error {
	return invalid("Invalid category. Choose: %s", categoryList())
}

func errInvalidStatus() error {
	return invalid("Status must be: Pending, In Progress, or Resolved")
}

type ComplaintService struct {
	base
	store store.ComplaintStore
	users *UserService
}

func newestFirst() store.Window {
	return store.Window{SortKey: store.KeyCreatedAt, Order: store.Descending}
}

func (s *ComplaintService) Create(ctx context.Context, uid, title, description, category string) (*models.Complaint, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	cat := models.ComplaintCategory(strings.TrimSpace(category))

	if !cat.Valid() {
		return nil, errInvalidCategory()
	}
	if title == "" {
		return nil, invalid("Title is required")
	}
	if utf8.RuneCountInString(title) > MaxComplaintTitle {
		return nil, invalid("Title is too long (max %d characters)", MaxComplaintTitle)
	}
	if utf8.RuneCountInString(description) > MaxComplaintDescription {
		return nil, invalid("Description is too long (max %d characters)", MaxComplaintDescription)
	}

	now := s.now().UTC()
	c := &models.Complaint{
		ID:          newID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Title:       title,
		Description: description,
		Category:    cat,
		Status:      models.StatusPending,
		Timeline: []models.TimelineEntry{{
			Status:    models.StatusPending,
			Note:      submittedNote,
			Timestamp: now,
			UpdatedBy: uid,
		}},
		AuthorID: uid,
	}
	if err := s.store.CreateComplaint(ctx, c); err != nil {
		return nil, storeFailure("create complaint", err)
	}

	s.metrics.Complaints.WithLabelValues(string(models.StatusPending)).Inc()
	return c, nil
}

// Mine lists the caller's complaints, newest first.
func (s *ComplaintService) Mine(ctx context.Context, uid string) ([]models.Complaint, error) {
	out, err := s.store.ListComplaints(ctx, store.ComplaintFilter{AuthorID: uid}, newestFirst())
	if err != nil {
		return nil, storeFailure("list complaints", err)
	}
	return out, nil
}

// All lists every complaint for reps, optionally filtered by status and
// category.
func (s *ComplaintService) All(ctx context.Context, status, category string) ([]models.Complaint, error) {
	var f store.ComplaintFilter
	if status != "" {
		f.Status = models.ComplaintStatus(status)
		if !f.Status.Valid() {
			return nil, errInvalidStatus()
		}
	}
	if category != "" {
		f.Category = models.ComplaintCategory(category)
		if !f.Category.Valid() {
			return nil, errInvalidCategory()
		}
	}

	out, err := s.store.ListComplaints(ctx, f, newestFirst())
	if err != nil {
		return nil, storeFailure("list complaints", err)
	}
	return out, nil
}

// Get returns one complaint to its author or to a rep.
func (s *ComplaintService) Get(ctx context.Context, id, uid string) (*models.Complaint, error) {
	c, err := s.store.GetComplaint(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Complaint not found")
	}
	if err != nil {
		return nil, storeFailure("get complaint", err)
	}

	if c.AuthorID != uid {
		rep, err := s.users.IsRep(ctx, uid)
		if err != nil {
			return nil, err
		}
		if !rep {
			return nil, forbidden("You can only view your own complaints")
		}
	}
	return c, nil
}

// UpdateStatus appends a timeline entry and moves the complaint to status.
// Any status may follow any other.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id, uid, status, note string) (*models.Complaint, error) {
	st := models.ComplaintStatus(status)
	if !st.Valid() {
		return nil, errInvalidStatus()
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", st)
	}
	if utf8.RuneCountInString(note) > MaxStatusNote {
		return nil, invalid("Note is too long (max %d characters)", MaxStatusNote)
	}

	c, err := s.store.AppendComplaintStatus(ctx, id, models.TimelineEntry{
		Status:    st,
		Note:      note,
		Timestamp: s.now().UTC(),
		UpdatedBy: uid,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Complaint not found")
	}
	if err != nil {
		return nil, storeFailure("update complaint status", err)
	}

	s.metrics.Complaints.WithLabelValues(string(st)).Inc()
	return c, nil
}
