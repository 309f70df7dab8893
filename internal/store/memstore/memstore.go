// Package memstore is an in-process implementation of the store contracts.
// It backs STORE_DRIVER=memory for local development and the handler tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/AnshRaj112/hostel-survival-kit/internal/engagement"
	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
)

// Store keeps every collection in memory behind one mutex, which gives the
// per-document atomicity the services rely on.
type Store struct {
	mu         sync.Mutex
	users      map[string]models.User
	vents      []models.VentPost
	ratings    []models.MessRating
	summaries  []models.WeeklyMessSummary
	tips       []models.SurvivalTip
	complaints []models.Complaint
	events     []models.CalendarEvent
}

var (
	_ store.Store     = (*Store)(nil)
	_ store.UserStore = (*Store)(nil)
)

func New() *Store {
	return &Store{users: make(map[string]models.User)}
}

// Users

func (s *Store) UpsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[u.UID]; ok {
		u.CreatedAt = existing.CreatedAt
	}
	s.users[u.UID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, uid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUsers(_ context.Context, uids []string) (map[string]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.User, len(uids))
	for _, uid := range uids {
		if u, ok := s.users[uid]; ok {
			out[uid] = &u
		}
	}
	return out, nil
}

// Vents

func ventField(v *models.VentPost, k store.Key) any {
	switch k {
	case store.KeyCreatedAt:
		return v.CreatedAt
	case store.KeyExpiresAt:
		return v.ExpiresAt
	case store.KeyLikes:
		return v.Likes
	}
	return nil
}

func (s *Store) CreateVent(_ context.Context, v *models.VentPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	cp.LikedBy = append([]string{}, v.LikedBy...)
	s.vents = append(s.vents, cp)
	return nil
}

func (s *Store) ListVents(_ context.Context, w store.Window) ([]models.VentPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Apply(s.vents, w, ventField), nil
}

func (s *Store) ToggleVentLike(_ context.Context, id, uid string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vents {
		v := &s.vents[i]
		if v.ID != id {
			continue
		}
		tally, liked := engagement.Toggle(engagement.Tally{Count: v.Likes, Voters: v.LikedBy}, uid)
		v.Likes, v.LikedBy = tally.Count, tally.Voters
		return liked, v.Likes, nil
	}
	return false, 0, store.ErrNotFound
}

func (s *Store) DeleteExpiredVents(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.vents[:0]
	var deleted int64
	for _, v := range s.vents {
		if v.Expired(now) {
			deleted++
			continue
		}
		kept = append(kept, v)
	}
	s.vents = kept
	return deleted, nil
}

// Ratings

func ratingField(r *models.MessRating, k store.Key) any {
	switch k {
	case store.KeyCreatedAt:
		return r.CreatedAt
	case store.KeyDate:
		return r.Date
	}
	return nil
}

func (s *Store) CreateRating(_ context.Context, r *models.MessRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ratings {
		if existing.AuthorID == r.AuthorID && existing.Date == r.Date && existing.Meal == r.Meal {
			return store.ErrDuplicate
		}
	}
	s.ratings = append(s.ratings, *r)
	return nil
}

func (s *Store) ListRatings(_ context.Context, w store.Window) ([]models.MessRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Apply(s.ratings, w, ratingField), nil
}

func summaryField(r *models.WeeklyMessSummary, k store.Key) any {
	switch k {
	case store.KeyCreatedAt:
		return r.CreatedAt
	case store.KeyWeekStarting:
		return r.WeekStarting
	}
	return nil
}

func (s *Store) CreateWeeklySummary(_ context.Context, sum *models.WeeklyMessSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, *sum)
	return nil
}

func (s *Store) ListWeeklySummaries(_ context.Context, w store.Window) ([]models.WeeklyMessSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Apply(s.summaries, w, summaryField), nil
}

// Tips

func tipField(t *models.SurvivalTip, k store.Key) any {
	switch k {
	case store.KeyCreatedAt:
		return t.CreatedAt
	case store.KeyUpvotes:
		return t.Upvotes
	}
	return nil
}

func (s *Store) CreateTip(_ context.Context, t *models.SurvivalTip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	cp.UpvotedBy = append([]string{}, t.UpvotedBy...)
	s.tips = append(s.tips, cp)
	return nil
}

func (s *Store) ListTips(_ context.Context, f store.TipFilter, w store.Window) ([]models.SurvivalTip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.SurvivalTip
	for _, t := range s.tips {
		if f.Tag != "" && !t.HasTag(f.Tag) {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		matched = append(matched, t)
	}
	return store.Apply(matched, w, tipField), nil
}

func (s *Store) UpvoteTip(_ context.Context, id, uid string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tips {
		t := &s.tips[i]
		if t.ID != id {
			continue
		}
		tally, err := engagement.Upvote(engagement.Tally{Count: t.Upvotes, Voters: t.UpvotedBy}, uid)
		if err != nil {
			return t.Upvotes, err
		}
		t.Upvotes, t.UpvotedBy = tally.Count, tally.Voters
		return t.Upvotes, nil
	}
	return 0, store.ErrNotFound
}

// Complaints

func complaintField(c *models.Complaint, k store.Key) any {
	if k == store.KeyCreatedAt {
		return c.CreatedAt
	}
	return nil
}

func copyComplaint(c models.Complaint) models.Complaint {
	c.Timeline = append([]models.TimelineEntry{}, c.Timeline...)
	return c
}

func (s *Store) CreateComplaint(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints = append(s.complaints, copyComplaint(*c))
	return nil
}

func (s *Store) GetComplaint(_ context.Context, id string) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.complaints {
		if c.ID == id {
			cp := copyComplaint(c)
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListComplaints(_ context.Context, f store.ComplaintFilter, w store.Window) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Complaint
	for _, c := range s.complaints {
		if f.AuthorID != "" && c.AuthorID != f.AuthorID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		matched = append(matched, copyComplaint(c))
	}
	return store.Apply(matched, w, complaintField), nil
}

func (s *Store) AppendComplaintStatus(_ context.Context, id string, e models.TimelineEntry) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.complaints {
		c := &s.complaints[i]
		if c.ID != id {
			continue
		}
		c.Timeline = append(c.Timeline, e)
		c.Status = e.Status
		c.UpdatedAt = e.Timestamp
		cp := copyComplaint(*c)
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

// Calendar events

func eventField(e *models.CalendarEvent, k store.Key) any {
	switch k {
	case store.KeyCreatedAt:
		return e.CreatedAt
	case store.KeyDate:
		return e.Date
	}
	return nil
}

func (s *Store) CreateEvents(_ context.Context, events []*models.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		s.events = append(s.events, *e)
	}
	return nil
}

func (s *Store) GetEvent(_ context.Context, id string) (*models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateEvent(_ context.Context, id string, u store.EventUpdate, at time.Time) (*models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		e := &s.events[i]
		if e.ID != id {
			continue
		}
		if u.Title != nil {
			e.Title = *u.Title
		}
		if u.Date != nil {
			e.Date = *u.Date
		}
		if u.Type != nil {
			e.Type = *u.Type
		}
		if u.Description != nil {
			e.Description = *u.Description
		}
		e.UpdatedAt = at
		cp := *e
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListEvents(_ context.Context, w store.Window) ([]models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Apply(s.events, w, eventField), nil
}
