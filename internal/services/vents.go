package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
)

const (
	VentFeedLimit = 50
	MinVentLength = 3
	MaxVentLength = 1000
)

type VentSort string

const (
	VentSortRecent VentSort = "recent"
	VentSortLiked  VentSort = "liked"
)

// ParseVentSort falls back to recent for anything it doesn't know.
func ParseVentSort(s string) VentSort {
	if VentSort(s) == VentSortLiked {
		return VentSortLiked
	}
	return VentSortRecent
}

// Window returns the feed query for the sort mode.
func (s VentSort) Window() store.Window {
	if s == VentSortLiked {
		return store.Window{
			SortKey: store.KeyLikes,
			Order:   store.Descending,
			TieKey:  store.KeyCreatedAt,
			Limit:   VentFeedLimit,
		}
	}
	return store.Window{
		SortKey: store.KeyCreatedAt,
		Order:   store.Descending,
		Limit:   VentFeedLimit,
	}
}

type VentService struct {
	base
	store store.VentStore
}

func (s *VentService) Create(ctx context.Context, uid, content string) (*models.VentPost, error) {
	content = strings.TrimSpace(content)
	switch n := utf8.RuneCountInString(content); {
	case n < MinVentLength:
		return nil, invalid("Post is too short!")
	case n > MaxVentLength:
		return nil, invalid("Post is too long (max %d characters)", MaxVentLength)
	}

	now := s.now().UTC()
	v := &models.VentPost{
		ID:        newID(),
		CreatedAt: now,
		ExpiresAt: now.Add(models.VentLifetime),
		Content:   content,
		AuthorID:  uid,
		LikedBy:   []string{},
	}
	if err := s.store.CreateVent(ctx, v); err != nil {
		return nil, storeFailure("create vent", err)
	}

	s.metrics.VentsCreated.Inc()
	s.publish(ctx, FeedEvent{Type: EventVentCreated, Topic: TopicVents, ID: v.ID, Data: v})
	return v, nil
}

func (s *VentService) List(ctx context.Context, sort VentSort) ([]models.VentPost, error) {
	vents, err := s.store.ListVents(ctx, sort.Window())
	if err != nil {
		return nil, storeFailure("list vents", err)
	}
	return vents, nil
}

// Like toggles the caller's like and returns the resulting state.
func (s *VentService) Like(ctx context.Context, id, uid string) (bool, int, error) {
	liked, likes, err := s.store.ToggleVentLike(ctx, id, uid)
	if errors.Is(err, store.ErrNotFound) {
		return false, 0, notFound("Post not found")
	}
	if err != nil {
		return false, 0, storeFailure("toggle like", err)
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	s.metrics.VentLikes.WithLabelValues(action).Inc()
	s.publish(ctx, FeedEvent{Type: EventVentLiked, Topic: TopicVents, ID: id, Count: &likes})
	return liked, likes, nil
}

// SweepExpired deletes every vent whose expiry is at or before the moment
// the sweep starts.
func (s *VentService) SweepExpired(ctx context.Context) (int64, error) {
	now := s.now()
	n, err := s.store.DeleteExpiredVents(ctx, now)
	if err != nil {
		return 0, storeFailure("delete expired vents", err)
	}
	if n > 0 {
		s.metrics.VentsSwept.Add(float64(n))
		count := int(n)
		s.publish(ctx, FeedEvent{Type: EventVentsExpired, Topic: TopicVents, Count: &count})
	}
	return n, nil
}
