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
	TipFeedLimit    = 50
	LeaderboardSize = 10
	MaxTipTitle     = 120
	MaxTipContent   = 2000
	MaxTipTags      = 10
)

// LeaderboardTip is a tip with its author's display name.
type LeaderboardTip struct {
	models.SurvivalTip
	AuthorName string `json:"authorName"`
}

type TipService struct {
	base
	store store.TipStore
	users *UserService
}

func topTips(limit int) store.Window {
	return store.Window{
		SortKey: store.KeyUpvotes,
		Order:   store.Descending,
		TieKey:  store.KeyCreatedAt,
		Limit:   limit,
	}
}

func parseTipCategory(s string) (models.TipCategory, error) {
	c := models.TipCategory(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return models.TipGeneral, nil
	}
	if !c.Valid() {
		return "", invalid("Category must be one of: study, budget, daily, general")
	}
	return c, nil
}

// cleanTags trims, drops empties and removes duplicates, keeping order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (s *TipService) Create(ctx context.Context, uid, title, content, category string, tags []string) (*models.SurvivalTip, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, invalid("Title and content are required")
	}
	if utf8.RuneCountInString(title) > MaxTipTitle {
		return nil, invalid("Title is too long (max %d characters)", MaxTipTitle)
	}
	if utf8.RuneCountInString(content) > MaxTipContent {
		return nil, invalid("Tip is too long (max %d characters)", MaxTipContent)
	}
	cat, err := parseTipCategory(category)
	if err != nil {
		return nil, err
	}
	tags = cleanTags(tags)
	if len(tags) > MaxTipTags {
		return nil, invalid("A tip can have at most %d tags", MaxTipTags)
	}

	t := &models.SurvivalTip{
		ID:        newID(),
		CreatedAt: s.now().UTC(),
		Title:     title,
		Content:   content,
		Category:  cat,
		Tags:      tags,
		UpvotedBy: []string{},
		AuthorID:  uid,
	}
	if err := s.store.CreateTip(ctx, t); err != nil {
		return nil, storeFailure("create tip", err)
	}

	s.metrics.TipsCreated.Inc()
	s.publish(ctx, FeedEvent{Type: EventTipCreated, Topic: TopicTips, ID: t.ID, Data: t})
	return t, nil
}

// List returns the most upvoted tips. tag matches either a tag or the
// category; category must match exactly.
func (s *TipService) List(ctx context.Context, tag, category string) ([]models.SurvivalTip, error) {
	f := store.TipFilter{Tag: strings.TrimSpace(tag)}
	if strings.TrimSpace(category) != "" {
		c, err := parseTipCategory(category)
		if err != nil {
			return nil, err
		}
		f.Category = c
	}

	tips, err := s.store.ListTips(ctx, f, topTips(TipFeedLimit))
	if err != nil {
		return nil, storeFailure("list tips", err)
	}
	return tips, nil
}

// Upvote is one-way: a second upvote by the same student is rejected.
func (s *TipService) Upvote(ctx context.Context, id, uid string) (int, error) {
	n, err := s.store.UpvoteTip(ctx, id, uid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return 0, notFound("Tip not found")
	case errors.Is(err, store.ErrAlreadyVoted):
		return n, invalid("You already upvoted this tip")
	case err != nil:
		return 0, storeFailure("upvote tip", err)
	}

	s.metrics.TipUpvotes.Inc()
	s.publish(ctx, FeedEvent{Type: EventTipUpvoted, Topic: TopicTips, ID: id, Count: &n})
	return n, nil
}

func (s *TipService) Leaderboard(ctx context.Context) ([]LeaderboardTip, error) {
	tips, err := s.store.ListTips(ctx, store.TipFilter{}, topTips(LeaderboardSize))
	if err != nil {
		return nil, storeFailure("list tips", err)
	}

	uids := make([]string, 0, len(tips))
	for _, t := range tips {
		uids = append(uids, t.AuthorID)
	}
	names, err := s.users.DisplayNames(ctx, uids)
	if err != nil {
		return nil, err
	}

	out := make([]LeaderboardTip, len(tips))
	for i, t := range tips {
		out[i] = LeaderboardTip{SurvivalTip: t, AuthorName: names[t.AuthorID]}
	}
	return out, nil
}
