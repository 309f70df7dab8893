package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/rating"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
)

const (
	MaxCommentLength = 500

	NoRatingsToday = "No ratings yet today"
	NoRatingsWeek  = "No data this week"
)

// MessStats is the payload of GET /mess/stats.
type MessStats struct {
	TodayAvg   *float64              `json:"todayAvg"`
	TodayLabel string                `json:"todayLabel"`
	TodayCount int                   `json:"todayCount"`
	WeekAvg    *float64              `json:"weekAvg"`
	WeekLabel  string                `json:"weekLabel"`
	WeekCount  int                   `json:"weekCount"`
	DailyAvgs  []rating.DailyAverage `json:"dailyAvgs"`
}

type MessService struct {
	base
	store store.RatingStore
}

// weekAgo is the first day of the trailing seven-day window.
func (s *MessService) weekAgo() string {
	return s.now().In(s.loc).AddDate(0, 0, -7).Format(models.DateLayout)
}

// Rate records the caller's rating of today's meal. A student may rate each
// meal once per day.
func (s *MessService) Rate(ctx context.Context, uid string, value int, meal, comment string) (*models.MessRating, error) {
	if value < models.MinRating || value > models.MaxRating {
		return nil, invalid("Rating must be between %d and %d", models.MinRating, models.MaxRating)
	}

	m := models.Meal(strings.ToLower(strings.TrimSpace(meal)))
	if m == "" {
		m = models.MealGeneral
	}
	if !m.Valid() {
		return nil, invalid("Meal must be one of: breakfast, lunch, dinner, general")
	}

	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return nil, invalid("Comment is too long (max %d characters)", MaxCommentLength)
	}

	r := &models.MessRating{
		ID:        newID(),
		CreatedAt: s.now().UTC(),
		Rating:    value,
		Meal:      m,
		Comment:   comment,
		Date:      s.today(),
		AuthorID:  uid,
	}
	err := s.store.CreateRating(ctx, r)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, invalid("You already rated today's %s", m)
	}
	if err != nil {
		return nil, storeFailure("create rating", err)
	}

	s.metrics.RatingsAdded.WithLabelValues(string(m)).Inc()
	s.publish(ctx, FeedEvent{
		Type:  EventRatingAdded,
		Topic: TopicMess,
		ID:    r.ID,
		Data:  map[string]any{"meal": r.Meal, "date": r.Date, "rating": r.Rating},
	})
	return r, nil
}

// Stats aggregates today's ratings and the trailing week.
func (s *MessService) Stats(ctx context.Context) (*MessStats, error) {
	today := s.today()
	rows, err := s.store.ListRatings(ctx, store.Window{RangeKey: store.KeyDate, From: s.weekAgo()})
	if err != nil {
		return nil, storeFailure("list ratings", err)
	}

	var todayValues, weekValues []int
	dated := make([]rating.Dated, 0, len(rows))
	for _, r := range rows {
		weekValues = append(weekValues, r.Rating)
		dated = append(dated, rating.Dated{Date: r.Date, Rating: r.Rating})
		if r.Date == today {
			todayValues = append(todayValues, r.Rating)
		}
	}

	day := rating.Aggregate(todayValues)
	week := rating.Aggregate(weekValues)

	stats := &MessStats{
		TodayAvg:   day.Avg,
		TodayLabel: NoRatingsToday,
		TodayCount: day.Count,
		WeekAvg:    week.Avg,
		WeekLabel:  NoRatingsWeek,
		WeekCount:  week.Count,
		DailyAvgs:  rating.Daily(dated),
	}
	if day.HasData() {
		stats.TodayLabel = day.Label()
	}
	if week.HasData() {
		stats.WeekLabel = week.Label()
	}
	return stats, nil
}

// WriteWeeklySummary snapshots the trailing week. An empty week is written
// with an average of 0.
func (s *MessService) WriteWeeklySummary(ctx context.Context) (*models.WeeklyMessSummary, error) {
	weekAgo := s.weekAgo()
	rows, err := s.store.ListRatings(ctx, store.Window{RangeKey: store.KeyDate, From: weekAgo})
	if err != nil {
		return nil, storeFailure("list ratings", err)
	}

	values := make([]int, len(rows))
	for i, r := range rows {
		values[i] = r.Rating
	}
	agg := rating.Aggregate(values)

	sum := &models.WeeklyMessSummary{
		ID:           newID(),
		CreatedAt:    s.now().UTC(),
		WeekStarting: weekAgo,
		TotalRatings: agg.Count,
	}
	if agg.HasData() {
		sum.AvgRating = *agg.Avg
	}
	if err := s.store.CreateWeeklySummary(ctx, sum); err != nil {
		return nil, storeFailure("create weekly summary", err)
	}
	return sum, nil
}

// Summaries lists the weekly snapshots, newest first.
func (s *MessService) Summaries(ctx context.Context) ([]models.WeeklyMessSummary, error) {
	out, err := s.store.ListWeeklySummaries(ctx, store.Window{
		SortKey: store.KeyWeekStarting,
		Order:   store.Descending,
		TieKey:  store.KeyCreatedAt,
	})
	if err != nil {
		return nil, storeFailure("list weekly summaries", err)
	}
	return out, nil
}
