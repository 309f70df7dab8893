// Package rating turns raw mess ratings into averages and labels.
package rating

import (
	"math"
	"sort"
)

const (
	LabelDisaster   = "Michelin Disaster"
	LabelSurvivable = "Survivable"
	LabelMid        = "Mid But Edible"
	LabelDecent     = "Actually Decent"
	LabelHeaven     = "Hostel Heaven"
)

// Summary is the aggregate of a set of ratings. Avg is nil when there were
// no ratings.
type Summary struct {
	Avg   *float64
	Raw   float64
	Count int
}

// HasData reports whether the summary was computed from at least one rating.
func (s Summary) HasData() bool {
	return s.Avg != nil
}

// Label returns the qualitative label for the summary, or empty when there is
// no data.
func (s Summary) Label() string {
	if !s.HasData() {
		return ""
	}
	return Label(s.Raw)
}

// Aggregate computes the mean of ratings rounded to one decimal place.
func Aggregate(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}
	total := 0
	for _, r := range ratings {
		total += r
	}
	raw := float64(total) / float64(len(ratings))
	avg := Round1(raw)
	return Summary{Avg: &avg, Raw: raw, Count: len(ratings)}
}

// Label maps an average onto the fixed half-point buckets. Bucket upper
// bounds are inclusive.
func Label(avg float64) string {
	switch {
	case avg <= 1.5:
		return LabelDisaster
	case avg <= 2.5:
		return LabelSurvivable
	case avg <= 3.5:
		return LabelMid
	case avg <= 4.5:
		return LabelDecent
	default:
		return LabelHeaven
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Dated is a single rating on a calendar day.
type Dated struct {
	Date   string
	Rating int
}

type DailyAverage struct {
	Date  string  `json:"date"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// Daily groups ratings by date and returns one average per day, oldest first.
func Daily(rows []Dated) []DailyAverage {
	byDate := make(map[string][]int)
	for _, r := range rows {
		byDate[r.Date] = append(byDate[r.Date], r.Rating)
	}

	out := make([]DailyAverage, 0, len(byDate))
	for date, ratings := range byDate {
		s := Aggregate(ratings)
		out = append(out, DailyAverage{Date: date, Avg: *s.Avg, Count: s.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
