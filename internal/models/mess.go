package models

import (
	"time"
)

type Meal string

const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
	MealGeneral   Meal = "general"
)

var Meals = []Meal{MealBreakfast, MealLunch, MealDinner, MealGeneral}

func (m Meal) Valid() bool {
	for _, v := range Meals {
		if m == v {
			return true
		}
	}
	return false
}

const (
	MinRating = 1
	MaxRating = 5
)

// MessRating is one student's rating of one meal on one day.
type MessRating struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`

	Rating  int    `bson:"rating" json:"rating"`
	Meal    Meal   `bson:"meal" json:"meal"`
	Comment string `bson:"comment" json:"comment"`
	Date    string `bson:"date" json:"date"` // YYYY-MM-DD

	AuthorID string `bson:"user_id" json:"-"`
}

// WeeklyMessSummary is the snapshot written by the weekly summary job.
type WeeklyMessSummary struct {
	ID           string    `bson:"_id" json:"id"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	WeekStarting string    `bson:"week_starting" json:"weekStarting"`
	AvgRating    float64   `bson:"avg_rating" json:"avgRating"`
	TotalRatings int       `bson:"total_ratings" json:"totalRatings"`
}
