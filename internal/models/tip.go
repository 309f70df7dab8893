package models

import (
	"time"
)

type TipCategory string

const (
	TipStudy   TipCategory = "study"
	TipBudget  TipCategory = "budget"
	TipDaily   TipCategory = "daily"
	TipGeneral TipCategory = "general"
)

var TipCategories = []TipCategory{TipStudy, TipBudget, TipDaily, TipGeneral}

func (c TipCategory) Valid() bool {
	for _, v := range TipCategories {
		if c == v {
			return true
		}
	}
	return false
}

type SurvivalTip struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`

	Title    string      `bson:"title" json:"title"`
	Content  string      `bson:"content" json:"content"`
	Category TipCategory `bson:"category" json:"category"`
	Tags     []string    `bson:"tags" json:"tags"`

	Upvotes   int      `bson:"upvotes" json:"upvotes"`
	UpvotedBy []string `bson:"upvoted_by" json:"-"`

	AuthorID string `bson:"user_id" json:"-"`
}

// HasTag reports whether the tip carries tag, either in its tag list or as
// its category.
func (t *SurvivalTip) HasTag(tag string) bool {
	if string(t.Category) == tag {
		return true
	}
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}
