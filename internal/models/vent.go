package models

import (
	"time"
)

// VentLifetime is how long an anonymous vent stays visible.
const VentLifetime = 24 * time.Hour

type VentPost struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`

	Content string `bson:"content" json:"content"`

	// Never returned to clients: vents are anonymous.
	AuthorID string   `bson:"user_id" json:"-"`
	LikedBy  []string `bson:"liked_by" json:"-"`

	Likes int `bson:"likes" json:"likes"`
}

// Expired reports whether the post should be swept at now.
func (v *VentPost) Expired(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}
