package models

import (
	"time"
)

type ComplaintCategory string

const (
	ComplaintWiFi        ComplaintCategory = "WiFi"
	ComplaintFood        ComplaintCategory = "Food"
	ComplaintCleanliness ComplaintCategory = "Cleanliness"
	ComplaintElectricity ComplaintCategory = "Electricity"
	ComplaintNoise       ComplaintCategory = "Noise"
	ComplaintMaintenance ComplaintCategory = "Maintenance"
)

var ComplaintCategories = []ComplaintCategory{
	ComplaintWiFi,
	ComplaintFood,
	ComplaintCleanliness,
	ComplaintElectricity,
	ComplaintNoise,
	ComplaintMaintenance,
}

func (c ComplaintCategory) Valid() bool {
	for _, v := range ComplaintCategories {
		if c == v {
			return true
		}
	}
	return false
}

type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
)

var ComplaintStatuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved}

func (s ComplaintStatus) Valid() bool {
	for _, v := range ComplaintStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TimelineEntry is one append-only record of a complaint status change.
type TimelineEntry struct {
	Status    ComplaintStatus `bson:"status" json:"status"`
	Note      string          `bson:"note" json:"note"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
	UpdatedBy string          `bson:"updated_by" json:"updatedBy"`
}

type Complaint struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`

	Title       string            `bson:"title" json:"title"`
	Description string            `bson:"description" json:"description"`
	Category    ComplaintCategory `bson:"category" json:"category"`

	// Status always mirrors the last timeline entry.
	Status   ComplaintStatus `bson:"status" json:"status"`
	Timeline []TimelineEntry `bson:"timeline" json:"timeline"`

	AuthorID string `bson:"user_id" json:"userId"`
}
