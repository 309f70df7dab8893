package models

import (
	"time"
)

// DateLayout is the day-granularity format used for calendar and rating dates.
const DateLayout = "2006-01-02"

type EventType string

const (
	EventExam        EventType = "exam"
	EventHoliday     EventType = "holiday"
	EventSemesterEnd EventType = "semester_end"
	EventAssignment  EventType = "assignment"
	EventOther       EventType = "other"
)

var EventTypes = []EventType{EventExam, EventHoliday, EventSemesterEnd, EventAssignment, EventOther}

func (t EventType) Valid() bool {
	for _, v := range EventTypes {
		if t == v {
			return true
		}
	}
	return false
}

type EventSource string

const (
	SourceManual   EventSource = "manual"
	SourceAIParsed EventSource = "ai_parsed"
)

type CalendarEvent struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`

	Title       string      `bson:"title" json:"title"`
	Date        string      `bson:"date" json:"date"` // YYYY-MM-DD
	Type        EventType   `bson:"type" json:"type"`
	Description string      `bson:"description" json:"description"`
	Source      EventSource `bson:"source" json:"source"`

	AuthorID string `bson:"user_id" json:"userId"`
}

// ValidDate reports whether s is a calendar day in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
