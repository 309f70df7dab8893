package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/hostel-survival-kit/internal/extractor"
	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
)

const (
	MaxEventTitle       = 120
	MaxEventDescription = 1000
)

// EventInput carries the writable calendar fields. For updates, nil fields
// are left unchanged.
type EventInput struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

// CountdownEvent is an upcoming event with the time left until its day
// starts in the app timezone.
type CountdownEvent struct {
	models.CalendarEvent
	MsRemaining int64 `json:"msRemaining"`
}

type Countdown struct {
	NextExam    *CountdownEvent `json:"nextExam"`
	NextHoliday *CountdownEvent `json:"nextHoliday"`
	SemesterEnd *CountdownEvent `json:"semesterEnd"`
}

type CalendarService struct {
	base
	store     store.EventStore
	users     *UserService
	extractor extractor.Extractor
	uploader  Uploader
}

func parseEventType(s string) (models.EventType, error) {
	t := models.EventType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return models.EventOther, nil
	}
	if !t.Valid() {
		return "", invalid("Type must be one of: exam, holiday, semester_end, assignment, other")
	}
	return t, nil
}

// validate checks the fields that are present and returns them as a store
// update.
func (in EventInput) validate() (store.EventUpdate, error) {
	var u store.EventUpdate
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return u, invalid("Title cannot be empty")
		}
		if utf8.RuneCountInString(title) > MaxEventTitle {
			return u, invalid("Title is too long (max %d characters)", MaxEventTitle)
		}
		u.Title = &title
	}
	if in.Date != nil {
		date := strings.TrimSpace(*in.Date)
		if !models.ValidDate(date) {
			return u, invalid("Date must be YYYY-MM-DD")
		}
		u.Date = &date
	}
	if in.Type != nil {
		t, err := parseEventType(*in.Type)
		if err != nil {
			return u, err
		}
		u.Type = &t
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(desc) > MaxEventDescription {
			return u, invalid("Description is too long (max %d characters)", MaxEventDescription)
		}
		u.Description = &desc
	}
	return u, nil
}

func byDate(from, to string) store.Window {
	w := store.Window{
		RangeKey: store.KeyDate,
		SortKey:  store.KeyDate,
		Order:    store.Ascending,
		TieKey:   store.KeyCreatedAt,
	}
	if from != "" {
		w.From = from
	}
	if to != "" {
		w.To = to
	}
	return w
}

// List returns events ordered by date, optionally bounded by inclusive
// from/to days.
func (s *CalendarService) List(ctx context.Context, from, to string) ([]models.CalendarEvent, error) {
	if from != "" && !models.ValidDate(from) {
		return nil, invalid("from must be YYYY-MM-DD")
	}
	if to != "" && !models.ValidDate(to) {
		return nil, invalid("to must be YYYY-MM-DD")
	}
	if from != "" && to != "" && from > to {
		return nil, invalid("from must not be after to")
	}

	out, err := s.store.ListEvents(ctx, byDate(from, to))
	if err != nil {
		return nil, storeFailure("list events", err)
	}
	return out, nil
}

func (s *CalendarService) Create(ctx context.Context, uid string, in EventInput) (*models.CalendarEvent, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Date == nil || strings.TrimSpace(*in.Date) == "" {
		return nil, invalid("Title and date required")
	}
	u, err := in.validate()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &models.CalendarEvent{
		ID:        newID(),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     *u.Title,
		Date:      *u.Date,
		Type:      models.EventOther,
		Source:    models.SourceManual,
		AuthorID:  uid,
	}
	if u.Type != nil {
		e.Type = *u.Type
	}
	if u.Description != nil {
		e.Description = *u.Description
	}

	if err := s.store.CreateEvents(ctx, []*models.CalendarEvent{e}); err != nil {
		return nil, storeFailure("create event", err)
	}
	s.eventsChanged(ctx, 1)
	return e, nil
}

// authorize loads the event and checks that uid may change it.
func (s *CalendarService) authorize(ctx context.Context, id, uid string) (*models.CalendarEvent, error) {
	e, err := s.store.GetEvent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Event not found")
	}
	if err != nil {
		return nil, storeFailure("get event", err)
	}
	if e.AuthorID == uid {
		return e, nil
	}
	rep, err := s.users.IsRep(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !rep {
		return nil, forbidden("Only the event's author or a hostel rep can change it")
	}
	return e, nil
}

func (s *CalendarService) Update(ctx context.Context, id, uid string, in EventInput) (*models.CalendarEvent, error) {
	u, err := in.validate()
	if err != nil {
		return nil, err
	}
	if u.Empty() {
		return nil, invalid("Nothing to update")
	}
	if _, err := s.authorize(ctx, id, uid); err != nil {
		return nil, err
	}

	e, err := s.store.UpdateEvent(ctx, id, u, s.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Event not found")
	}
	if err != nil {
		return nil, storeFailure("update event", err)
	}
	s.eventsChanged(ctx, 1)
	return e, nil
}

func (s *CalendarService) Delete(ctx context.Context, id, uid string) error {
	if _, err := s.authorize(ctx, id, uid); err != nil {
		return err
	}
	err := s.store.DeleteEvent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Event not found")
	}
	if err != nil {
		return storeFailure("delete event", err)
	}
	s.eventsChanged(ctx, 1)
	return nil
}

// Countdown finds the next exam, holiday and semester end on or after today.
func (s *CalendarService) Countdown(ctx context.Context) (*Countdown, error) {
	now := s.now()
	events, err := s.store.ListEvents(ctx, byDate(s.today(), ""))
	if err != nil {
		return nil, storeFailure("list events", err)
	}

	var out Countdown
	for _, e := range events {
		var slot **CountdownEvent
		switch e.Type {
		case models.EventExam:
			slot = &out.NextExam
		case models.EventHoliday:
			slot = &out.NextHoliday
		case models.EventSemesterEnd:
			slot = &out.SemesterEnd
		default:
			continue
		}
		if *slot != nil {
			continue
		}
		day, err := time.ParseInLocation(models.DateLayout, e.Date, s.loc)
		if err != nil {
			continue
		}
		*slot = &CountdownEvent{CalendarEvent: e, MsRemaining: day.Sub(now).Milliseconds()}
	}
	return &out, nil
}

// ParseAndStore extracts events from the calendar image at fileURL and
// stores all of them, or none if extraction fails.
func (s *CalendarService) ParseAndStore(ctx context.Context, uid, fileURL string) ([]models.CalendarEvent, error) {
	fileURL = strings.TrimSpace(fileURL)
	if fileURL == "" {
		return nil, invalid("fileUrl is required")
	}
	if u, err := url.Parse(fileURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("fileUrl must be an http(s) URL")
	}
	if s.extractor == nil {
		return nil, invalid("OpenAI key not set up yet")
	}

	parsed, err := s.extractor.Extract(ctx, fileURL)
	if err != nil {
		s.metrics.AIParses.WithLabelValues("error").Inc()
		return nil, upstream("AI parsing failed: "+err.Error(), err)
	}
	s.metrics.AIParses.WithLabelValues("ok").Inc()

	now := s.now().UTC()
	batch := make([]*models.CalendarEvent, len(parsed))
	out := make([]models.CalendarEvent, len(parsed))
	for i, p := range parsed {
		batch[i] = &models.CalendarEvent{
			ID:          newID(),
			CreatedAt:   now,
			UpdatedAt:   now,
			Title:       p.Title,
			Date:        p.Date,
			Type:        p.Type,
			Description: p.Description,
			Source:      models.SourceAIParsed,
			AuthorID:    uid,
		}
		out[i] = *batch[i]
	}

	if len(batch) > 0 {
		if err := s.store.CreateEvents(ctx, batch); err != nil {
			return nil, storeFailure("create parsed events", err)
		}
		s.eventsChanged(ctx, len(batch))
	}
	return out, nil
}

// UploadAndParse stores an uploaded calendar image and parses it.
func (s *CalendarService) UploadAndParse(ctx context.Context, uid, filename string, data []byte) ([]models.CalendarEvent, error) {
	if len(data) == 0 {
		return nil, invalid("file is empty")
	}
	if s.uploader == nil {
		return nil, invalid("File uploads are not configured")
	}
	fileURL, err := s.uploader.Upload(ctx, filename, data)
	if err != nil {
		return nil, upstream("Upload failed: "+err.Error(), err)
	}
	return s.ParseAndStore(ctx, uid, fileURL)
}

func (s *CalendarService) eventsChanged(ctx context.Context, n int) {
	s.publish(ctx, FeedEvent{Type: EventEventsChanged, Topic: TopicCalendar, Count: &n})
}
