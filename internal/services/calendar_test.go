package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnshRaj112/hostel-survival-kit/internal/extractor"
	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
)

func str(s string) *string { return &s }

func TestCalendarCreateAndList(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.svc.Calendar.Create(ctx, "u1", EventInput{Title: str("Exam")})
	wantKind(t, err, KindValidation)
	wantMessage(t, err, "Title and date required")

	_, err = env.svc.Calendar.Create(ctx, "u1", EventInput{Title: str("Exam"), Date: str("15-03-2025")})
	wantKind(t, err, KindValidation)

	_, err = env.svc.Calendar.Create(ctx, "u1", EventInput{Title: str("Exam"), Date: str("2025-03-15"), Type: str("quiz")})
	wantKind(t, err, KindValidation)

	later, _ := env.svc.Calendar.Create(ctx, "u1", EventInput{Title: str("End Sem"), Date: str("2025-05-01"), Type: str("semester_end")})
	sooner, err := env.svc.Calendar.Create(ctx, "u1", EventInput{Title: str("Fest"), Date: str("2025-03-20")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sooner.Type != models.EventOther || sooner.Source != models.SourceManual {
		t.Errorf("defaults = %+v", sooner)
	}

	all, _ := env.svc.Calendar.List(ctx, "", "")
	if len(all) != 2 || all[0].ID != sooner.ID || all[1].ID != later.ID {
		t.Errorf("List order = %+v", all)
	}

	march, _ := env.svc.Calendar.List(ctx, "2025-03-01", "2025-03-31")
	if len(march) != 1 || march[0].ID != sooner.ID {
		t.Errorf("bounded List = %+v", march)
	}

	_, err = env.svc.Calendar.List(ctx, "2025-04-01", "2025-03-01")
	wantKind(t, err, KindValidation)
}

func TestCalendarUpdateDeleteAuthorization(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.register(t, "rep", "Rep", models.RoleRep)

	e, _ := env.svc.Calendar.Create(ctx, "author", EventInput{Title: str("Quiz"), Date: str("2025-03-18"), Type: str("exam")})

	_, err := env.svc.Calendar.Update(ctx, e.ID, "stranger", EventInput{Title: str("Hacked")})
	wantKind(t, err, KindForbidden)

	_, err = env.svc.Calendar.Update(ctx, e.ID, "author", EventInput{})
	wantKind(t, err, KindValidation)

	updated, err := env.svc.Calendar.Update(ctx, e.ID, "author", EventInput{Date: str("2025-03-19")})
	if err != nil {
		t.Fatalf("author Update: %v", err)
	}
	if updated.Date != "2025-03-19" || updated.Title != "Quiz" {
		t.Errorf("updated = %+v", updated)
	}

	updated, err = env.svc.Calendar.Update(ctx, e.ID, "rep", EventInput{Description: str("Room 101")})
	if err != nil || updated.Description != "Room 101" {
		t.Errorf("rep Update = %+v, %v", updated, err)
	}

	wantKind(t, env.svc.Calendar.Delete(ctx, e.ID, "stranger"), KindForbidden)
	if err := env.svc.Calendar.Delete(ctx, e.ID, "rep"); err != nil {
		t.Fatalf("rep Delete: %v", err)
	}
	wantKind(t, env.svc.Calendar.Delete(ctx, e.ID, "rep"), KindNotFound)
}

func TestCalendarCountdown(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	create := func(title, date, typ string) {
		if _, err := env.svc.Calendar.Create(ctx, "u1", EventInput{Title: str(title), Date: str(date), Type: str(typ)}); err != nil {
			t.Fatal(err)
		}
	}
	create("Past exam", "2025-03-01", "exam")
	create("Second exam", "2025-03-20", "exam")
	create("Next exam", "2025-03-13", "exam")
	create("Holi", "2025-03-14", "holiday")
	create("Assignment", "2025-03-12", "assignment")

	cd, err := env.svc.Calendar.Countdown(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cd.NextExam == nil || cd.NextExam.Title != "Next exam" {
		t.Fatalf("NextExam = %+v", cd.NextExam)
	}
	// 2025-03-13 00:00 IST is 14h after the clock
	if want := (14 * time.Hour).Milliseconds(); cd.NextExam.MsRemaining != want {
		t.Errorf("MsRemaining = %d, want %d", cd.NextExam.MsRemaining, want)
	}
	if cd.NextHoliday == nil || cd.NextHoliday.Title != "Holi" {
		t.Errorf("NextHoliday = %+v", cd.NextHoliday)
	}
	if cd.SemesterEnd != nil {
		t.Errorf("SemesterEnd = %+v, want nil", cd.SemesterEnd)
	}
}

func TestCalendarParseAndStore(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.svc.Calendar.ParseAndStore(ctx, "u1", "")
	wantKind(t, err, KindValidation)
	wantMessage(t, err, "fileUrl is required")

	_, err = env.svc.Calendar.ParseAndStore(ctx, "u1", "ftp://example.com/cal.png")
	wantKind(t, err, KindValidation)

	env.ex.err = errors.New("model overloaded")
	_, err = env.svc.Calendar.ParseAndStore(ctx, "u1", "https://img.example.com/cal.png")
	wantKind(t, err, KindUpstream)
	wantMessage(t, err, "AI parsing failed: model overloaded")
	if all, _ := env.svc.Calendar.List(ctx, "", ""); len(all) != 0 {
		t.Errorf("failed parse stored %d events", len(all))
	}

	env.ex.err = nil
	env.ex.events = []extractor.ParsedEvent{
		{Title: "Mid Sem", Date: "2025-03-15", Type: models.EventExam},
		{Title: "Holi", Date: "2025-03-14", Type: models.EventHoliday, Description: "No classes"},
	}
	stored, err := env.svc.Calendar.ParseAndStore(ctx, "u1", "https://img.example.com/cal.png")
	if err != nil {
		t.Fatalf("ParseAndStore: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored = %d", len(stored))
	}
	for _, e := range stored {
		if e.Source != models.SourceAIParsed || e.AuthorID != "u1" || e.ID == "" {
			t.Errorf("event = %+v", e)
		}
	}
	if all, _ := env.svc.Calendar.List(ctx, "", ""); len(all) != 2 {
		t.Errorf("List = %d events", len(all))
	}
}

func TestCalendarParseWithoutExtractor(t *testing.T) {
	env := newEnv(t)
	env.svc.Calendar.extractor = nil
	_, err := env.svc.Calendar.ParseAndStore(context.Background(), "u1", "https://img.example.com/cal.png")
	wantKind(t, err, KindValidation)
	wantMessage(t, err, "OpenAI key not set up yet")

	_, err = env.svc.Calendar.UploadAndParse(context.Background(), "u1", "cal.png", []byte("png"))
	wantKind(t, err, KindValidation)
	wantMessage(t, err, "File uploads are not configured")
}

type fakeUploader struct{ url string }

func (f fakeUploader) Upload(context.Context, string, []byte) (string, error) { return f.url, nil }

func TestCalendarUploadAndParse(t *testing.T) {
	env := newEnv(t)
	env.svc.Calendar.uploader = fakeUploader{url: "https://res.cloudinary.com/demo/image/upload/cal.png"}
	env.ex.events = []extractor.ParsedEvent{{Title: "Viva", Date: "2025-04-02", Type: models.EventExam}}

	stored, err := env.svc.Calendar.UploadAndParse(context.Background(), "u1", "cal.png", []byte("png"))
	if err != nil || len(stored) != 1 {
		t.Fatalf("UploadAndParse = %+v, %v", stored, err)
	}
}
