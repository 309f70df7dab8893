package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/hostel-survival-kit/internal/auth"
	"github.com/AnshRaj112/hostel-survival-kit/internal/extractor"
	"github.com/AnshRaj112/hostel-survival-kit/internal/handlers"
	"github.com/AnshRaj112/hostel-survival-kit/internal/logging"
	"github.com/AnshRaj112/hostel-survival-kit/internal/metrics"
	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/services"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store/memstore"
)

const testSecret = "routes-test-secret-0123456789abcdef"

var ist = time.FixedZone("IST", 5*60*60+30*60)

type fakeExtractor struct {
	events []extractor.ParsedEvent
	err    error
	urls   []string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) ([]extractor.ParsedEvent, error) {
	f.urls = append(f.urls, url)
	return f.events, f.err
}

type fixture struct {
	router   http.Handler
	verifier *auth.JWTVerifier
	ex       *fakeExtractor
}

// newFixture wires the full router over the in-memory store with the clock
// fixed at Wednesday 2025-03-12 10:00 IST.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logging.Discard()
	m := metrics.New()
	hub := services.NewHub(nil, log, func(n int) { m.FeedClients.Set(float64(n)) })
	st := memstore.New()
	ex := &fakeExtractor{}
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, ist)

	svc := services.New(services.Options{
		Store:     st,
		Users:     st,
		Feed:      hub,
		Extractor: ex,
		Metrics:   m,
		Log:       log,
		Location:  ist,
		Now:       func() time.Time { return now },
	})
	verifier := auth.NewJWTVerifier(testSecret, "", "")

	router := New(Deps{
		Handler:         handlers.New(svc, hub, log, nil),
		Verifier:        verifier,
		Roles:           svc.Users,
		Metrics:         m,
		Log:             log,
		WriteRateLimit:  100,
		WriteRateWindow: time.Minute,
	})
	return &fixture{router: router, verifier: verifier, ex: ex}
}

func (f *fixture) token(t *testing.T, uid string) string {
	t.Helper()
	tok, err := f.verifier.Mint(uid, uid, time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return tok
}

// do sends a JSON request, authenticated as uid unless uid is empty.
func (f *fixture) do(t *testing.T, method, path, uid string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+f.token(t, uid))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	var body map[string]string
	decodeInto(t, rec, &body)
	if body["error"] != msg {
		t.Errorf("error = %q, want %q", body["error"], msg)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	expectStatus(t, f.do(t, http.MethodGet, "/health", "", nil), http.StatusOK)

	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "hsk_http_requests_total") {
		t.Errorf("metrics output missing request counter")
	}
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		method, path string
	}{
		{http.MethodPost, "/vents"},
		{http.MethodPost, "/mess/rate"},
		{http.MethodPost, "/tips"},
		{http.MethodGet, "/complaints/my"},
		{http.MethodGet, "/calendar/events"},
		{http.MethodGet, "/auth/me"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			expectError(t, f.do(t, tt.method, tt.path, "", map[string]string{}), http.StatusUnauthorized, "Please login first")
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	expectError(t, rec, http.StatusUnauthorized, "Invalid login token")
}

func TestRegisterAndMe(t *testing.T) {
	f := newFixture(t)

	expectError(t, f.do(t, http.MethodGet, "/auth/me", "alice", nil), http.StatusNotFound, "Profile not found. Please register first")

	rec := f.do(t, http.MethodPost, "/auth/register", "alice", map[string]string{"displayName": "Alice  B", "role": "rep"})
	expectStatus(t, rec, http.StatusOK)
	var reg struct {
		Success bool   `json:"success"`
		UID     string `json:"uid"`
	}
	decodeInto(t, rec, &reg)
	if !reg.Success || reg.UID != "alice" {
		t.Fatalf("register response = %+v", reg)
	}

	rec = f.do(t, http.MethodGet, "/auth/me", "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	var user models.User
	decodeInto(t, rec, &user)
	if user.DisplayName != "Alice B" || user.Role != models.RoleRep {
		t.Errorf("profile = %+v", user)
	}
}

func TestVentLikeToggle(t *testing.T) {
	f := newFixture(t)

	expectError(t, f.do(t, http.MethodPost, "/vents", "alice", map[string]string{"content": "hi"}), http.StatusBadRequest, "Post is too short!")

	rec := f.do(t, http.MethodPost, "/vents", "alice", map[string]string{"content": "  the wifi died again  "})
	expectStatus(t, rec, http.StatusCreated)
	var created struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &created)

	type likeResult struct {
		Liked bool `json:"liked"`
		Likes int  `json:"likes"`
	}
	var first, second likeResult
	rec = f.do(t, http.MethodPost, "/vents/"+created.ID+"/like", "bob", nil)
	expectStatus(t, rec, http.StatusOK)
	decodeInto(t, rec, &first)
	rec = f.do(t, http.MethodPost, "/vents/"+created.ID+"/like", "bob", nil)
	expectStatus(t, rec, http.StatusOK)
	decodeInto(t, rec, &second)

	if first != (likeResult{Liked: true, Likes: 1}) {
		t.Errorf("first like = %+v", first)
	}
	if second != (likeResult{Liked: false, Likes: 0}) {
		t.Errorf("second like = %+v", second)
	}

	rec = f.do(t, http.MethodGet, "/vents?sort=liked", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if strings.Contains(rec.Body.String(), "alice") || strings.Contains(rec.Body.String(), "bob") {
		t.Errorf("vent listing leaks user ids: %s", rec.Body.String())
	}
	var vents []models.VentPost
	decodeInto(t, rec, &vents)
	if len(vents) != 1 || vents[0].Content != "the wifi died again" || vents[0].Likes != 0 {
		t.Errorf("vents = %+v", vents)
	}

	expectError(t, f.do(t, http.MethodPost, "/vents/missing/like", "bob", nil), http.StatusNotFound, "Post not found")
}

func TestMessRatingAndStats(t *testing.T) {
	f := newFixture(t)

	expectStatus(t, f.do(t, http.MethodPost, "/mess/rate", "alice", map[string]interface{}{"rating": 4, "meal": "lunch"}), http.StatusCreated)
	expectStatus(t, f.do(t, http.MethodPost, "/mess/rate", "alice", map[string]interface{}{"rating": "2", "meal": "dinner"}), http.StatusCreated)

	expectError(t,
		f.do(t, http.MethodPost, "/mess/rate", "alice", map[string]interface{}{"rating": 5, "meal": "lunch"}),
		http.StatusBadRequest, "You already rated today's lunch")
	expectError(t,
		f.do(t, http.MethodPost, "/mess/rate", "alice", map[string]interface{}{"rating": 9, "meal": "breakfast"}),
		http.StatusBadRequest, "Rating must be between 1 and 5")
	expectError(t,
		f.do(t, http.MethodPost, "/mess/rate", "alice", map[string]interface{}{"rating": 3, "meal": "brunch"}),
		http.StatusBadRequest, "Meal must be one of: breakfast, lunch, dinner, general")

	rec := f.do(t, http.MethodGet, "/mess/stats", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var stats services.MessStats
	decodeInto(t, rec, &stats)
	if stats.TodayAvg == nil || *stats.TodayAvg != 3.0 {
		t.Fatalf("todayAvg = %v, want 3.0", stats.TodayAvg)
	}
	if stats.TodayLabel != "Mid But Edible" || stats.TodayCount != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.DailyAvgs) != 1 || stats.DailyAvgs[0].Date != "2025-03-12" {
		t.Errorf("dailyAvgs = %+v", stats.DailyAvgs)
	}
}

func TestMessStatsEmpty(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/mess/stats", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var raw map[string]interface{}
	decodeInto(t, rec, &raw)
	if raw["todayAvg"] != nil || raw["todayLabel"] != services.NoRatingsToday {
		t.Errorf("empty stats = %v", raw)
	}
}

func TestTipsUpvoteOnce(t *testing.T) {
	f := newFixture(t)
	expectStatus(t, f.do(t, http.MethodPost, "/auth/register", "alice", map[string]string{"displayName": "Alice"}), http.StatusOK)

	rec := f.do(t, http.MethodPost, "/tips", "alice", map[string]interface{}{
		"title": "Cheap maggi", "content": "Buy in bulk", "category": "budget", "tags": []string{"food", "Food"},
	})
	expectStatus(t, rec, http.StatusCreated)
	var created struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &created)

	rec = f.do(t, http.MethodPost, "/tips/"+created.ID+"/upvote", "bob", nil)
	expectStatus(t, rec, http.StatusOK)
	expectError(t, f.do(t, http.MethodPost, "/tips/"+created.ID+"/upvote", "bob", nil), http.StatusBadRequest, "You already upvoted this tip")

	rec = f.do(t, http.MethodGet, "/tips/leaderboard", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var board []struct {
		Title      string `json:"title"`
		Upvotes    int    `json:"upvotes"`
		AuthorName string `json:"authorName"`
	}
	decodeInto(t, rec, &board)
	if len(board) != 1 || board[0].Upvotes != 1 || board[0].AuthorName != "Alice" {
		t.Errorf("leaderboard = %+v", board)
	}

	rec = f.do(t, http.MethodGet, "/tips?tag=budget", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var tips []models.SurvivalTip
	decodeInto(t, rec, &tips)
	if len(tips) != 1 {
		t.Errorf("tips by category tag = %d, want 1", len(tips))
	}
}

func TestComplaintLifecycle(t *testing.T) {
	f := newFixture(t)
	expectStatus(t, f.do(t, http.MethodPost, "/auth/register", "student", map[string]string{"displayName": "S"}), http.StatusOK)
	expectStatus(t, f.do(t, http.MethodPost, "/auth/register", "warden", map[string]string{"displayName": "W", "role": "rep"}), http.StatusOK)

	expectError(t,
		f.do(t, http.MethodPost, "/complaints", "student", map[string]string{"title": "x", "category": "Plumbing"}),
		http.StatusBadRequest, "Invalid category. Choose: WiFi, Food, Cleanliness, Electricity, Noise, Maintenance")

	rec := f.do(t, http.MethodPost, "/complaints", "student", map[string]string{
		"title": "No wifi on 3rd floor", "description": "since monday", "category": "WiFi",
	})
	expectStatus(t, rec, http.StatusCreated)
	var created struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &created)

	expectError(t, f.do(t, http.MethodGet, "/complaints/all", "student", nil), http.StatusForbidden, "Only hostel reps can do this")
	expectError(t,
		f.do(t, http.MethodPut, "/complaints/"+created.ID+"/status", "student", map[string]string{"status": "Resolved"}),
		http.StatusForbidden, "Only hostel reps can do this")
	expectError(t, f.do(t, http.MethodGet, "/complaints/"+created.ID, "nosy", nil), http.StatusForbidden, "You can only view your own complaints")

	rec = f.do(t, http.MethodPut, "/complaints/"+created.ID+"/status", "warden", map[string]string{"status": "Resolved", "note": "Fixed"})
	expectStatus(t, rec, http.StatusOK)

	rec = f.do(t, http.MethodGet, "/complaints/"+created.ID, "student", nil)
	expectStatus(t, rec, http.StatusOK)
	var c models.Complaint
	decodeInto(t, rec, &c)
	if c.Status != models.StatusResolved || len(c.Timeline) != 2 {
		t.Fatalf("complaint = %+v", c)
	}
	if c.Timeline[0].Status != models.StatusPending || c.Timeline[1].Note != "Fixed" || c.Timeline[1].UpdatedBy != "warden" {
		t.Errorf("timeline = %+v", c.Timeline)
	}

	rec = f.do(t, http.MethodGet, "/complaints/all?status=Resolved", "warden", nil)
	expectStatus(t, rec, http.StatusOK)
	var all []models.Complaint
	decodeInto(t, rec, &all)
	if len(all) != 1 {
		t.Errorf("resolved complaints = %d, want 1", len(all))
	}

	rec = f.do(t, http.MethodGet, "/complaints/my", "warden", nil)
	expectStatus(t, rec, http.StatusOK)
	var mine []models.Complaint
	decodeInto(t, rec, &mine)
	if len(mine) != 0 {
		t.Errorf("warden's own complaints = %d, want 0", len(mine))
	}
}

func TestCalendarEventsAndCountdown(t *testing.T) {
	f := newFixture(t)

	expectError(t, f.do(t, http.MethodPost, "/calendar/events", "alice", map[string]string{"title": "Midsem"}), http.StatusBadRequest, "Title and date required")

	rec := f.do(t, http.MethodPost, "/calendar/events", "alice", map[string]string{"title": "Midsem", "date": "2025-03-20", "type": "exam"})
	expectStatus(t, rec, http.StatusCreated)
	var created struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &created)
	expectStatus(t, f.do(t, http.MethodPost, "/calendar/events", "alice", map[string]string{"title": "Holi", "date": "2025-03-14", "type": "holiday"}), http.StatusCreated)

	expectError(t,
		f.do(t, http.MethodPut, "/calendar/events/"+created.ID, "bob", map[string]string{"title": "hacked"}),
		http.StatusForbidden, "Only the event's author or a hostel rep can change it")
	expectStatus(t, f.do(t, http.MethodPut, "/calendar/events/"+created.ID, "alice", map[string]string{"title": "Midsem I"}), http.StatusOK)

	rec = f.do(t, http.MethodGet, "/calendar/events?from=2025-03-13", "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	var events []models.CalendarEvent
	decodeInto(t, rec, &events)
	if len(events) != 2 || events[0].Title != "Holi" || events[1].Title != "Midsem I" {
		t.Fatalf("events = %+v", events)
	}

	rec = f.do(t, http.MethodGet, "/calendar/countdown", "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	var cd services.Countdown
	decodeInto(t, rec, &cd)
	if cd.NextExam == nil || cd.NextHoliday == nil || cd.SemesterEnd != nil {
		t.Fatalf("countdown = %+v", cd)
	}
	// 2025-03-20 00:00 IST is 7 days and 14 hours after the fixed clock.
	if want := (7*24*time.Hour + 14*time.Hour).Milliseconds(); cd.NextExam.MsRemaining != want {
		t.Errorf("exam msRemaining = %d, want %d", cd.NextExam.MsRemaining, want)
	}

	expectStatus(t, f.do(t, http.MethodDelete, "/calendar/events/"+created.ID, "alice", nil), http.StatusOK)
	expectError(t, f.do(t, http.MethodDelete, "/calendar/events/"+created.ID, "alice", nil), http.StatusNotFound, "Event not found")
}

func TestCalendarParse(t *testing.T) {
	f := newFixture(t)
	f.ex.events = []extractor.ParsedEvent{
		{Title: "Endsem", Date: "2025-05-02", Type: models.EventExam},
		{Title: "Summer break", Date: "2025-05-20", Type: models.EventSemesterEnd},
	}

	expectError(t, f.do(t, http.MethodPost, "/calendar/parse", "alice", map[string]string{}), http.StatusBadRequest, "fileUrl is required")
	expectError(t,
		f.do(t, http.MethodPost, "/calendar/parse", "alice", map[string]string{"fileUrl": "ftp://x/cal.png"}),
		http.StatusBadRequest, "fileUrl must be an http(s) URL")

	rec := f.do(t, http.MethodPost, "/calendar/parse", "alice", map[string]string{"fileUrl": "https://cdn.example.com/cal.png"})
	expectStatus(t, rec, http.StatusOK)
	var parsed struct {
		Success bool                   `json:"success"`
		Count   int                    `json:"count"`
		Events  []models.CalendarEvent `json:"events"`
	}
	decodeInto(t, rec, &parsed)
	if !parsed.Success || parsed.Count != 2 || parsed.Events[0].Source != models.SourceAIParsed {
		t.Errorf("parse response = %+v", parsed)
	}

	f.ex.err = errors.New("model refused")
	expectError(t,
		f.do(t, http.MethodPost, "/calendar/parse", "alice", map[string]string{"fileUrl": "https://cdn.example.com/cal.png"}),
		http.StatusInternalServerError, "AI parsing failed: model refused")

	// No uploader is configured in the fixture.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "cal.png")
	part.Write([]byte("png bytes"))
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/calendar/parse", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.token(t, "alice"))
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	expectError(t, rec, http.StatusBadRequest, "File uploads are not configured")
}

func TestFeedSocket(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(map[string]interface{}{"type": "subscribe", "topics": []string{"vents", "bogus"}}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	var ack struct {
		Type   string   `json:"type"`
		Topics []string `json:"topics"`
	}
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != "subscribed" || len(ack.Topics) != 1 || ack.Topics[0] != "vents" {
		t.Fatalf("ack = %+v", ack)
	}

	expectStatus(t, f.do(t, http.MethodPost, "/vents", "alice", map[string]string{"content": "exam week blues"}), http.StatusCreated)

	var ev services.FeedEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != services.EventVentCreated || ev.Topic != services.TopicVents || ev.ID == "" {
		t.Errorf("event = %+v", ev)
	}
}
