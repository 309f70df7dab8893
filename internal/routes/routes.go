// Package routes assembles the HTTP router.
package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/hostel-survival-kit/internal/auth"
	"github.com/AnshRaj112/hostel-survival-kit/internal/handlers"
	"github.com/AnshRaj112/hostel-survival-kit/internal/metrics"
	"github.com/AnshRaj112/hostel-survival-kit/internal/middleware"
)

// Deps is everything the router needs. Redis may be nil, which disables the
// write limiter.
type Deps struct {
	Handler  *handlers.Handler
	Verifier auth.Verifier
	Roles    middleware.RoleChecker
	Metrics  *metrics.Metrics
	Log      *logrus.Logger
	Redis    *redis.Client

	AllowedOrigins  []string
	Production      bool
	WriteRateLimit  int
	WriteRateWindow time.Duration
}

// New builds the router with the global middleware stack and every route.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.CORS(d.AllowedOrigins))
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.Metrics(d.Metrics))
	if d.Production {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
	}

	SetupRoutes(r, d)
	return r
}

// SetupRoutes registers the API on r.
func SetupRoutes(r chi.Router, d Deps) {
	h := d.Handler
	authed := middleware.Authenticate(d.Verifier, d.Log)
	rep := middleware.RequireRep(d.Roles, d.Log)
	limited := middleware.WriteRateLimit(d.Redis, d.WriteRateLimit, d.WriteRateWindow, d.Log)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	r.Get("/ws/feed", h.FeedSocket)

	r.Route("/auth", func(r chi.Router) {
		r.Use(authed)
		r.Post("/register", h.Register)
		r.Get("/me", h.Me)
	})

	r.Route("/calendar", func(r chi.Router) {
		r.Use(authed)
		r.Get("/events", h.ListEvents)
		r.Get("/countdown", h.Countdown)
		r.With(limited).Post("/events", h.CreateEvent)
		r.With(limited).Put("/events/{id}", h.UpdateEvent)
		r.With(limited).Delete("/events/{id}", h.DeleteEvent)
		r.With(limited).Post("/parse", h.ParseCalendar)
	})

	r.Route("/vents", func(r chi.Router) {
		r.Get("/", h.ListVents)
		r.With(authed, limited).Post("/", h.CreateVent)
		r.With(authed, limited).Post("/{id}/like", h.LikeVent)
	})

	r.Route("/mess", func(r chi.Router) {
		r.Get("/stats", h.MessStats)
		r.Get("/summaries", h.MessSummaries)
		r.With(authed, limited).Post("/rate", h.RateMess)
	})

	r.Route("/tips", func(r chi.Router) {
		r.Get("/", h.ListTips)
		r.Get("/leaderboard", h.TipLeaderboard)
		r.With(authed, limited).Post("/", h.CreateTip)
		r.With(authed, limited).Post("/{id}/upvote", h.UpvoteTip)
	})

	r.Route("/complaints", func(r chi.Router) {
		r.Use(authed)
		r.With(limited).Post("/", h.CreateComplaint)
		r.Get("/my", h.MyComplaints)
		r.With(rep).Get("/all", h.AllComplaints)
		r.Get("/{id}", h.GetComplaint)
		r.With(rep, limited).Put("/{id}/status", h.UpdateComplaintStatus)
	})
}
