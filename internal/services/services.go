// Package services implements the Hostel Survival Kit operations on top of
// the store contracts. Handlers translate HTTP to these calls and back.
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/hostel-survival-kit/internal/extractor"
	"github.com/AnshRaj112/hostel-survival-kit/internal/metrics"
	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
)

// Uploader stores a file and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Options wires a Services value. Cache, Extractor and Uploader may be nil;
// the operations that need them then report themselves unavailable.
type Options struct {
	Store     store.Store
	Users     store.UserStore
	Cache     *CacheService
	Feed      Publisher
	Extractor extractor.Extractor
	Uploader  Uploader
	Metrics   *metrics.Metrics
	Log       *logrus.Logger

	Location        *time.Location
	Now             func() time.Time
	ProfileCacheTTL time.Duration
}

type Services struct {
	Users      *UserService
	Vents      *VentService
	Mess       *MessService
	Tips       *TipService
	Complaints *ComplaintService
	Calendar   *CalendarService
}

func New(opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Feed == nil {
		opts.Feed = nopPublisher{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	b := base{
		now:     opts.Now,
		loc:     opts.Location,
		feed:    opts.Feed,
		metrics: opts.Metrics,
		log:     opts.Log,
	}

	users := &UserService{base: b, users: opts.Users, cache: opts.Cache, ttl: opts.ProfileCacheTTL}
	return &Services{
		Users:      users,
		Vents:      &VentService{base: b, store: opts.Store},
		Mess:       &MessService{base: b, store: opts.Store},
		Tips:       &TipService{base: b, store: opts.Store, users: users},
		Complaints: &ComplaintService{base: b, store: opts.Store, users: users},
		Calendar: &CalendarService{
			base:      b,
			store:     opts.Store,
			users:     users,
			extractor: opts.Extractor,
			uploader:  opts.Uploader,
		},
	}
}

// base carries what every service shares.
type base struct {
	now     func() time.Time
	loc     *time.Location
	feed    Publisher
	metrics *metrics.Metrics
	log     *logrus.Logger
}

// today is the current calendar day in the app timezone.
func (b base) today() string {
	return b.now().In(b.loc).Format(models.DateLayout)
}

// publish sends a feed event. Feed failures never fail the write that
// caused them.
func (b base) publish(ctx context.Context, ev FeedEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = b.now().UTC()
	}
	if err := b.feed.Publish(ctx, ev); err != nil {
		b.log.WithError(err).WithField("topic", ev.Topic).Warn("feed publish failed")
		return
	}
	b.metrics.FeedPublishes.WithLabelValues(string(ev.Topic)).Inc()
}

func newID() string {
	return primitive.NewObjectID().Hex()
}
