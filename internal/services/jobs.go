package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/hostel-survival-kit/internal/metrics"
	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
)

const (
	JobSweep  = "vent_sweep"
	JobWeekly = "weekly_mess_summary"

	// weekly summary runs Mondays at 08:00 in the app timezone
	weeklyWeekday = time.Monday
	weeklyHour    = 8

	weeklyLockTTL = 7 * 24 * time.Hour
)

// Scheduler runs the background jobs: the expired-vent sweep on a fixed
// interval and the weekly mess summary.
type Scheduler struct {
	vents    *VentService
	mess     *MessService
	locker   Locker
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *logrus.Logger

	// after is time.After, replaceable in tests.
	after func(d time.Duration) <-chan time.Time
}

func NewScheduler(svc *Services, locker Locker, interval time.Duration) *Scheduler {
	b := svc.Vents.base
	return &Scheduler{
		vents:    svc.Vents,
		mess:     svc.Mess,
		locker:   locker,
		interval: interval,
		loc:      b.loc,
		now:      b.now,
		metrics:  b.metrics,
		log:      b.log,
		after:    time.After,
	}
}

// Start launches both job loops. They stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.sweepLoop(ctx)
	go s.weeklyLoop(ctx)
}

func (s *Scheduler) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.RunSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunSweep(ctx)
		}
	}
}

// RunSweep deletes expired vents unless another instance holds this
// interval's lease.
func (s *Scheduler) RunSweep(ctx context.Context) {
	slot := s.now().Truncate(s.interval).Unix()
	ok, err := s.locker.Acquire(ctx, fmt.Sprintf("%s:%d", JobSweep, slot), s.interval)
	if err != nil {
		s.log.WithError(err).Warn("sweep lock failed; running anyway")
	} else if !ok {
		s.metrics.JobRuns.WithLabelValues(JobSweep, "skipped").Inc()
		return
	}

	n, err := s.vents.SweepExpired(ctx)
	if err != nil {
		s.metrics.JobRuns.WithLabelValues(JobSweep, "error").Inc()
		s.log.WithError(err).Error("vent sweep failed")
		return
	}
	s.metrics.JobRuns.WithLabelValues(JobSweep, "ok").Inc()
	s.log.WithField("deleted", n).Info("expired vent posts deleted")
}

// NextWeekly returns the first Monday 08:00 in loc strictly after t.
func NextWeekly(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	days := (int(weeklyWeekday) - int(local.Weekday()) + 7) % 7
	next := time.Date(local.Year(), local.Month(), local.Day()+days, weeklyHour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (s *Scheduler) weeklyLoop(ctx context.Context) {
	for {
		next := NextWeekly(s.now(), s.loc)
		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(s.now())):
			s.RunWeekly(ctx)
		}
	}
}

// RunWeekly writes the weekly summary once per week across instances.
func (s *Scheduler) RunWeekly(ctx context.Context) {
	week := s.now().In(s.loc).Format(models.DateLayout)
	ok, err := s.locker.Acquire(ctx, JobWeekly+":"+week, weeklyLockTTL)
	if err != nil {
		s.metrics.JobRuns.WithLabelValues(JobWeekly, "error").Inc()
		s.log.WithError(err).Error("weekly summary lock failed")
		return
	}
	if !ok {
		s.metrics.JobRuns.WithLabelValues(JobWeekly, "skipped").Inc()
		return
	}

	sum, err := s.mess.WriteWeeklySummary(ctx)
	if err != nil {
		s.metrics.JobRuns.WithLabelValues(JobWeekly, "error").Inc()
		s.log.WithError(err).Error("weekly mess summary failed")
		return
	}
	s.metrics.JobRuns.WithLabelValues(JobWeekly, "ok").Inc()
	s.log.WithFields(logrus.Fields{
		"week_starting": sum.WeekStarting,
		"avg":           sum.AvgRating,
		"total":         sum.TotalRatings,
	}).Info("weekly summary saved")
}
