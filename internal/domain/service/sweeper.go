package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonny/stayhub/internal/domain/model"
	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// DefaultSweepSchedule is used when no schedule is configured.
const DefaultSweepSchedule = "@every 1m"

// Sweeper expires pending actions that were never confirmed or cancelled.
// A zero TTL disables it and pending actions then live until the process
// exits.
type Sweeper struct {
	pending  *PendingActionStore
	locks    *MutexStore
	audits   outbound.AuditRepository
	ttl      time.Duration
	schedule string
	now      func() time.Time
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper for the given stores.
func NewSweeper(pending *PendingActionStore, locks *MutexStore, audits outbound.AuditRepository, ttl time.Duration, schedule string, logger *slog.Logger) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		pending:  pending,
		locks:    locks,
		audits:   audits,
		ttl:      ttl,
		schedule: schedule,
		now:      time.Now,
		logger:   logger.With("component", "sweeper"),
	}
}

// Enabled reports whether a TTL is configured.
func (s *Sweeper) Enabled() bool { return s.ttl > 0 }

// Sweep removes every pending action older than the TTL and returns how many
// were removed. Locks are released after removal, so a confirm racing with
// the sweep sees an absent id.
func (s *Sweeper) Sweep(ctx context.Context) int {
	if !s.Enabled() {
		return 0
	}
	ids := s.pending.Expire(s.now().Add(-s.ttl))
	for _, id := range ids {
		s.locks.Release(id)
		if s.audits == nil {
			continue
		}
		entry := model.NewAuditLog(
			model.AuditActionExpired,
			"",
			"sweeper",
			fmt.Sprintf("pending action expired after %s", s.ttl),
		).WithActionID(id)
		if err := s.audits.Create(ctx, entry); err != nil {
			s.logger.Warn("audit write failed", "actionID", id, "error", err)
		}
	}
	if len(ids) > 0 {
		s.logger.Info("expired pending actions", "count", len(ids), "remaining", s.pending.Len())
	}
	return len(ids)
}

// Start runs Sweep on the configured schedule until ctx is done. A disabled
// sweeper just waits for ctx.
func (s *Sweeper) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("pending action sweeper disabled")
		<-ctx.Done()
		return nil
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))
	if _, err := c.AddFunc(s.schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.logger.Info("pending action sweeper started", "ttl", s.ttl, "schedule", s.schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
