package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/monitoring"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultSpec runs housekeeping daily at 02:00 server time.
const DefaultSpec = "0 2 * * *"

type SubscriptionExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type ResetTokenPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// HousekeepingScheduler expires lapsed subscriptions, flags overdue invoices
// and purges stale password reset tokens.
type HousekeepingScheduler struct {
	cron          *cron.Cron
	spec          string
	subscriptions SubscriptionExpirer
	invoices      OverdueMarker
	resets        ResetTokenPurger
	now           func() time.Time
}

func NewHousekeepingScheduler(spec string, subscriptions SubscriptionExpirer, invoices OverdueMarker, resets ResetTokenPurger) *HousekeepingScheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &HousekeepingScheduler{
		cron:          cron.New(),
		spec:          spec,
		subscriptions: subscriptions,
		invoices:      invoices,
		resets:        resets,
		now:           time.Now,
	}
}

// Start registers the job and starts the cron runner
func (s *HousekeepingScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_ = s.RunOnce(ctx)
	})
	if err != nil {
		logger.Error("Failed to add cron job for housekeeping", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Housekeeping scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop waits for a running job to finish
func (s *HousekeepingScheduler) Stop() {
	logger.Info("Stopping housekeeping scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Housekeeping scheduler stopped")
}

// RunOnce runs every task. A failing task does not stop the others.
func (s *HousekeepingScheduler) RunOnce(ctx context.Context) error {
	now := s.now()
	var errs []error

	expired, err := s.subscriptions.ExpireDue(ctx)
	if err != nil {
		logger.Error("Failed to expire subscriptions", err)
		errs = append(errs, err)
	}

	overdue, err := s.invoices.MarkOverdue(ctx, now)
	if err != nil {
		logger.Error("Failed to mark overdue invoices", err)
		errs = append(errs, err)
	}

	purged, err := s.resets.DeleteExpired(ctx, now)
	if err != nil {
		logger.Error("Failed to purge password reset tokens", err)
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		monitoring.HousekeepingRunsTotal.WithLabelValues(monitoring.OutcomeFailed).Inc()
		return errors.Join(errs...)
	}

	monitoring.HousekeepingRunsTotal.WithLabelValues(monitoring.OutcomeProcessed).Inc()
	logger.Info("Housekeeping completed", map[string]interface{}{
		"subscriptions_expired": expired,
		"invoices_overdue":      overdue,
		"reset_tokens_purged":   purged,
	})
	return nil
}
