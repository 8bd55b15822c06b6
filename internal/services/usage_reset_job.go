package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

// UsageResetScheduler rolls every account into a fresh billing period at
// the start of each calendar month. The reset clears usage_count and stamps
// usage_period_start; tiers are never touched.
type UsageResetScheduler struct {
	cron        *cron.Cron
	accountRepo repositories.AccountRepository
}

func NewUsageResetScheduler(accountRepo repositories.AccountRepository) *UsageResetScheduler {
	return &UsageResetScheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		accountRepo: accountRepo,
	}
}

// Start registers the monthly job and kicks off the scheduler.
// Midnight UTC on the 1st, matching BillingPeriodStart bucketing.
func (s *UsageResetScheduler) Start() error {
	_, err := s.cron.AddFunc("0 0 1 * *", s.runReset)
	if err != nil {
		return err
	}
	s.cron.Start()
	logrus.Info("usage reset scheduler started")
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *UsageResetScheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *UsageResetScheduler) runReset() {
	periodStart := utils.BillingPeriodStart(time.Now()).Unix()

	affected, err := s.accountRepo.ResetAllMonthlyUsage(context.Background(), periodStart)
	if err != nil {
		logrus.WithError(err).Error("monthly usage reset failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"accounts_reset": affected,
		"period_start":   periodStart,
	}).Info("monthly usage reset complete")
}
