package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/reconcile"
)

const (
	orphanCleanupJobName = "orphan_payment_cleanup"
	overdueSweepJobName  = "overdue_payment_sweep"
	maintenanceTimeout   = 2 * time.Minute
)

type OrphanCleaner interface {
	Cleanup(ctx context.Context) reconcile.CleanupReport
}

type OverdueSweeper interface {
	Sweep(ctx context.Context, now time.Time) ([]int64, error)
}

// MaintenanceJobs holds the cron expressions for the maintenance jobs. An
// empty expression leaves that job unscheduled.
type MaintenanceJobs struct {
	OrphanCleanupCron string
	OverdueSweepCron  string
	Cleaner           OrphanCleaner
	Sweeper           OverdueSweeper
	Now               func() time.Time
}

// RegisterMaintenanceJobs adds the configured jobs to the singleton scheduler.
func RegisterMaintenanceJobs(jobs MaintenanceJobs) error {
	if cron := strings.TrimSpace(jobs.OrphanCleanupCron); cron != "" && jobs.Cleaner != nil {
		if _, err := AddJob(orphanCleanupJobName, cron, OrphanCleanupTask(jobs.Cleaner)); err != nil {
			return fmt.Errorf("add orphan cleanup job: %w", err)
		}
	}
	if cron := strings.TrimSpace(jobs.OverdueSweepCron); cron != "" && jobs.Sweeper != nil {
		if _, err := AddJob(overdueSweepJobName, cron, OverdueSweepTask(jobs.Sweeper, jobs.Now)); err != nil {
			return fmt.Errorf("add overdue sweep job: %w", err)
		}
	}
	return nil
}

func OrphanCleanupTask(cleaner OrphanCleaner) func() {
	jobLogger := log.With().Str("component", "orphan_cleanup_job").Str("job_name", orphanCleanupJobName).Logger()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		report := cleaner.Cleanup(ctx)
		for _, msg := range report.Errors {
			jobLogger.Warn().Str("error", msg).Msg("Orphan cleanup item failed")
		}
	}
}

func OverdueSweepTask(sweeper OverdueSweeper, now func() time.Time) func() {
	if now == nil {
		now = time.Now
	}
	jobLogger := log.With().Str("component", "overdue_sweep_job").Str("job_name", overdueSweepJobName).Logger()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if _, err := sweeper.Sweep(ctx, now()); err != nil {
			jobLogger.Error().Err(err).Msg("Overdue sweep failed")
		}
	}
}
