// Package maintenance runs periodic housekeeping jobs — outbox
// retention today, with room for more — on cron schedules rather than
// fixed tickers, so operators can tune cadence without a redeploy.
package maintenance

import (
	"context"
	"log"

	"github.com/duragraph/duragraph/internal/infrastructure/persistence/postgres"
	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron instance. Jobs are registered before Start and
// run until Stop's context is done (cron waits for any in-flight job to
// finish).
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates an empty scheduler using cron's standard 5-field
// parser (minute hour dom month dow).
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// RegisterOutboxCleanup schedules Outbox.Cleanup(retentionDays) on spec
// (a standard cron expression, e.g. "0 3 * * *" for daily at 03:00).
func (s *Scheduler) RegisterOutboxCleanup(outbox *postgres.Outbox, spec string, retentionDays int) error {
	_, err := s.cron.AddFunc(spec, func() {
		deleted, err := outbox.Cleanup(context.Background(), retentionDays)
		if err != nil {
			log.Printf("maintenance: outbox cleanup failed: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("maintenance: cleaned up %d published outbox rows older than %d days", deleted, retentionDays)
		}
	})
	return err
}

// Start begins running scheduled jobs on cron's own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and blocks until any running job returns.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
