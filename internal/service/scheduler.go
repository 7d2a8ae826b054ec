package service

import (
	"context"
	"log"
	"time"
)

// Scheduler fires the daily report at a fixed UTC hour. It is started once
// at init and stopped by cancelling its context at shutdown; in-flight
// aggregation is read-only, so it can finish or be abandoned either way.
type Scheduler struct {
	reports *ReportService
	hourUTC int
}

// NewScheduler creates a new scheduler
func NewScheduler(reports *ReportService, hourUTC int) *Scheduler {
	return &Scheduler{
		reports: reports,
		hourUTC: hourUTC,
	}
}

// Start runs the scheduler loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
	log.Printf("Report scheduler started, firing daily at %02d:00 UTC", s.hourUTC)
}

func (s *Scheduler) run(ctx context.Context) {
	for {
		next := nextFire(time.Now().UTC(), s.hourUTC)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Report scheduler stopped")
			return
		case <-timer.C:
			report := s.reports.RunDaily(ctx)
			log.Printf("Daily report run complete: %d sessions", len(report))
		}
	}
}

// nextFire returns the next occurrence of hour:00 UTC strictly after now.
func nextFire(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
