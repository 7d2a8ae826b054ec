package service

import (
	"context"
	"encoding/json"
	"log"

	"classpulse/internal/model"
	"classpulse/internal/notifier"
	"classpulse/internal/store"
)

const reportSubject = "Daily Class Report"

// ReportService produces the daily cross-session aggregate and hands it to
// the notifier. Delivery failures are logged and swallowed; a failed mail
// never affects session or event state.
type ReportService struct {
	store     *store.Store
	analytics *AnalyticsService
	notifier  notifier.Notifier
}

// NewReportService creates a new report service
func NewReportService(st *store.Store, analytics *AnalyticsService, n notifier.Notifier) *ReportService {
	return &ReportService{
		store:     st,
		analytics: analytics,
		notifier:  n,
	}
}

// RunDaily aggregates every known session and mails each session owner the
// slice of the report covering their sessions. Used by the scheduler.
func (s *ReportService) RunDaily(ctx context.Context) []model.SessionReport {
	report := s.analytics.DailyAggregate(ctx)
	if len(report) == 0 {
		return report
	}

	byID := make(map[string]model.SessionReport, len(report))
	for _, sr := range report {
		byID[sr.SessionID] = sr
	}

	byOwner := make(map[string][]model.SessionReport)
	for _, sess := range s.store.Sessions() {
		if sess.OwnerEmail == "" {
			continue
		}
		if sr, ok := byID[sess.ID]; ok {
			byOwner[sess.OwnerEmail] = append(byOwner[sess.OwnerEmail], sr)
		}
	}

	for email, sessions := range byOwner {
		if err := s.notifier.Deliver(ctx, email, reportSubject, renderReport(sessions)); err != nil {
			log.Printf("daily report delivery to %s failed: %v", email, err)
		}
	}
	return report
}

// RunDailyFor aggregates every known session and mails the full report to
// one recipient. Used by the admin-triggered endpoint.
func (s *ReportService) RunDailyFor(ctx context.Context, recipient string) []model.SessionReport {
	report := s.analytics.DailyAggregate(ctx)
	if recipient != "" {
		if err := s.notifier.Deliver(ctx, recipient, reportSubject, renderReport(report)); err != nil {
			log.Printf("report delivery to %s failed: %v", recipient, err)
		}
	}
	return report
}

func renderReport(report []model.SessionReport) string {
	body, err := json.Marshal(report)
	if err != nil {
		return "[]"
	}
	return string(body)
}
