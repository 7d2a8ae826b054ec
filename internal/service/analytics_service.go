package service

import (
	"context"
	"log"
	"math"
	"sort"

	"classpulse/internal/cache"
	"classpulse/internal/model"
	"classpulse/internal/store"
)

// Advisory texts, evaluated in this priority order. The conditions overlap,
// so the order is load-bearing.
const (
	AlertBored     = "Students appear bored. Try interaction or activity."
	AlertConfused  = "Many appear confused. Re-explain the concept."
	AlertAttentive = "Great! Class is highly attentive."
)

// AnalyticsService computes per-student summaries and class-wide advisories
// from the event log and the live snapshot table.
type AnalyticsService struct {
	store       *store.Store
	summaries   cache.SummaryCache
	leaderboard cache.LeaderboardCache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(st *store.Store, summaries cache.SummaryCache, leaderboard cache.LeaderboardCache) *AnalyticsService {
	return &AnalyticsService{
		store:       st,
		summaries:   summaries,
		leaderboard: leaderboard,
	}
}

// Summarize computes per-student mean attention and state histograms over
// everything recorded for a session. A session with no events yields an
// empty summary list.
func (s *AnalyticsService) Summarize(ctx context.Context, sessionID string) (*model.SessionSummary, error) {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if cached, err := s.summaries.Get(ctx, sessionID); err != nil {
		log.Printf("summary cache read failed for %s: %v", sessionID, err)
	} else if cached != nil {
		return cached, nil
	}

	events, err := s.store.Events(sessionID)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum    int
		count  int
		states map[model.State]int
	}
	byStudent := make(map[string]*acc)
	for _, ev := range events {
		a, ok := byStudent[ev.StudentID]
		if !ok {
			a = &acc{states: make(map[model.State]int)}
			byStudent[ev.StudentID] = a
		}
		a.sum += ev.Attention
		a.count++
		a.states[ev.State]++
	}

	rows := make([]model.StudentSummary, 0, len(byStudent))
	for studentID, a := range byStudent {
		rows = append(rows, model.StudentSummary{
			StudentID:     studentID,
			MeanAttention: roundMean(a.sum, a.count),
			States:        a.states,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StudentID < rows[j].StudentID })

	summary := &model.SessionSummary{Session: sess, Summary: rows}

	if err := s.summaries.Set(ctx, summary); err != nil {
		log.Printf("summary cache write failed for %s: %v", sessionID, err)
	}
	return summary, nil
}

// Alert derives a class-wide advisory from the most recent live snapshot per
// student. It never reads the event log.
func (s *AnalyticsService) Alert() string {
	live := s.store.Live()
	total := len(live)
	if total == 0 {
		return ""
	}

	counts := make(map[model.State]int)
	for _, snap := range live {
		counts[snap.State]++
	}

	pct := func(state model.State) int {
		return int(math.Round(float64(counts[state]) / float64(total) * 100))
	}

	switch {
	case pct(model.StateBored) > 80:
		return AlertBored
	case pct(model.StateConfused) > 50:
		return AlertConfused
	case pct(model.StateAttentive) > 90:
		return AlertAttentive
	}
	return ""
}

// DailyAggregate computes per-student mean attention for every known
// session, open or closed, for scheduled reporting.
func (s *AnalyticsService) DailyAggregate(ctx context.Context) []model.SessionReport {
	sessions := s.store.Sessions()
	report := make([]model.SessionReport, 0, len(sessions))

	for _, sess := range sessions {
		events, err := s.store.Events(sess.ID)
		if err != nil {
			continue
		}

		type acc struct{ sum, count int }
		byStudent := make(map[string]*acc)
		for _, ev := range events {
			a, ok := byStudent[ev.StudentID]
			if !ok {
				a = &acc{}
				byStudent[ev.StudentID] = a
			}
			a.sum += ev.Attention
			a.count++
		}

		rows := make([]model.ReportRow, 0, len(byStudent))
		for studentID, a := range byStudent {
			rows = append(rows, model.ReportRow{
				StudentID:     studentID,
				MeanAttention: roundMean(a.sum, a.count),
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].StudentID < rows[j].StudentID })

		report = append(report, model.SessionReport{
			SessionID: sess.ID,
			CourseID:  sess.CourseID,
			Rows:      rows,
		})
	}
	return report
}

// Leaderboard returns the current attention ranking for a session.
func (s *AnalyticsService) Leaderboard(ctx context.Context, sessionID string, top int) ([]cache.LeaderboardEntry, error) {
	if _, err := s.store.GetSession(sessionID); err != nil {
		return nil, err
	}
	return s.leaderboard.GetTop(ctx, sessionID, top)
}

// Rank returns one student's 1-indexed leaderboard position, -1 when the
// student has no recorded events.
func (s *AnalyticsService) Rank(ctx context.Context, sessionID, studentID string) (int64, error) {
	if _, err := s.store.GetSession(sessionID); err != nil {
		return 0, err
	}
	return s.leaderboard.GetRank(ctx, sessionID, studentID)
}

// roundMean rounds half away from zero, matching integer mean semantics
// elsewhere in the system.
func roundMean(sum, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}
