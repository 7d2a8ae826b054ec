package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"classpulse/internal/model"
	"classpulse/internal/store"
)

func newReportFixture(t *testing.T) (*ReportService, *store.Store, *fakeNotifier) {
	t.Helper()
	st := store.New()
	analytics := NewAnalyticsService(st, newFakeSummaryCache(), newFakeLeaderboard())
	n := newFakeNotifier()
	return NewReportService(st, analytics, n), st, n
}

func addOwnedSession(t *testing.T, st *store.Store, id, owner, email string) {
	t.Helper()
	err := st.AddSession(&model.Session{
		ID: id, CourseID: "math", Owner: owner, OwnerEmail: email,
		Status: model.SessionOpen, StartedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunDailyDeliversPerOwner(t *testing.T) {
	svc, st, n := newReportFixture(t)
	addOwnedSession(t, st, "sess_1", "t1", "t1@example.com")
	addOwnedSession(t, st, "sess_2", "t2", "t2@example.com")

	st.AppendEvent(model.Snapshot{SessionID: "sess_1", StudentID: "s1", Attention: 70, State: model.StateNeutral, ReceivedAt: time.Now()})
	st.AppendEvent(model.Snapshot{SessionID: "sess_2", StudentID: "s2", Attention: 30, State: model.StateBored, ReceivedAt: time.Now()})

	report := svc.RunDaily(context.Background())
	if len(report) != 2 {
		t.Fatalf("report covers %d sessions, want 2", len(report))
	}

	if len(n.deliveries) != 2 {
		t.Fatalf("deliveries = %d, want one per owner", len(n.deliveries))
	}
	if body := n.deliveries["t1@example.com"]; !strings.Contains(body, "sess_1") || strings.Contains(body, "sess_2") {
		t.Errorf("t1 report body wrong: %s", body)
	}
}

func TestRunDailyNotifierFailureIsSwallowed(t *testing.T) {
	svc, st, n := newReportFixture(t)
	addOwnedSession(t, st, "sess_1", "t1", "t1@example.com")
	n.err = errors.New("smtp down")

	report := svc.RunDaily(context.Background())
	if len(report) != 1 {
		t.Errorf("delivery failure affected the aggregate: %d sessions", len(report))
	}
}

func TestRunDailyForMailsFullReport(t *testing.T) {
	svc, st, n := newReportFixture(t)
	addOwnedSession(t, st, "sess_1", "t1", "t1@example.com")
	addOwnedSession(t, st, "sess_2", "t2", "t2@example.com")

	report := svc.RunDailyFor(context.Background(), "admin@example.com")
	if len(report) != 2 {
		t.Fatalf("report covers %d sessions, want 2", len(report))
	}
	body := n.deliveries["admin@example.com"]
	if !strings.Contains(body, "sess_1") || !strings.Contains(body, "sess_2") {
		t.Errorf("recipient did not get the full report: %s", body)
	}
}

func TestRunDailyForWithoutRecipientSkipsMail(t *testing.T) {
	svc, st, n := newReportFixture(t)
	addOwnedSession(t, st, "sess_1", "t1", "t1@example.com")

	svc.RunDailyFor(context.Background(), "")
	if len(n.deliveries) != 0 {
		t.Errorf("unexpected deliveries: %v", n.deliveries)
	}
}
