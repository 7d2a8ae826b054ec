package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"classpulse/internal/model"
	"classpulse/internal/store"
)

func newSessionService() (*SessionService, *store.Store, *fakeSessionRepo) {
	st := store.New()
	repo := &fakeSessionRepo{}
	return NewSessionService(st, repo), st, repo
}

func TestOpenCreatesSession(t *testing.T) {
	svc, st, repo := newSessionService()

	sess, err := svc.Open(context.Background(), "math", "t1", "teacher@example.com")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !strings.HasPrefix(sess.ID, "sess_") {
		t.Errorf("session ID %q lacks sess_ prefix", sess.ID)
	}
	if sess.Status != model.SessionOpen || sess.EndedAt != nil {
		t.Errorf("new session not open: %+v", sess)
	}
	if sess.Owner != "t1" || sess.CourseID != "math" {
		t.Errorf("session fields wrong: %+v", sess)
	}

	// Partitions are allocated on open.
	if _, err := st.Events(sess.ID); err != nil {
		t.Errorf("event partition missing: %v", err)
	}
	if len(repo.created) != 1 {
		t.Errorf("datastore write-through: %d creates, want 1", len(repo.created))
	}
}

func TestOpenDefaultsCourse(t *testing.T) {
	svc, _, _ := newSessionService()

	sess, err := svc.Open(context.Background(), "", "t1", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess.CourseID != "course" {
		t.Errorf("CourseID = %q, want default %q", sess.CourseID, "course")
	}
}

func TestOpenSurvivesDatastoreOutage(t *testing.T) {
	svc, st, repo := newSessionService()
	repo.failNext = true

	sess, err := svc.Open(context.Background(), "math", "t1", "teacher@example.com")
	if err != nil {
		t.Fatalf("Open failed on datastore outage: %v", err)
	}

	// The store keeps the session either way; a retried Open after an error
	// would strand an orphan in every aggregate.
	got, err := st.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("session missing from store after outage: %v", err)
	}
	if !got.IsOpen() {
		t.Errorf("session not open: %+v", got)
	}
	if n := len(st.Sessions()); n != 1 {
		t.Errorf("store holds %d sessions, want 1", n)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	svc, _, _ := newSessionService()
	sess, _ := svc.Open(context.Background(), "math", "t1", "")

	if err := svc.Close(context.Background(), sess.ID); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	closed, _ := svc.Get(context.Background(), sess.ID)

	if err := svc.Close(context.Background(), sess.ID); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	closedAgain, _ := svc.Get(context.Background(), sess.ID)

	if !closedAgain.EndedAt.Equal(*closed.EndedAt) {
		t.Errorf("end timestamp moved on repeated close: %v -> %v", closed.EndedAt, closedAgain.EndedAt)
	}
}

func TestCloseUnknownSession(t *testing.T) {
	svc, _, _ := newSessionService()

	err := svc.Close(context.Background(), "sess_missing")
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("Close error = %v, want ErrSessionNotFound", err)
	}
}

func TestOpenIDsAreUnique(t *testing.T) {
	svc, _, _ := newSessionService()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sess, err := svc.Open(context.Background(), "math", "t1", "")
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		if seen[sess.ID] {
			t.Fatalf("duplicate session ID %s", sess.ID)
		}
		seen[sess.ID] = true
	}
}
