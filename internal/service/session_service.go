package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"classpulse/internal/model"
	"classpulse/internal/repository"
	"classpulse/internal/store"
)

// SessionService owns the session lifecycle. The in-memory store is the
// source of truth; MongoDB gets a write-through copy for durability.
type SessionService struct {
	store       *store.Store
	sessionRepo repository.SessionRepo
}

// NewSessionService creates a new session service
func NewSessionService(st *store.Store, sessionRepo repository.SessionRepo) *SessionService {
	return &SessionService{
		store:       st,
		sessionRepo: sessionRepo,
	}
}

// Open creates a new session and allocates its event and attendance
// partitions.
func (s *SessionService) Open(ctx context.Context, courseID, ownerID, ownerEmail string) (*model.Session, error) {
	if courseID == "" {
		courseID = "course"
	}

	var sess *model.Session
	for attempts := 0; attempts < 10; attempts++ {
		sess = &model.Session{
			ID:         generateSessionID(),
			CourseID:   courseID,
			Owner:      ownerID,
			OwnerEmail: ownerEmail,
			Status:     model.SessionOpen,
			StartedAt:  time.Now(),
		}
		if err := s.store.AddSession(sess); err == nil {
			break
		}
		sess = nil
	}
	if sess == nil {
		return nil, errors.New("failed to generate unique session id")
	}

	// Open fails only on identifier exhaustion; the durable copy is
	// write-behind and an outage there must not strand the session the
	// store already holds.
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		log.Printf("session persist failed for %s: %v", sess.ID, err)
	}

	log.Printf("Opened session %s course=%s owner=%s", sess.ID, courseID, ownerID)
	return sess, nil
}

// Close ends a session. Closing an already-closed session is not an error
// and leaves the end timestamp untouched.
func (s *SessionService) Close(ctx context.Context, sessionID string) error {
	sess, err := s.store.CloseSession(sessionID, time.Now())
	if err != nil {
		return err
	}

	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		log.Printf("session end persist failed for %s: %v", sessionID, err)
	}

	log.Printf("Closed session %s", sessionID)
	return nil
}

// Get retrieves a session by ID.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.store.GetSession(sessionID)
}

// List returns all known sessions, open and closed, in creation order.
func (s *SessionService) List(ctx context.Context) []*model.Session {
	return s.store.Sessions()
}

// generateSessionID builds a time-ordered identifier with a random tail to
// break same-millisecond collisions.
func generateSessionID() string {
	return fmt.Sprintf("sess_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}
