package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"classpulse/internal/cache"
	"classpulse/internal/model"
	"classpulse/internal/repository"
	"classpulse/internal/store"
)

var (
	ErrInvalidAttention = errors.New("attention must be between 0 and 100")
	ErrInvalidState     = errors.New("unknown state")
	ErrMissingStudent   = errors.New("studentId is required")
)

// AppendRequest is the durable-snapshot input from a client.
type AppendRequest struct {
	SessionID string      `json:"sessionId"`
	StudentID string      `json:"studentId"`
	ClientTS  *time.Time  `json:"ts,omitempty"`
	Attention int         `json:"attention"`
	State     model.State `json:"state"`
}

// SnapshotService handles the durable snapshot path: validation, the event
// log append, the MongoDB write-through and the cache side effects. The
// relay's best-effort broadcast is a separate path and never comes through
// here.
type SnapshotService struct {
	store       *store.Store
	eventRepo   repository.EventRepo
	leaderboard cache.LeaderboardCache
	summaries   cache.SummaryCache
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(
	st *store.Store,
	eventRepo repository.EventRepo,
	leaderboard cache.LeaderboardCache,
	summaries cache.SummaryCache,
) *SnapshotService {
	return &SnapshotService{
		store:       st,
		eventRepo:   eventRepo,
		leaderboard: leaderboard,
		summaries:   summaries,
	}
}

// Append validates and records one snapshot in receipt order. Unknown and
// closed sessions are reported to the caller; this path, unlike the relay,
// never drops silently.
func (s *SnapshotService) Append(ctx context.Context, req *AppendRequest) (*model.Snapshot, error) {
	if req.StudentID == "" {
		return nil, ErrMissingStudent
	}
	if req.Attention < 0 || req.Attention > 100 {
		return nil, ErrInvalidAttention
	}
	if !req.State.Valid() {
		return nil, ErrInvalidState
	}

	snap := model.Snapshot{
		SessionID:  req.SessionID,
		StudentID:  req.StudentID,
		Attention:  req.Attention,
		State:      req.State,
		ClientTS:   req.ClientTS,
		ReceivedAt: time.Now(),
	}

	if err := s.store.AppendEvent(snap); err != nil {
		return nil, err
	}

	// The store is the source of truth; the durable copy and the caches are
	// write-behind. A datastore outage is logged, not surfaced, so a retry
	// cannot double-append.
	if err := s.eventRepo.Insert(ctx, &snap); err != nil {
		log.Printf("snapshot persist failed for %s/%s: %v", snap.SessionID, snap.StudentID, err)
	}

	if mean, ok := s.studentMean(snap.SessionID, snap.StudentID); ok {
		if err := s.leaderboard.UpdateScore(ctx, snap.SessionID, snap.StudentID, mean); err != nil {
			log.Printf("leaderboard update failed for %s/%s: %v", snap.SessionID, snap.StudentID, err)
		}
	}
	if err := s.summaries.Invalidate(ctx, snap.SessionID); err != nil {
		log.Printf("summary invalidation failed for %s: %v", snap.SessionID, err)
	}

	return &snap, nil
}

// RecordAttendance upserts a student's presence record for a session.
func (s *SnapshotService) RecordAttendance(ctx context.Context, sessionID, studentID, status string, seen *time.Time) error {
	if studentID == "" {
		return ErrMissingStudent
	}
	if status == "" {
		status = "present"
	}
	at := time.Now()
	if seen != nil {
		at = *seen
	}
	return s.store.UpsertAttendance(sessionID, studentID, status, at)
}

// Attendance returns the attendance table for a session.
func (s *SnapshotService) Attendance(ctx context.Context, sessionID string) ([]model.AttendanceRecord, error) {
	return s.store.Attendance(sessionID)
}

func (s *SnapshotService) studentMean(sessionID, studentID string) (int, bool) {
	events, err := s.store.Events(sessionID)
	if err != nil {
		return 0, false
	}
	sum, count := 0, 0
	for _, ev := range events {
		if ev.StudentID == studentID {
			sum += ev.Attention
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return int(math.Round(float64(sum) / float64(count))), true
}
