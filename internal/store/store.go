package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"classpulse/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")
	ErrSessionExists   = errors.New("session id already exists")
)

// Store is the process-scoped mutable state shared by every component:
// the session table, the per-session event partitions, the global
// live-snapshot table and the per-session attendance tables. All access
// goes through the lock; readers get copies, so a reader sees a consistent
// prefix of each partition and never a partially written record.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*model.Session
	events     map[string][]model.Snapshot
	live       map[string]model.LiveSnapshot
	attendance map[string]map[string]model.AttendanceRecord
}

func New() *Store {
	return &Store{
		sessions:   make(map[string]*model.Session),
		events:     make(map[string][]model.Snapshot),
		live:       make(map[string]model.LiveSnapshot),
		attendance: make(map[string]map[string]model.AttendanceRecord),
	}
}

// AddSession inserts a new session and allocates its event and attendance
// partitions. Returns ErrSessionExists on an identifier collision.
func (s *Store) AddSession(sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; ok {
		return ErrSessionExists
	}
	cp := *sess
	s.sessions[sess.ID] = &cp
	s.events[sess.ID] = nil
	s.attendance[sess.ID] = make(map[string]model.AttendanceRecord)
	return nil
}

// LoadSession installs a session together with its recorded events, bypassing
// the open-session append check. Used to restore the durable copy into a
// fresh store at startup.
func (s *Store) LoadSession(sess *model.Session, events []model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; ok {
		return ErrSessionExists
	}
	cp := *sess
	s.sessions[sess.ID] = &cp
	s.events[sess.ID] = append([]model.Snapshot(nil), events...)
	s.attendance[sess.ID] = make(map[string]model.AttendanceRecord)
	return nil
}

// GetSession returns a copy of the session.
func (s *Store) GetSession(id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// Sessions returns copies of all sessions, ordered by ID. Session IDs are
// time-ordered, so this is also creation order.
func (s *Store) Sessions() []*model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		cp := *sess
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CloseSession transitions a session to closed. Closing an already-closed
// session is not an error and does not move the end timestamp.
func (s *Store) CloseSession(id string, now time.Time) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Status != model.SessionClosed {
		sess.Status = model.SessionClosed
		sess.EndedAt = &now
	}
	cp := *sess
	return &cp, nil
}

// AppendEvent appends a snapshot to its session partition in receipt order.
// The session check and the append happen under one lock, so no record is
// ever written against an unknown or closed session.
func (s *Store) AppendEvent(snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[snap.SessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if !sess.IsOpen() {
		return ErrSessionClosed
	}
	s.events[snap.SessionID] = append(s.events[snap.SessionID], snap)
	return nil
}

// Events returns a copy of the session's event partition. Concurrent appends
// after the copy is taken are not reflected.
func (s *Store) Events(sessionID string) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}
	partition := s.events[sessionID]
	out := make([]model.Snapshot, len(partition))
	copy(out, partition)
	return out, nil
}

// EventCount reports the number of recorded snapshots for a session, zero
// for unknown sessions.
func (s *Store) EventCount(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events[sessionID])
}

// SetLive records the most recent live snapshot for a student. The live
// table is global: the broadcast topic is a single domain.
func (s *Store) SetLive(snap model.LiveSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[snap.StudentID] = snap
}

// Live returns a copy of the live-snapshot table.
func (s *Store) Live() map[string]model.LiveSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.LiveSnapshot, len(s.live))
	for id, snap := range s.live {
		out[id] = snap
	}
	return out
}

// UpsertAttendance records presence for a student in a session. The first
// observation fixes FirstSeen; later ones only advance LastSeen and status.
func (s *Store) UpsertAttendance(sessionID, studentID, status string, seen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if !sess.IsOpen() {
		return ErrSessionClosed
	}

	rec, ok := s.attendance[sessionID][studentID]
	if !ok {
		rec = model.AttendanceRecord{StudentID: studentID, FirstSeen: seen}
	}
	rec.Status = status
	rec.LastSeen = seen
	s.attendance[sessionID][studentID] = rec
	return nil
}

// Attendance returns the attendance records for a session, ordered by
// student ID.
func (s *Store) Attendance(sessionID string) ([]model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}
	out := make([]model.AttendanceRecord, 0, len(s.attendance[sessionID]))
	for _, rec := range s.attendance[sessionID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}
