package model

import "time"

// State is a student's discrete emotional state as reported by the client.
type State string

const (
	StateAttentive State = "attentive"
	StateNeutral   State = "neutral"
	StateBored     State = "bored"
	StateConfused  State = "confused"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateAttentive, StateNeutral, StateBored, StateConfused:
		return true
	}
	return false
}

// Snapshot is one student's attention reading at a point in time. The durable
// copy appended to the event log and the ephemeral copy broadcast over the
// live channel are two independent writes of the same logical event.
type Snapshot struct {
	SessionID string     `json:"sessionId" bson:"sessionId"`
	StudentID string     `json:"studentId" bson:"studentId"`
	Attention int        `json:"attention" bson:"attention"`
	State     State      `json:"state" bson:"state"`
	ClientTS  *time.Time `json:"ts,omitempty" bson:"ts,omitempty"`
	// ReceivedAt is stamped by the server; the log is ordered by it, not by
	// the client-claimed time.
	ReceivedAt time.Time `json:"serverTs" bson:"serverTs"`
}

// LiveSnapshot is the payload carried on the broadcast topic. SessionID is
// optional there: the topic is a single broadcast domain and listeners filter
// on payload fields themselves.
type LiveSnapshot struct {
	StudentID string    `json:"studentId"`
	SessionID string    `json:"sessionId,omitempty"`
	Attention int       `json:"attention"`
	State     State     `json:"state"`
	ServerTS  time.Time `json:"serverTs"`
}

// AttendanceRecord tracks a student's presence inside one session.
type AttendanceRecord struct {
	StudentID string    `json:"studentId"`
	Status    string    `json:"status"`
	FirstSeen time.Time `json:"firstSeenTs"`
	LastSeen  time.Time `json:"lastSeenTs"`
}
