package model

import "time"

type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// Session is one bounded teaching period. Closed sessions are retained for
// the process lifetime and never deleted.
type Session struct {
	ID         string        `json:"id" bson:"_id"`
	CourseID   string        `json:"courseId" bson:"courseId"`
	Owner      string        `json:"owner" bson:"owner"`
	OwnerEmail string        `json:"-" bson:"ownerEmail"`
	Status     SessionStatus `json:"status" bson:"status"`
	StartedAt  time.Time     `json:"startTs" bson:"startTs"`
	EndedAt    *time.Time    `json:"endTs,omitempty" bson:"endTs,omitempty"`
}

func (s *Session) IsOpen() bool {
	return s.Status == SessionOpen
}
