package model

// StudentSummary is the per-student rollup over a session's event log.
// Derived on request, never stored.
type StudentSummary struct {
	StudentID     string        `json:"studentId"`
	MeanAttention int           `json:"attention"`
	States        map[State]int `json:"states"`
}

// SessionSummary pairs session metadata with its per-student rollups.
type SessionSummary struct {
	Session *Session         `json:"session"`
	Summary []StudentSummary `json:"summary"`
}

// ReportRow is one student's mean attention inside a daily report.
type ReportRow struct {
	StudentID     string `json:"studentId"`
	MeanAttention int    `json:"attention"`
}

// SessionReport is the daily-report slice for one session.
type SessionReport struct {
	SessionID string      `json:"sessionId"`
	CourseID  string      `json:"courseId"`
	Rows      []ReportRow `json:"rows"`
}
