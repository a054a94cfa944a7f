package models

import "time"

// LogAction records what happened to a certificate.
type LogAction string

const (
	ActionCreated    LogAction = "created"
	ActionSent       LogAction = "sent"
	ActionFailed     LogAction = "failed"
	ActionResent     LogAction = "resent"
	ActionDownloaded LogAction = "downloaded"
)

// LogStatus records whether the action succeeded.
type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogFailure LogStatus = "failed"
)

// CertificateLog is one append-only audit row per pipeline attempt.
// Rows are never updated or deleted.
type CertificateLog struct {
	ID               int64     `json:"id"`
	ParticipantID    int64     `json:"participant_id"`
	Action           LogAction `json:"action"`
	Status           LogStatus `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	EmailSubject     string    `json:"email_subject,omitempty"`
	EmailBodyPreview string    `json:"email_body_preview,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// LogStats aggregates the audit trail for reporting.
type LogStats struct {
	Total     int               `json:"total"`
	ByAction  map[LogAction]int `json:"by_action"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}
