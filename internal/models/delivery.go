package models

import "time"

// DeliveryOutcome is the result of one participant's pipeline run.
type DeliveryOutcome struct {
	ParticipantID int64     `json:"participant_id"`
	Email         string    `json:"email"`
	Succeeded     bool      `json:"succeeded"`
	ErrorCode     string    `json:"error_code,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CompletedAt   time.Time `json:"completed_at"`
}

// BulkResult summarizes a bulk delivery run. Sent plus Failed always equals
// the size of the selected cohort.
type BulkResult struct {
	Total         int               `json:"total"`
	Sent          int               `json:"sent"`
	Failed        int               `json:"failed"`
	FailedDetails []DeliveryOutcome `json:"failed_details,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}
