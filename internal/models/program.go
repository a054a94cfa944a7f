package models

import "time"

// ProgramStatus tracks a conference session's lifecycle.
type ProgramStatus string

const (
	ProgramScheduled ProgramStatus = "scheduled"
	ProgramOngoing   ProgramStatus = "ongoing"
	ProgramCompleted ProgramStatus = "completed"
	ProgramCancelled ProgramStatus = "cancelled"
)

// Program is one scheduled conference session. Reminder mail goes out once
// per program shortly before StartTime; NotificationSent guards repeats.
type Program struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description,omitempty"`
	Venue            string        `json:"venue"`
	SpeakerName      string        `json:"speaker_name,omitempty"`
	StartTime        time.Time     `json:"start_time"`
	Status           ProgramStatus `json:"status"`
	NotificationSent bool          `json:"notification_sent"`
}
