package models

import "time"

// ConferenceDays is the number of days in the event.
const ConferenceDays = 6

// CheckIn marks a participant as present on a given conference day.
// At most one row exists per (participant, day).
type CheckIn struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	Day           int       `json:"day"`
	CheckedInAt   time.Time `json:"checked_in_at"`
}

// ValidDay reports whether day falls inside the conference schedule.
func ValidDay(day int) bool {
	return day >= 1 && day <= ConferenceDays
}
