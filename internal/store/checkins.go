package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/models"
)

// CheckInStore records daily attendance. The unique constraint on
// (participant_id, day) makes repeat check-ins idempotent.
type CheckInStore struct {
	db *sql.DB
}

func NewCheckInStore(db *sql.DB) *CheckInStore {
	return &CheckInStore{db: db}
}

// Record inserts a check-in for the given day. When the participant already
// checked in that day the existing row is returned and created is false.
func (s *CheckInStore) Record(ctx context.Context, participantID int64, day int) (*models.CheckIn, bool, error) {
	if !models.ValidDay(day) {
		return nil, false, fmt.Errorf("day %d out of range 1..%d", day, models.ConferenceDays)
	}

	now := time.Now().UTC()
	query := `INSERT INTO check_ins (participant_id, day, checked_in_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, day) DO NOTHING
		RETURNING id, participant_id, day, checked_in_at`

	var c models.CheckIn
	err := s.db.QueryRowContext(ctx, query, participantID, day, now).
		Scan(&c.ID, &c.ParticipantID, &c.Day, &c.CheckedInAt)
	if err == nil {
		return &c, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, apperrors.NewDatabaseInsertFailedError(err)
	}

	// Conflict path: fetch the existing row.
	existing, err := s.get(ctx, participantID, day)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *CheckInStore) get(ctx context.Context, participantID int64, day int) (*models.CheckIn, error) {
	query := `SELECT id, participant_id, day, checked_in_at
		FROM check_ins WHERE participant_id = $1 AND day = $2`

	var c models.CheckIn
	err := s.db.QueryRowContext(ctx, query, participantID, day).
		Scan(&c.ID, &c.ParticipantID, &c.Day, &c.CheckedInAt)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	return &c, nil
}

// ListByParticipant returns a participant's check-ins ordered by day.
func (s *CheckInStore) ListByParticipant(ctx context.Context, participantID int64) ([]*models.CheckIn, error) {
	query := `SELECT id, participant_id, day, checked_in_at
		FROM check_ins WHERE participant_id = $1 ORDER BY day`

	rows, err := s.db.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	var out []*models.CheckIn
	for rows.Next() {
		var c models.CheckIn
		if err := rows.Scan(&c.ID, &c.ParticipantID, &c.Day, &c.CheckedInAt); err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError(err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	return out, nil
}
