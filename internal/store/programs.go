package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/models"
)

// ProgramStore reads and updates conference program rows.
type ProgramStore struct {
	db *sql.DB
}

func NewProgramStore(db *sql.DB) *ProgramStore {
	return &ProgramStore{db: db}
}

const programColumns = `id, title, description, venue, speaker_name,
	start_time, status, notification_sent`

func scanProgram(row interface{ Scan(...interface{}) error }) (*models.Program, error) {
	var p models.Program
	var desc, speaker sql.NullString

	err := row.Scan(
		&p.ID, &p.Title, &desc, &p.Venue, &speaker,
		&p.StartTime, &p.Status, &p.NotificationSent,
	)
	if err != nil {
		return nil, err
	}

	p.Description = desc.String
	p.SpeakerName = speaker.String
	return &p, nil
}

// ListDueForReminder returns scheduled programs starting within the window
// that have not had their reminder sent yet.
func (s *ProgramStore) ListDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]*models.Program, error) {
	query := fmt.Sprintf(`SELECT %s FROM conference_programs
		WHERE start_time BETWEEN $1 AND $2
		  AND notification_sent = FALSE
		  AND status = 'scheduled'
		ORDER BY start_time`, programColumns)

	rows, err := s.db.QueryContext(ctx, query, now, now.Add(window))
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError(err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	return programs, nil
}

// MarkNotified flips the reminder flag so a program is announced once.
func (s *ProgramStore) MarkNotified(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE conference_programs SET notification_sent = TRUE WHERE id = $1", id)
	if err != nil {
		return apperrors.NewDatabaseQueryFailedError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewDatabaseQueryFailedError(fmt.Errorf("program %d not found", id))
	}
	return nil
}
