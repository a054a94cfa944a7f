// Package store implements PostgreSQL persistence for the certificate pipeline.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/models"
)

// ParticipantStore reads and updates participant rows.
type ParticipantStore struct {
	db *sql.DB
}

func NewParticipantStore(db *sql.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

const participantColumns = `id, name, email, organization, certificate_type,
	certificate_status, certificate_number, certificate_sent_at, created_at`

func scanParticipant(row interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	var p models.Participant
	var org sql.NullString
	var sentAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &org,
		&p.CertificateType, &p.CertificateStatus, &p.CertificateNumber,
		&sentAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Organization = org.String
	if sentAt.Valid {
		t := sentAt.Time
		p.CertificateSentAt = &t
	}
	return &p, nil
}

// GetByID returns one participant or a PARTICIPANT_NOT_FOUND error.
func (s *ParticipantStore) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	query := fmt.Sprintf("SELECT %s FROM participants WHERE id = $1", participantColumns)

	p, err := scanParticipant(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewParticipantNotFoundError(fmt.Sprintf("id: %d", id))
	}
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	return p, nil
}

// ListByIDs returns the participants matching the given ids, preserving only
// rows that exist.
func (s *ParticipantStore) ListByIDs(ctx context.Context, ids []int64) ([]*models.Participant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM participants WHERE id = ANY($1) ORDER BY id", participantColumns)

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	return collectParticipants(rows)
}

// ListPending returns every participant whose certificate has not been sent.
// Failed participants are included so a rerun can pick them up.
func (s *ParticipantStore) ListPending(ctx context.Context) ([]*models.Participant, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM participants WHERE certificate_status IN ('pending', 'failed') ORDER BY id",
		participantColumns,
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	return collectParticipants(rows)
}

// ListAll returns every registered participant, newest first.
func (s *ParticipantStore) ListAll(ctx context.Context) ([]*models.Participant, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM participants ORDER BY created_at DESC",
		participantColumns,
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	return collectParticipants(rows)
}

// ListCheckedInOnDay returns participants who checked in on the given day and
// still have an unsent certificate.
func (s *ParticipantStore) ListCheckedInOnDay(ctx context.Context, day int) ([]*models.Participant, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants p
		WHERE p.certificate_status IN ('pending', 'failed')
		AND EXISTS (
			SELECT 1 FROM check_ins c
			WHERE c.participant_id = p.id AND c.day = $1
		)
		ORDER BY p.id`, participantColumns)

	rows, err := s.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	return collectParticipants(rows)
}

// Create inserts a participant with a fresh certificate number and pending
// status, returning the stored row.
func (s *ParticipantStore) Create(ctx context.Context, name, email, organization string, certType models.CertificateType) (*models.Participant, error) {
	now := time.Now().UTC()
	number := models.NewCertificateNumber(now)

	query := fmt.Sprintf(`INSERT INTO participants
		(name, email, organization, certificate_type, certificate_status, certificate_number, created_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6)
		RETURNING %s`, participantColumns)

	p, err := scanParticipant(s.db.QueryRowContext(ctx, query, name, email, organization, certType, number, now))
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	return p, nil
}

// MarkSent records a successful delivery. The transition from failed lands on
// resent so the history stays visible in the status itself.
func (s *ParticipantStore) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `UPDATE participants
		SET certificate_status = CASE WHEN certificate_status = 'failed' THEN 'resent' ELSE 'sent' END,
		    certificate_sent_at = $2
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return apperrors.NewDatabaseQueryFailedError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewParticipantNotFoundError(fmt.Sprintf("id: %d", id))
	}
	return nil
}

// MarkFailed records a failed delivery without touching certificate_sent_at.
func (s *ParticipantStore) MarkFailed(ctx context.Context, id int64) error {
	query := `UPDATE participants SET certificate_status = 'failed' WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.NewDatabaseQueryFailedError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewParticipantNotFoundError(fmt.Sprintf("id: %d", id))
	}
	return nil
}

func collectParticipants(rows *sql.Rows) ([]*models.Participant, error) {
	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	return out, nil
}
