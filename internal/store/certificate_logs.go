package store

import (
	"context"
	"database/sql"

	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/models"
)

// CertificateLogStore appends and reads audit rows. The table is append-only:
// no update or delete statements exist here on purpose.
type CertificateLogStore struct {
	db *sql.DB
}

func NewCertificateLogStore(db *sql.DB) *CertificateLogStore {
	return &CertificateLogStore{db: db}
}

// Append inserts one audit row and returns its id.
func (s *CertificateLogStore) Append(ctx context.Context, entry *models.CertificateLog) (int64, error) {
	query := `INSERT INTO certificate_logs
		(participant_id, action, status, error_message, email_subject, email_body_preview, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		entry.ParticipantID, entry.Action, entry.Status,
		nullable(entry.ErrorMessage), nullable(entry.EmailSubject), nullable(entry.EmailBodyPreview),
		entry.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, apperrors.NewDatabaseInsertFailedError(err)
	}
	return id, nil
}

// ListByParticipant returns a participant's audit trail, newest first.
func (s *CertificateLogStore) ListByParticipant(ctx context.Context, participantID int64) ([]*models.CertificateLog, error) {
	query := `SELECT id, participant_id, action, status, error_message, email_subject, email_body_preview, timestamp
		FROM certificate_logs
		WHERE participant_id = $1
		ORDER BY timestamp DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	var out []*models.CertificateLog
	for rows.Next() {
		var entry models.CertificateLog
		var errMsg, subject, preview sql.NullString

		err := rows.Scan(
			&entry.ID, &entry.ParticipantID, &entry.Action, &entry.Status,
			&errMsg, &subject, &preview, &entry.Timestamp,
		)
		if err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError(err)
		}

		entry.ErrorMessage = errMsg.String
		entry.EmailSubject = subject.String
		entry.EmailBodyPreview = preview.String
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	return out, nil
}

// Stats aggregates the audit trail into per-action counts.
func (s *CertificateLogStore) Stats(ctx context.Context) (*models.LogStats, error) {
	query := `SELECT action, status, COUNT(*)
		FROM certificate_logs
		GROUP BY action, status`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	stats := &models.LogStats{ByAction: make(map[models.LogAction]int)}
	for rows.Next() {
		var action models.LogAction
		var status models.LogStatus
		var count int

		if err := rows.Scan(&action, &status, &count); err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError(err)
		}

		stats.Total += count
		stats.ByAction[action] += count
		if status == models.LogSuccess {
			stats.Succeeded += count
		} else {
			stats.Failed += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	return stats, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
