package coordinator

import (
	"context"
	"fmt"
	"time"

	"certificate-pipeline/internal/models"
	"certificate-pipeline/internal/scheduler"
)

// Service is the operations facade over the coordinator and scheduler. It is
// what callers (check-in intake, future transports) talk to.
type Service struct {
	coord *Coordinator
	sched *scheduler.Scheduler
}

func NewService(coord *Coordinator, sched *scheduler.Scheduler) *Service {
	return &Service{coord: coord, sched: sched}
}

// GenerateCertificate renders and converts one participant's certificate and
// returns the PDF bytes without sending or logging anything. Preview path.
func (s *Service) GenerateCertificate(ctx context.Context, participantID int64) ([]byte, error) {
	p, err := s.coord.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return s.coord.generate(ctx, p)
}

// DownloadCertificate is the download variant of GenerateCertificate. It
// appends a downloaded audit entry on success.
func (s *Service) DownloadCertificate(ctx context.Context, participantID int64) ([]byte, error) {
	p, err := s.coord.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	pdfData, err := s.coord.generate(ctx, p)
	if err != nil {
		return nil, err
	}

	s.coord.appendLog(ctx, &models.CertificateLog{
		ParticipantID: p.ID,
		Action:        models.ActionDownloaded,
		Status:        models.LogSuccess,
		Timestamp:     time.Now(),
	})
	return pdfData, nil
}

// SendCertificate generates and delivers one certificate immediately.
func (s *Service) SendCertificate(ctx context.Context, participantID int64) (*models.DeliveryOutcome, error) {
	return s.coord.RunSingle(ctx, participantID)
}

// SendAllPending runs the bulk pipeline over every pending or failed
// participant.
func (s *Service) SendAllPending(ctx context.Context) (*models.BulkResult, error) {
	return s.coord.RunBulk(ctx, CohortPending())
}

// SendToCheckedIn runs the bulk pipeline over participants who checked in on
// the given conference day.
func (s *Service) SendToCheckedIn(ctx context.Context, day int) (*models.BulkResult, error) {
	return s.coord.RunBulk(ctx, CohortCheckedInDay(day))
}

// ScheduleBulkSendAt arms a one-shot bulk run for the given cohort. The job
// id carries the scheduled time, so two runs armed for the same second
// collapse into one.
func (s *Service) ScheduleBulkSendAt(cohort Cohort, at time.Time) *scheduler.Job {
	id := fmt.Sprintf("send-certificates-%s", at.UTC().Format("20060102150405"))
	return s.sched.ScheduleOnce(id, at, func(ctx context.Context) {
		if _, err := s.coord.RunBulk(ctx, cohort); err != nil {
			s.coord.log.Error("scheduled bulk run failed", map[string]interface{}{
				"jobId": id,
				"error": err.Error(),
			})
		}
	})
}
