package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/common/logger"
	"certificate-pipeline/internal/models"
	"certificate-pipeline/internal/scheduler"
)

func testService(t *testing.T, parts ParticipantRepo, logs LogRepo, conv Converter) (*Service, *scheduler.Scheduler) {
	t.Helper()

	sched := scheduler.New(logger.NewTestLogger(t))
	t.Cleanup(sched.Stop)

	coord := testCoordinator(t, parts, logs, conv, &fakeTransport{})
	return NewService(coord, sched), sched
}

func TestGenerateCertificate_ReturnsPDFWithoutLogging(t *testing.T) {
	parts := newMemParticipants(&models.Participant{
		ID: 1, Name: "Ada Okafor", Email: "ada@example.com",
		CertificateType: models.CertificateParticipation, CertificateStatus: models.StatusPending,
	})
	logs := &memLogs{}
	svc, _ := testService(t, parts, logs, &fakeConverter{})

	pdfData, err := svc.GenerateCertificate(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, pdfData)
	assert.Empty(t, logs.entries)

	// Status untouched: preview does not count as delivery.
	p, err := parts.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, p.CertificateStatus)
}

func TestGenerateCertificate_UnknownParticipant(t *testing.T) {
	svc, _ := testService(t, newMemParticipants(), &memLogs{}, &fakeConverter{})

	_, err := svc.GenerateCertificate(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeParticipantNotFound, apperrors.CodeOf(err))
}

func TestDownloadCertificate_AppendsDownloadedLog(t *testing.T) {
	parts := newMemParticipants(&models.Participant{
		ID: 1, Name: "Ada Okafor", Email: "ada@example.com",
		CertificateType: models.CertificateParticipation, CertificateStatus: models.StatusPending,
	})
	logs := &memLogs{}
	svc, _ := testService(t, parts, logs, &fakeConverter{})

	pdfData, err := svc.DownloadCertificate(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, pdfData)

	entries := logs.byParticipant(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionDownloaded, entries[0].Action)
	assert.Equal(t, models.LogSuccess, entries[0].Status)
}

func TestDownloadCertificate_NoLogOnRenderFailure(t *testing.T) {
	parts := newMemParticipants(&models.Participant{
		ID: 1, Name: "Ada Okafor", Email: "ada@example.com",
		CertificateType: models.CertificateParticipation, CertificateStatus: models.StatusPending,
	})
	logs := &memLogs{}
	svc, _ := testService(t, parts, logs, &fakeConverter{err: apperrors.NewRenderUnavailableError("wkhtmltopdf not found")})

	_, err := svc.DownloadCertificate(context.Background(), 1)
	require.Error(t, err)
	assert.Empty(t, logs.entries)
}

func TestSendAllPending_DeliversPendingCohort(t *testing.T) {
	parts := newMemParticipants(
		&models.Participant{ID: 1, Name: "Ada Okafor", Email: "ada@example.com",
			CertificateType: models.CertificateParticipation, CertificateStatus: models.StatusPending},
		&models.Participant{ID: 2, Name: "Ben Obi", Email: "ben@example.com",
			CertificateType: models.CertificateService, CertificateStatus: models.StatusSent},
	)
	svc, _ := testService(t, parts, &memLogs{}, &fakeConverter{})

	result, err := svc.SendAllPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Sent)
	assert.Zero(t, result.Failed)
}

func TestScheduleBulkSendAt_ArmsOneShotJob(t *testing.T) {
	parts := newMemParticipants(&models.Participant{
		ID: 1, Name: "Ada Okafor", Email: "ada@example.com",
		CertificateType: models.CertificateParticipation, CertificateStatus: models.StatusPending,
	})
	svc, sched := testService(t, parts, &memLogs{}, &fakeConverter{})

	at := time.Now().Add(30 * time.Millisecond)
	job := svc.ScheduleBulkSendAt(CohortPending(), at)
	require.NotNil(t, job)
	assert.True(t, sched.Has(job.ID))

	assert.Eventually(t, func() bool {
		p, err := parts.GetByID(context.Background(), 1)
		return err == nil && p.CertificateStatus == models.StatusSent
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleBulkSendAt_SameSecondCollapses(t *testing.T) {
	svc, sched := testService(t, newMemParticipants(), &memLogs{}, &fakeConverter{})

	at := time.Now().Add(time.Hour).Truncate(time.Second)
	first := svc.ScheduleBulkSendAt(CohortPending(), at)
	second := svc.ScheduleBulkSendAt(CohortPending(), at)
	assert.Same(t, first, second)
	assert.True(t, sched.Has(first.ID))
}

func TestSendToCheckedIn_RunsDayCohort(t *testing.T) {
	parts := newMemParticipants(&models.Participant{
		ID: 1, Name: "Ada Okafor", Email: "ada@example.com",
		CertificateType: models.CertificateParticipation, CertificateStatus: models.StatusPending,
	})
	svc, _ := testService(t, parts, &memLogs{}, &fakeConverter{})

	result, err := svc.SendToCheckedIn(context.Background(), models.ConferenceDays)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}
