package coordinator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certificate-pipeline/internal/common/config"
	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/common/logger"
	"certificate-pipeline/internal/common/observability"
	"certificate-pipeline/internal/models"
	"certificate-pipeline/internal/pipeline/assets"
	"certificate-pipeline/internal/pipeline/delivery"
	"certificate-pipeline/internal/pipeline/render"
)

// --- test doubles ---

type memParticipants struct {
	mu   sync.Mutex
	rows map[int64]*models.Participant
}

func newMemParticipants(ps ...*models.Participant) *memParticipants {
	m := &memParticipants{rows: make(map[int64]*models.Participant)}
	for _, p := range ps {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memParticipants) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, apperrors.NewParticipantNotFoundError("missing")
	}
	clone := *p
	return &clone, nil
}

func (m *memParticipants) ListByIDs(ctx context.Context, ids []int64) ([]*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Participant
	for _, id := range ids {
		if p, ok := m.rows[id]; ok {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memParticipants) ListPending(ctx context.Context) ([]*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Participant
	for _, p := range m.rows {
		if p.CertificateStatus == models.StatusPending || p.CertificateStatus == models.StatusFailed {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memParticipants) ListCheckedInOnDay(ctx context.Context, day int) ([]*models.Participant, error) {
	return m.ListPending(ctx)
}

func (m *memParticipants) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.rows[id]
	if p.CertificateStatus == models.StatusFailed {
		p.CertificateStatus = models.StatusResent
	} else {
		p.CertificateStatus = models.StatusSent
	}
	p.CertificateSentAt = &sentAt
	return nil
}

func (m *memParticipants) MarkFailed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].CertificateStatus = models.StatusFailed
	return nil
}

type memLogs struct {
	mu      sync.Mutex
	entries []*models.CertificateLog
}

func (m *memLogs) Append(ctx context.Context, entry *models.CertificateLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return int64(len(m.entries)), nil
}

func (m *memLogs) byParticipant(id int64) []*models.CertificateLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CertificateLog
	for _, e := range m.entries {
		if e.ParticipantID == id {
			out = append(out, e)
		}
	}
	return out
}

type fakeConverter struct {
	err error
}

func (f *fakeConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4"), nil
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []string
	failTo map[string]error
}

func (f *fakeTransport) Send(ctx context.Context, msg *delivery.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTo[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg.To)
	return nil
}

type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, id int64) (bool, error) { return true, nil }
func (noopLocker) Release(ctx context.Context, id int64)               {}

// --- helpers ---

func testCoordinator(t *testing.T, parts ParticipantRepo, logs LogRepo, conv Converter, tr delivery.Transport) *Coordinator {
	t.Helper()

	resolver, err := assets.NewResolver([]string{t.TempDir()})
	require.NoError(t, err)

	renderer, err := render.New(config.EventConfig{
		Name:           "14th Biennial Delegates' Meeting and Scientific Conference",
		ChairmanName:   "Prof. Appolos Ndukuba",
		ChairmanTitle:  "LOC Chairman",
		SecretaryName:  "Dr. Augustine Duru",
		SecretaryTitle: "LOC Secretary, MDCAN Sec. Gen.",
	})
	require.NoError(t, err)

	return New(Deps{
		Participants:  parts,
		Logs:          logs,
		Resolver:      resolver,
		Renderer:      renderer,
		Converter:     conv,
		Transport:     tr,
		Locker:        noopLocker{},
		Observability: &observability.Observability{},
		Logger:        logger.NewTestLogger(t),
	}, config.PipelineConfig{WorkerCount: 3, MaxFailDetail: 10}, "certs@mdcan.example", "MDCAN BDM 2025")
}

func pending(id int64, name, email string) *models.Participant {
	return &models.Participant{
		ID:                id,
		Name:              name,
		Email:             email,
		CertificateType:   models.CertificateParticipation,
		CertificateStatus: models.StatusPending,
		CertificateNumber: models.NewCertificateNumber(time.Now()),
	}
}

// --- tests ---

func TestRunSingle_Success(t *testing.T) {
	parts := newMemParticipants(pending(1, "Ada Okafor", "ada@example.com"))
	logs := &memLogs{}
	tr := &fakeTransport{}

	c := testCoordinator(t, parts, logs, &fakeConverter{}, tr)
	outcome, err := c.RunSingle(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, outcome.Succeeded)
	assert.Equal(t, []string{"ada@example.com"}, tr.sent)

	p, _ := parts.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusSent, p.CertificateStatus)
	assert.NotNil(t, p.CertificateSentAt)

	entries := logs.byParticipant(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionSent, entries[0].Action)
	assert.Equal(t, models.LogSuccess, entries[0].Status)
	assert.NotEmpty(t, entries[0].EmailBodyPreview)
}

func TestRunSingle_NotFound(t *testing.T) {
	c := testCoordinator(t, newMemParticipants(), &memLogs{}, &fakeConverter{}, &fakeTransport{})

	_, err := c.RunSingle(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeParticipantNotFound, apperrors.CodeOf(err))
}

func TestRunSingle_ConverterUnavailable(t *testing.T) {
	parts := newMemParticipants(pending(1, "Ada Okafor", "ada@example.com"))
	logs := &memLogs{}
	conv := &fakeConverter{err: apperrors.NewRenderUnavailableError("wkhtmltopdf not found")}

	c := testCoordinator(t, parts, logs, conv, &fakeTransport{})
	outcome, err := c.RunSingle(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, string(apperrors.ErrCodeRenderUnavailable), outcome.ErrorCode)

	p, _ := parts.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusFailed, p.CertificateStatus)

	entries := logs.byParticipant(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionSent, entries[0].Action)
	assert.Equal(t, models.LogFailure, entries[0].Status)
	assert.Contains(t, entries[0].ErrorMessage, "wkhtmltopdf")
}

func TestRunSingle_RetryAfterFailureLogsResent(t *testing.T) {
	p := pending(1, "Ada Okafor", "ada@example.com")
	p.CertificateStatus = models.StatusFailed
	parts := newMemParticipants(p)
	logs := &memLogs{}

	c := testCoordinator(t, parts, logs, &fakeConverter{}, &fakeTransport{})
	outcome, err := c.RunSingle(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, outcome.Succeeded)

	stored, _ := parts.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusResent, stored.CertificateStatus)

	entries := logs.byParticipant(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionResent, entries[0].Action)
}

func TestRunBulk_PartialFailureAccounting(t *testing.T) {
	parts := newMemParticipants(
		pending(1, "A", "a@example.com"),
		pending(2, "B", "b@example.com"),
		pending(3, "C", "c@example.com"),
		pending(4, "D", "d@example.com"),
	)
	logs := &memLogs{}
	tr := &fakeTransport{failTo: map[string]error{
		"b@example.com": apperrors.NewDeliverySendFailedError(assert.AnError),
		"d@example.com": apperrors.NewDeliveryConnectionFailedError(assert.AnError),
	}}

	c := testCoordinator(t, parts, logs, &fakeConverter{}, tr)
	result, err := c.RunBulk(context.Background(), CohortPending())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, result.Total, result.Sent+result.Failed)
	assert.Len(t, result.FailedDetails, 2)

	// Failures do not block the other participants.
	pa, _ := parts.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusSent, pa.CertificateStatus)
	pb, _ := parts.GetByID(context.Background(), 2)
	assert.Equal(t, models.StatusFailed, pb.CertificateStatus)

	// Exactly one audit row per attempt.
	for id := int64(1); id <= 4; id++ {
		assert.Len(t, logs.byParticipant(id), 1)
	}
}

func TestRunBulk_FailedDetailsCapped(t *testing.T) {
	failTo := make(map[string]error)
	var ps []*models.Participant
	for i := int64(1); i <= 15; i++ {
		email := fmt.Sprintf("p%d@example.com", i)
		ps = append(ps, pending(i, "P", email))
		failTo[email] = apperrors.NewDeliverySendFailedError(assert.AnError)
	}

	parts := newMemParticipants(ps...)
	c := testCoordinator(t, parts, &memLogs{}, &fakeConverter{}, &fakeTransport{failTo: failTo})

	result, err := c.RunBulk(context.Background(), CohortPending())
	require.NoError(t, err)

	assert.Equal(t, 15, result.Failed)
	assert.Len(t, result.FailedDetails, 10)
}

func TestRunBulk_EmptyCohort(t *testing.T) {
	c := testCoordinator(t, newMemParticipants(), &memLogs{}, &fakeConverter{}, &fakeTransport{})

	result, err := c.RunBulk(context.Background(), CohortPending())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.Failed)
}

func TestRunBulk_ExplicitIDs(t *testing.T) {
	parts := newMemParticipants(
		pending(1, "A", "a@example.com"),
		pending(2, "B", "b@example.com"),
	)
	tr := &fakeTransport{}
	c := testCoordinator(t, parts, &memLogs{}, &fakeConverter{}, tr)

	result, err := c.RunBulk(context.Background(), CohortIDs(2))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, []string{"b@example.com"}, tr.sent)
}

type countingLocker struct {
	mu       sync.Mutex
	acquired map[int64]int
}

func (l *countingLocker) Acquire(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired[id]++
	return l.acquired[id] == 1, nil
}

func (l *countingLocker) Release(ctx context.Context, id int64) {}

func TestDeliver_LockedParticipantFails(t *testing.T) {
	parts := newMemParticipants(pending(1, "Ada Okafor", "ada@example.com"))
	logs := &memLogs{}

	c := testCoordinator(t, parts, logs, &fakeConverter{}, &fakeTransport{})
	c.locker = &countingLocker{acquired: map[int64]int{1: 1}} // already held

	outcome, err := c.RunSingle(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, string(apperrors.ErrCodeParticipantLocked), outcome.ErrorCode)
}
