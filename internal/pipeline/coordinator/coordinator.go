package coordinator

import (
	"context"
	"sort"
	"sync"
	"time"

	"certificate-pipeline/internal/common/config"
	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/common/logger"
	"certificate-pipeline/internal/common/metrics"
	"certificate-pipeline/internal/common/observability"
	"certificate-pipeline/internal/models"
	"certificate-pipeline/internal/pipeline/assets"
	"certificate-pipeline/internal/pipeline/delivery"
	"certificate-pipeline/internal/pipeline/render"
)

// ParticipantRepo is the slice of the participant store the coordinator needs.
type ParticipantRepo interface {
	GetByID(ctx context.Context, id int64) (*models.Participant, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.Participant, error)
	ListPending(ctx context.Context) ([]*models.Participant, error)
	ListCheckedInOnDay(ctx context.Context, day int) ([]*models.Participant, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64) error
}

// LogRepo appends audit rows.
type LogRepo interface {
	Append(ctx context.Context, entry *models.CertificateLog) (int64, error)
}

// Converter turns rendered HTML into PDF bytes.
type Converter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

// Cohort selects which participants a bulk run covers.
type Cohort struct {
	// Pending selects everyone with an unsent certificate.
	Pending bool
	// Day selects participants checked in on that conference day (1..6).
	Day int
	// IDs selects explicit participants.
	IDs []int64
}

// CohortPending covers every participant still awaiting a certificate.
func CohortPending() Cohort { return Cohort{Pending: true} }

// CohortCheckedInDay covers participants who attended the given day.
func CohortCheckedInDay(day int) Cohort { return Cohort{Day: day} }

// CohortIDs covers an explicit participant list.
func CohortIDs(ids ...int64) Cohort { return Cohort{IDs: ids} }

// Coordinator runs the certificate pipeline.
type Coordinator struct {
	participants ParticipantRepo
	logs         LogRepo
	resolver     *assets.Resolver
	renderer     *render.Renderer
	converter    Converter
	transport    delivery.Transport
	locker       Locker
	obs          *observability.Observability
	log          logger.Logger

	from        string
	fromName    string
	workerCount int
	maxDetail   int
}

// Deps bundles the coordinator's collaborators.
type Deps struct {
	Participants  ParticipantRepo
	Logs          LogRepo
	Resolver      *assets.Resolver
	Renderer      *render.Renderer
	Converter     Converter
	Transport     delivery.Transport
	Locker        Locker
	Observability *observability.Observability
	Logger        logger.Logger
}

func New(deps Deps, pipeCfg config.PipelineConfig, from, fromName string) *Coordinator {
	workerCount := pipeCfg.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}
	maxDetail := pipeCfg.MaxFailDetail
	if maxDetail <= 0 {
		maxDetail = 10
	}

	return &Coordinator{
		participants: deps.Participants,
		logs:         deps.Logs,
		resolver:     deps.Resolver,
		renderer:     deps.Renderer,
		converter:    deps.Converter,
		transport:    deps.Transport,
		locker:       deps.Locker,
		obs:          deps.Observability,
		log:          deps.Logger,
		from:         from,
		fromName:     fromName,
		workerCount:  workerCount,
		maxDetail:    maxDetail,
	}
}

// RunSingle executes the pipeline for one participant. Exactly one audit row
// is appended per attempt, success or failure.
func (c *Coordinator) RunSingle(ctx context.Context, participantID int64) (*models.DeliveryOutcome, error) {
	p, err := c.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	outcome := c.deliver(ctx, p)
	return outcome, nil
}

// RunBulk executes the pipeline for every participant the cohort selects,
// bounded by the configured worker count. One participant's failure never
// stops the others; the result always satisfies Sent + Failed == Total.
func (c *Coordinator) RunBulk(ctx context.Context, cohort Cohort) (*models.BulkResult, error) {
	list, err := c.selectCohort(ctx, cohort)
	if err != nil {
		return nil, err
	}

	result := &models.BulkResult{
		Total:     len(list),
		StartedAt: time.Now().UTC(),
	}
	if len(list) == 0 {
		result.FinishedAt = result.StartedAt
		return result, nil
	}

	metrics.BulkRunsActive.WithLabelValues(triggerLabel(cohort)).Inc()
	defer metrics.BulkRunsActive.WithLabelValues(triggerLabel(cohort)).Dec()

	c.log.Info("bulk certificate run starting", map[string]interface{}{
		"total":   len(list),
		"workers": c.workerCount,
	})

	outcomes := make([]*models.DeliveryOutcome, len(list))
	sem := make(chan struct{}, c.workerCount)
	var wg sync.WaitGroup

	for i, p := range list {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p *models.Participant) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = c.deliver(ctx, p)
		}(i, p)
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.Succeeded {
			result.Sent++
			continue
		}
		result.Failed++
		if len(result.FailedDetails) < c.maxDetail {
			result.FailedDetails = append(result.FailedDetails, *o)
		}
	}
	result.FinishedAt = time.Now().UTC()

	status := "complete"
	if result.Failed > 0 {
		status = "partial"
	}
	c.obs.RecordRunDuration(ctx, result.FinishedAt.Sub(result.StartedAt), status)

	c.log.Info("bulk certificate run finished", map[string]interface{}{
		"total":  result.Total,
		"sent":   result.Sent,
		"failed": result.Failed,
	})
	return result, nil
}

func (c *Coordinator) selectCohort(ctx context.Context, cohort Cohort) ([]*models.Participant, error) {
	switch {
	case cohort.Pending:
		return c.participants.ListPending(ctx)
	case cohort.Day > 0:
		return c.participants.ListCheckedInOnDay(ctx, cohort.Day)
	default:
		ids := append([]int64{}, cohort.IDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return c.participants.ListByIDs(ctx, ids)
	}
}

func triggerLabel(cohort Cohort) string {
	switch {
	case cohort.Pending:
		return "pending"
	case cohort.Day > 0:
		return "checkin"
	default:
		return "explicit"
	}
}

// deliver runs the full pipeline for one participant and records the outcome.
func (c *Coordinator) deliver(ctx context.Context, p *models.Participant) *models.DeliveryOutcome {
	outcome := &models.DeliveryOutcome{
		ParticipantID: p.ID,
		Email:         p.Email,
	}

	acquired, err := c.locker.Acquire(ctx, p.ID)
	if err == nil && !acquired {
		err = apperrors.NewParticipantLockedError(p.ID)
	}
	if err != nil {
		return c.recordFailure(ctx, p, outcome, nil, err)
	}
	defer c.locker.Release(ctx, p.ID)

	pdfData, err := c.generate(ctx, p)
	if err != nil {
		return c.recordFailure(ctx, p, outcome, nil, err)
	}

	msg := delivery.BuildMessage(c.from, c.fromName, p, pdfData)
	if err := c.transport.Send(ctx, msg); err != nil {
		return c.recordFailure(ctx, p, outcome, msg, err)
	}

	return c.recordSuccess(ctx, p, outcome, msg)
}

// generate renders the certificate HTML and converts it to PDF.
func (c *Coordinator) generate(ctx context.Context, p *models.Participant) ([]byte, error) {
	resolved := c.resolver.ResolveAll()

	start := time.Now()
	html, err := c.renderer.Render(p, resolved)
	if err != nil {
		return nil, err
	}
	metrics.PipelineStageDuration.WithLabelValues("render").Observe(time.Since(start).Seconds())

	start = time.Now()
	pdfData, err := c.converter.Convert(ctx, html)
	if err != nil {
		return nil, err
	}
	metrics.PipelineStageDuration.WithLabelValues("convert").Observe(time.Since(start).Seconds())

	metrics.CertificatesGenerated.WithLabelValues(string(p.CertificateType)).Inc()
	return pdfData, nil
}

func (c *Coordinator) recordSuccess(ctx context.Context, p *models.Participant, outcome *models.DeliveryOutcome, msg *delivery.Message) *models.DeliveryOutcome {
	now := time.Now().UTC()
	outcome.Succeeded = true
	outcome.CompletedAt = now

	// A send after a previous failure logs as resent, mirroring the status
	// transition in the participant row.
	action := models.ActionSent
	if p.CertificateStatus == models.StatusFailed {
		action = models.ActionResent
	}

	if err := c.participants.MarkSent(ctx, p.ID, now); err != nil {
		c.log.Error("failed to mark participant sent", map[string]interface{}{
			"participantId": p.ID,
			"error":         err.Error(),
		})
	}

	c.appendLog(ctx, &models.CertificateLog{
		ParticipantID:    p.ID,
		Action:           action,
		Status:           models.LogSuccess,
		EmailSubject:     msg.Subject,
		EmailBodyPreview: msg.BodyPreview(200),
		Timestamp:        now,
	})

	metrics.CertificatesSent.WithLabelValues(string(p.CertificateType)).Inc()
	c.obs.RecordDelivery(ctx, "sent")
	return outcome
}

func (c *Coordinator) recordFailure(ctx context.Context, p *models.Participant, outcome *models.DeliveryOutcome, msg *delivery.Message, cause error) *models.DeliveryOutcome {
	now := time.Now().UTC()
	outcome.Succeeded = false
	outcome.ErrorCode = string(apperrors.CodeOf(cause))
	outcome.ErrorMessage = cause.Error()
	outcome.CompletedAt = now

	if err := c.participants.MarkFailed(ctx, p.ID); err != nil {
		c.log.Error("failed to mark participant failed", map[string]interface{}{
			"participantId": p.ID,
			"error":         err.Error(),
		})
	}

	// The action records what was attempted, so a failed delivery still
	// logs as a sent attempt with a failed status.
	entry := &models.CertificateLog{
		ParticipantID: p.ID,
		Action:        models.ActionSent,
		Status:        models.LogFailure,
		ErrorMessage:  cause.Error(),
		Timestamp:     now,
	}
	if msg != nil {
		entry.EmailSubject = msg.Subject
	}
	c.appendLog(ctx, entry)

	metrics.CertificatesFailed.WithLabelValues(string(p.CertificateType), outcome.ErrorCode).Inc()
	c.obs.RecordDelivery(ctx, "failed")

	c.log.Error("certificate delivery failed", map[string]interface{}{
		"participantId": p.ID,
		"email":         p.Email,
		"errorCode":     outcome.ErrorCode,
		"error":         cause.Error(),
	})
	return outcome
}

func (c *Coordinator) appendLog(ctx context.Context, entry *models.CertificateLog) {
	if _, err := c.logs.Append(ctx, entry); err != nil {
		// The audit row failing must not flip the delivery result.
		c.log.Error("failed to append certificate log", map[string]interface{}{
			"participantId": entry.ParticipantID,
			"action":        string(entry.Action),
			"error":         err.Error(),
		})
	}
}
