package coordinator

import (
	"context"
	"time"

	"certificate-pipeline/internal/common/logger"
	"certificate-pipeline/internal/models"
	"certificate-pipeline/internal/scheduler"
)

// day6JobID is stable on purpose: every day-6 check-in tries to schedule the
// bulk run, and the scheduler's id collision no-op keeps it to one.
const day6JobID = "send-certificates-day6"

// CheckInRepo records attendance.
type CheckInRepo interface {
	Record(ctx context.Context, participantID int64, day int) (*models.CheckIn, bool, error)
}

// BulkRunner is the slice of the coordinator the intake needs.
type BulkRunner interface {
	RunBulk(ctx context.Context, cohort Cohort) (*models.BulkResult, error)
}

// Notifier receives bulk run summaries. May be nil.
type Notifier interface {
	PublishBulkSummary(ctx context.Context, result *models.BulkResult) error
}

// Intake handles check-ins and arms the deferred certificate run on the
// final conference day.
type Intake struct {
	checkins CheckInRepo
	runner   BulkRunner
	sched    *scheduler.Scheduler
	notifier Notifier
	delay    time.Duration
	log      logger.Logger
}

func NewIntake(checkins CheckInRepo, runner BulkRunner, sched *scheduler.Scheduler, notifier Notifier, delay time.Duration, log logger.Logger) *Intake {
	return &Intake{
		checkins: checkins,
		runner:   runner,
		sched:    sched,
		notifier: notifier,
		delay:    delay,
		log:      log,
	}
}

// CheckIn records attendance for the given day. A check-in on the final day
// schedules the bulk certificate run after the configured delay; repeat
// final-day check-ins leave the already-armed job untouched.
func (in *Intake) CheckIn(ctx context.Context, participantID int64, day int) (*models.CheckIn, error) {
	c, created, err := in.checkins.Record(ctx, participantID, day)
	if err != nil {
		return nil, err
	}

	if !created {
		in.log.Debug("repeat check-in ignored", map[string]interface{}{
			"participantId": participantID,
			"day":           day,
		})
		return c, nil
	}

	if day == models.ConferenceDays {
		runAt := time.Now().Add(in.delay)
		in.sched.ScheduleOnce(day6JobID, runAt, in.runDeferred)
	}
	return c, nil
}

func (in *Intake) runDeferred(ctx context.Context) {
	result, err := in.runner.RunBulk(ctx, CohortCheckedInDay(models.ConferenceDays))
	if err != nil {
		in.log.Error("deferred certificate run failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if in.notifier != nil {
		if err := in.notifier.PublishBulkSummary(ctx, result); err != nil {
			in.log.Warn("bulk summary notification failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
