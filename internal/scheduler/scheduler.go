// Package scheduler runs deferred and periodic jobs for the pipeline, such as
// the bulk certificate run a few hours after the final conference day and the
// recurring program reminders.
package scheduler

import (
	"context"
	"sync"
	"time"

	"certificate-pipeline/internal/common/logger"
)

// JobFunc is the work a scheduled job performs. The context is cancelled when
// the scheduler stops.
type JobFunc func(ctx context.Context)

// Job is a handle to a scheduled job.
type Job struct {
	ID    string
	RunAt time.Time     // zero for interval jobs
	Every time.Duration // zero for one-shot jobs

	timer  *time.Timer
	ticker *time.Ticker
	done   chan struct{}
}

// Scheduler owns a set of named jobs. It is an explicit instance handed to
// whoever needs it; callers decide its lifetime, typically main.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
	log     logger.Logger
}

func New(log logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// ScheduleOnce registers a one-shot job firing at runAt. Scheduling an id
// that already exists is a no-op returning the existing handle, so repeated
// triggers (every day-6 check-in, say) cannot stack duplicate runs.
func (s *Scheduler) ScheduleOnce(id string, runAt time.Time, fn JobFunc) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[id]; ok {
		return existing
	}
	if s.stopped {
		return nil
	}

	job := &Job{ID: id, RunAt: runAt, done: make(chan struct{})}
	delay := time.Until(runAt)
	if delay < 0 {
		delay = 0
	}

	s.wg.Add(1)
	job.timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		defer s.remove(id)

		select {
		case <-s.ctx.Done():
			return
		case <-job.done:
			return
		default:
		}

		s.log.Info("scheduled job firing", map[string]interface{}{"jobId": id})
		fn(s.ctx)
	})

	s.jobs[id] = job
	s.log.Info("one-shot job scheduled", map[string]interface{}{
		"jobId": id,
		"runAt": runAt.Format(time.RFC3339),
	})
	return job
}

// ScheduleEvery registers a recurring job. Same collision semantics as
// ScheduleOnce: an existing id wins and the new registration is dropped.
func (s *Scheduler) ScheduleEvery(id string, every time.Duration, fn JobFunc) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[id]; ok {
		return existing
	}
	if s.stopped {
		return nil
	}

	job := &Job{ID: id, Every: every, done: make(chan struct{})}
	job.ticker = time.NewTicker(every)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-job.done:
				return
			case <-job.ticker.C:
				fn(s.ctx)
			}
		}
	}()

	s.jobs[id] = job
	s.log.Info("interval job scheduled", map[string]interface{}{
		"jobId": id,
		"every": every.String(),
	})
	return job
}

// Cancel removes a job before it fires. Returns false when no such job
// exists, which includes one-shot jobs that already ran.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	close(job.done)
	if job.timer != nil {
		if job.timer.Stop() {
			// The callback will never run; balance the pending wg slot.
			s.wg.Done()
		}
	}
	if job.ticker != nil {
		job.ticker.Stop()
	}

	s.log.Info("job cancelled", map[string]interface{}{"jobId": id})
	return true
}

// Has reports whether a job with the id is currently registered.
func (s *Scheduler) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	return ok
}

// Stop cancels every job and waits for in-flight job functions to return.
// The scheduler cannot be reused afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Cancel(id)
	}
	s.cancel()
	s.wg.Wait()

	s.log.Info("scheduler stopped", nil)
}

func (s *Scheduler) remove(id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}
