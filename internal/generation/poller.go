package generation

import (
	"context"
	"time"

	"sorastudio/internal/domain"
	"sorastudio/internal/infra"
	"sorastudio/internal/providers/sora"
)

// Querier is the slice of the provider client the poller needs.
type Querier interface {
	Query(ctx context.Context, taskID string) (*sora.QueryResult, error)
}

// Session tracks one poll loop over a single job.
type Session struct {
	Attempt     int
	MaxAttempts int
	Interval    time.Duration
}

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 60
)

// PollerOptions tunes the poll loop. The zero value takes the defaults;
// Sleep exists so tests can run sessions without real timers.
type PollerOptions struct {
	Interval    time.Duration
	MaxAttempts int
	Sleep       func(ctx context.Context, d time.Duration) error
	Usage       domain.UsageRecorder
}

// Poller repeatedly queries the provider for one job and applies the single
// terminal transition when it is observed.
type Poller struct {
	jobs        domain.VideoJobRepository
	client      Querier
	interval    time.Duration
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
	usage       domain.UsageRecorder
	logger      infra.Logger
}

func NewPoller(jobs domain.VideoJobRepository, client Querier, logger infra.Logger, opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Poller{
		jobs:        jobs,
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
		sleep:       sleep,
		usage:       opts.Usage,
		logger:      logger,
	}
}

// Transition maps an observed provider result onto the next record status.
// It is pure: persist reports whether the caller must write the transition.
// A terminal prior state absorbs every observation, so re-applying a late or
// duplicate provider response can never regress a record.
func Transition(prior domain.JobStatus, result *sora.QueryResult) (next domain.JobStatus, persist bool) {
	if prior.IsTerminal() {
		return prior, false
	}
	next = result.JobStatus()
	return next, next.IsTerminal()
}

// Reconcile applies one provider observation to the job record. The terminal
// write is idempotent by job id: observing `completed` again after it is
// persisted overwrites with identical data and nothing else.
//
// A provider-reported failure does NOT refund the credit. The credit paid
// for starting the job; only a submission that never started is compensated.
func (p *Poller) Reconcile(ctx context.Context, jobID, accountID string, prior domain.JobStatus, result *sora.QueryResult) (domain.JobStatus, error) {
	next, persist := Transition(prior, result)
	if !persist {
		return next, nil
	}
	switch next {
	case domain.JobStatusCompleted:
		if err := p.jobs.CompleteFromProvider(ctx, jobID, result.VideoURL, result.CoverURL); err != nil {
			return prior, err
		}
		p.recordUsage(ctx, accountID, jobID, domain.UsageEventCompleted, true)
	case domain.JobStatusFailed:
		if err := p.jobs.FailFromProvider(ctx, jobID, failureReason(result)); err != nil {
			return prior, err
		}
		p.recordUsage(ctx, accountID, jobID, domain.UsageEventFailed, false)
	}
	return next, nil
}

// Poll runs a bounded poll session. Query errors are transient: they consume
// an attempt and the loop continues on the same cadence. When the budget runs
// out before a terminal state the record keeps its last observed status and
// ErrPollTimeout is returned; a later out-of-band query can still finish the
// job.
func (p *Poller) Poll(ctx context.Context, jobID, accountID, taskID string) (domain.JobStatus, error) {
	sess := Session{MaxAttempts: p.maxAttempts, Interval: p.interval}
	last := domain.JobStatusProcessing
	for sess.Attempt < sess.MaxAttempts {
		sess.Attempt++
		result, err := p.client.Query(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			p.logger.Warn().Err(err).
				Str("job_id", jobID).
				Str("task_id", taskID).
				Int("attempt", sess.Attempt).
				Msg("poll: query failed, will retry")
		} else {
			status, applyErr := p.Reconcile(ctx, jobID, accountID, last, result)
			if applyErr != nil {
				return last, applyErr
			}
			last = status
			if status.IsTerminal() {
				return status, nil
			}
		}
		if sess.Attempt >= sess.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, sess.Interval); err != nil {
			return last, err
		}
	}
	return last, domain.ErrPollTimeout
}

func (p *Poller) recordUsage(ctx context.Context, accountID, jobID, eventType string, success bool) {
	if p.usage == nil {
		return
	}
	event := &domain.UsageEvent{AccountID: accountID, JobID: jobID, EventType: eventType, Success: success}
	if err := p.usage.Record(ctx, event); err != nil {
		p.logger.Warn().Err(err).Str("job_id", jobID).Msg("poll: usage event dropped")
	}
}

func failureReason(result *sora.QueryResult) string {
	if result != nil && result.StatusUpdateTime != "" {
		return "provider reported failure at " + result.StatusUpdateTime
	}
	return "provider reported failure"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
