package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sorastudio/internal/domain"
	"sorastudio/internal/infra"
	"sorastudio/internal/providers/sora"
)

// Submitter is the slice of the provider client the orchestrator needs.
type Submitter interface {
	HasCredentials() bool
	Submit(ctx context.Context, req sora.SubmitRequest) (string, error)
}

// Orchestrator drives the debit-submit-reconcile flow for one generation
// request. Exactly one debit attempt per call; exactly one compensating
// credit when the provider submission never starts.
type Orchestrator struct {
	ledger domain.AccountLedger
	jobs   domain.VideoJobRepository
	client Submitter
	usage  domain.UsageRecorder
	logger infra.Logger
}

// NewOrchestrator wires the generation flow. usage may be nil.
func NewOrchestrator(ledger domain.AccountLedger, jobs domain.VideoJobRepository, client Submitter, usage domain.UsageRecorder, logger infra.Logger) *Orchestrator {
	return &Orchestrator{ledger: ledger, jobs: jobs, client: client, usage: usage, logger: logger}
}

// SubmitResult reports a successfully started generation.
type SubmitResult struct {
	JobID            string
	ExternalTaskID   string
	Status           domain.JobStatus
	RemainingCredits int
}

// Submit validates the request, reserves one credit together with the job
// record in a single transaction, and only then calls the provider. The
// provider call happens outside the transaction: it is slow and must not
// hold a lock over the account row.
func (o *Orchestrator) Submit(ctx context.Context, accountID, prompt string, settings domain.VideoSettings) (*SubmitResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrEmptyPrompt
	}
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if o.client == nil || !o.client.HasCredentials() {
		return nil, domain.ErrNotConfigured
	}

	job := &domain.VideoJob{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Prompt:    prompt,
		Settings:  settings,
		Status:    domain.JobStatusPending,
	}
	remaining, err := o.ledger.DebitAndCreateJob(ctx, job)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	taskID, submitErr := o.client.Submit(ctx, sora.SubmitRequest{Prompt: prompt, Settings: settings})
	o.recordUsage(ctx, accountID, job.ID, domain.UsageEventSubmit, submitErr == nil, time.Since(start))
	if submitErr != nil {
		o.logger.Error().Err(submitErr).
			Str("job_id", job.ID).
			Str("account_id", accountID).
			Msg("generation: provider submit failed, refunding credit")
		if refundErr := o.ledger.RefundSubmitFailure(ctx, job.ID, submitErr.Error()); refundErr != nil && !errors.Is(refundErr, domain.ErrDuplicateOperation) {
			// The reserved credit could not be returned. The record stays
			// pending so the loss is visible and recoverable by hand.
			o.logger.Error().Err(refundErr).
				Str("job_id", job.ID).
				Str("account_id", accountID).
				Msg("generation: refund failed after submit failure")
		}
		return nil, fmt.Errorf("provider submit: %w", submitErr)
	}

	if err := o.jobs.MarkProcessing(ctx, job.ID, taskID); err != nil {
		// The external job is already running; surface the record
		// inconsistency in logs but report the started task to the caller.
		o.logger.Error().Err(err).
			Str("job_id", job.ID).
			Str("task_id", taskID).
			Msg("generation: failed to mark job processing")
	}

	return &SubmitResult{
		JobID:            job.ID,
		ExternalTaskID:   taskID,
		Status:           domain.JobStatusProcessing,
		RemainingCredits: remaining,
	}, nil
}

func (o *Orchestrator) recordUsage(ctx context.Context, accountID, jobID, eventType string, success bool, latency time.Duration) {
	if o.usage == nil {
		return
	}
	event := &domain.UsageEvent{
		AccountID: accountID,
		JobID:     jobID,
		EventType: eventType,
		Success:   success,
		LatencyMS: int(latency.Milliseconds()),
	}
	if err := o.usage.Record(ctx, event); err != nil {
		o.logger.Warn().Err(err).Str("job_id", jobID).Msg("generation: usage event dropped")
	}
}
