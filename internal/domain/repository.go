package domain

import "context"

// AccountLedger moves credits. The debit and the compensating refund are the
// only two writers of Account.CreditBalance inside the service.
type AccountLedger interface {
	// DebitAndCreateJob atomically decrements the balance by one credit and
	// inserts the pending job record in the same transaction. It fails with
	// ErrAccountNotFound when the account does not exist and with
	// ErrInsufficientCredit when the balance is below one; in both cases
	// nothing is written.
	DebitAndCreateJob(ctx context.Context, job *VideoJob) (remaining int, err error)

	// RefundSubmitFailure marks the job failed and returns the reserved
	// credit in one transaction. The refund applies only while the job is
	// still pending; a second call reports ErrDuplicateOperation and leaves
	// the balance alone.
	RefundSubmitFailure(ctx context.Context, jobID, reason string) error

	GetAccount(ctx context.Context, id string) (*Account, error)
}

// VideoJobRepository persists job lifecycle transitions. Terminal writes are
// idempotent per job and never regress a terminal state.
type VideoJobRepository interface {
	MarkProcessing(ctx context.Context, jobID, externalTaskID string) error
	CompleteFromProvider(ctx context.Context, jobID, resultURL, thumbnailURL string) error
	FailFromProvider(ctx context.Context, jobID, reason string) error
	GetByID(ctx context.Context, jobID string) (*VideoJob, error)
	GetByTaskID(ctx context.Context, accountID, externalTaskID string) (*VideoJob, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]VideoJob, error)
}

// UsageRecorder appends analytics events. Best effort: callers log failures
// and move on, usage data is never authoritative for balances or job state.
type UsageRecorder interface {
	Record(ctx context.Context, event *UsageEvent) error
}
