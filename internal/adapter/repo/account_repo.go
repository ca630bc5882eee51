package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sorastudio/internal/domain"
	"sorastudio/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountLedger backed by PostgreSQL.
type AccountRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new account ledger backed by PostgreSQL.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepositoryPG {
	return &AccountRepositoryPG{pool: pool}
}

// DebitAndCreateJob reserves one credit and inserts the pending job record in
// a single transaction. The debit is a conditional update re-checked at write
// time, so two concurrent submissions from the same account can never both
// spend the last credit.
func (r *AccountRepositoryPG) DebitAndCreateJob(ctx context.Context, job *domain.VideoJob) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin debit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var remaining int
	err = tx.QueryRow(ctx, sqlinline.QDebitAccount, job.AccountID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.classifyDebitFailure(ctx, job.AccountID)
		}
		return 0, fmt.Errorf("debit account: %w", err)
	}

	_, err = tx.Exec(ctx, sqlinline.QInsertVideoJob,
		job.ID,
		job.AccountID,
		job.Prompt,
		job.Settings.Orientation,
		job.Settings.Size,
		job.Settings.Duration,
		domain.JobStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("insert job record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit debit tx: %w", err)
	}
	return remaining, nil
}

// classifyDebitFailure distinguishes a missing account from an empty balance
// after the conditional debit matched nothing.
func (r *AccountRepositoryPG) classifyDebitFailure(ctx context.Context, accountID string) error {
	var balance int
	err := r.pool.QueryRow(ctx, sqlinline.QSelectAccountBalance, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("inspect account: %w", err)
	}
	return domain.ErrInsufficientCredit
}

// RefundSubmitFailure marks the job failed and returns the reserved credit.
// The job update is guarded on the pending status and the credit moves only
// when that guard matched, all inside one transaction: the compensation can
// never apply twice and a crash can never credit without marking.
func (r *AccountRepositoryPG) RefundSubmitFailure(ctx context.Context, jobID, reason string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin refund tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var accountID string
	err = tx.QueryRow(ctx, sqlinline.QRefundMarkJobFailed, jobID, reason).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrDuplicateOperation
		}
		return fmt.Errorf("mark job failed: %w", err)
	}

	if _, err := tx.Exec(ctx, sqlinline.QRefundCredit, accountID); err != nil {
		return fmt.Errorf("refund credit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit refund tx: %w", err)
	}
	return nil
}

// GetAccount fetches an account by its identifier.
func (r *AccountRepositoryPG) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QSelectAccount, id)
	var acct domain.Account
	if err := row.Scan(&acct.ID, &acct.DisplayName, &acct.CreditBalance, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

var _ domain.AccountLedger = (*AccountRepositoryPG)(nil)
