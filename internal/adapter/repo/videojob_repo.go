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

// VideoJobRepositoryPG implements domain.VideoJobRepository.
//
// Lifecycle writes are guarded in SQL: the external task id is attached only
// while the record is pending, and terminal writes never overwrite the other
// terminal state. Re-applying the same terminal payload is a no-op overwrite,
// which keeps duplicate pollers harmless.
type VideoJobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewVideoJobRepository creates a new job repository backed by PostgreSQL.
func NewVideoJobRepository(pool *pgxpool.Pool) *VideoJobRepositoryPG {
	return &VideoJobRepositoryPG{pool: pool}
}

// MarkProcessing records the provider task id after a successful submission.
func (r *VideoJobRepositoryPG) MarkProcessing(ctx context.Context, jobID, externalTaskID string) error {
	tag, err := r.pool.Exec(ctx, sqlinline.QMarkJobProcessing, jobID, externalTaskID)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateOperation
	}
	return nil
}

// CompleteFromProvider persists the terminal success state. Idempotent: a
// repeat observation overwrites the row with identical data.
func (r *VideoJobRepositoryPG) CompleteFromProvider(ctx context.Context, jobID, resultURL, thumbnailURL string) error {
	tag, err := r.pool.Exec(ctx, sqlinline.QCompleteJob, jobID, resultURL, thumbnailURL)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateOperation
	}
	return nil
}

// FailFromProvider persists the terminal failure state. No credit moves on
// this path; the refund belongs exclusively to submission-time failure.
func (r *VideoJobRepositoryPG) FailFromProvider(ctx context.Context, jobID, reason string) error {
	tag, err := r.pool.Exec(ctx, sqlinline.QFailJob, jobID, reason)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateOperation
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *VideoJobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.VideoJob, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QSelectJobByID, jobID)
	return scanJob(row)
}

// GetByTaskID fetches a job by owner and provider task id.
func (r *VideoJobRepositoryPG) GetByTaskID(ctx context.Context, accountID, externalTaskID string) (*domain.VideoJob, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QSelectJobByTaskID, accountID, externalTaskID)
	return scanJob(row)
}

// ListByAccount returns the account's jobs, newest first.
func (r *VideoJobRepositoryPG) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.VideoJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, sqlinline.QListJobsByAccount, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.VideoJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*domain.VideoJob, error) {
	var job domain.VideoJob
	if err := row.Scan(
		&job.ID,
		&job.AccountID,
		&job.Prompt,
		&job.Settings.Orientation,
		&job.Settings.Size,
		&job.Settings.Duration,
		&job.ExternalTaskID,
		&job.Status,
		&job.ResultURL,
		&job.ThumbnailURL,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

var _ domain.VideoJobRepository = (*VideoJobRepositoryPG)(nil)
