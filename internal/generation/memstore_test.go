package generation

import (
	"context"
	"sort"
	"sync"

	"sorastudio/internal/domain"
)

// memStore is an in-memory AccountLedger + VideoJobRepository with the same
// guard semantics as the Postgres adapter. It lets the flow tests exercise
// the accounting invariants, concurrency included, without a database.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	jobs     map[string]*domain.VideoJob
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*domain.Account),
		jobs:     make(map[string]*domain.VideoJob),
	}
}

func (m *memStore) addAccount(id string, balance int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[id] = &domain.Account{ID: id, CreditBalance: balance}
}

func (m *memStore) balance(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].CreditBalance
}

func (m *memStore) job(id string) domain.VideoJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.jobs[id]
}

func (m *memStore) jobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *memStore) DebitAndCreateJob(ctx context.Context, job *domain.VideoJob) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[job.AccountID]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	if acct.CreditBalance < 1 {
		return acct.CreditBalance, domain.ErrInsufficientCredit
	}
	acct.CreditBalance--
	stored := *job
	m.jobs[job.ID] = &stored
	return acct.CreditBalance, nil
}

func (m *memStore) RefundSubmitFailure(ctx context.Context, jobID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != domain.JobStatusPending {
		return domain.ErrDuplicateOperation
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = reason
	m.accounts[job.AccountID].CreditBalance++
	return nil
}

func (m *memStore) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copied := *acct
	return &copied, nil
}

func (m *memStore) MarkProcessing(ctx context.Context, jobID, externalTaskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != domain.JobStatusPending {
		return domain.ErrDuplicateOperation
	}
	job.Status = domain.JobStatusProcessing
	job.ExternalTaskID = externalTaskID
	return nil
}

func (m *memStore) CompleteFromProvider(ctx context.Context, jobID, resultURL, thumbnailURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status == domain.JobStatusFailed {
		return domain.ErrDuplicateOperation
	}
	job.Status = domain.JobStatusCompleted
	job.ResultURL = resultURL
	if thumbnailURL != "" {
		job.ThumbnailURL = thumbnailURL
	}
	return nil
}

func (m *memStore) FailFromProvider(ctx context.Context, jobID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status == domain.JobStatusCompleted {
		return domain.ErrDuplicateOperation
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = reason
	return nil
}

func (m *memStore) GetByID(ctx context.Context, jobID string) (*domain.VideoJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memStore) GetByTaskID(ctx context.Context, accountID, externalTaskID string) (*domain.VideoJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.AccountID == accountID && job.ExternalTaskID == externalTaskID {
			copied := *job
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.VideoJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.VideoJob
	for _, job := range m.jobs {
		if job.AccountID == accountID {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ domain.AccountLedger      = (*memStore)(nil)
	_ domain.VideoJobRepository = (*memStore)(nil)
)
