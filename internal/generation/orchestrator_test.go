package generation

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"sorastudio/internal/domain"
	"sorastudio/internal/providers/sora"
)

type fakeSubmitter struct {
	taskID  string
	err     error
	noCreds bool
	calls   atomic.Int64
	mu      sync.Mutex
	lastReq sora.SubmitRequest
}

func (f *fakeSubmitter) HasCredentials() bool { return !f.noCreds }

func (f *fakeSubmitter) Submit(ctx context.Context, req sora.SubmitRequest) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.taskID, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestSubmitHappyPath(t *testing.T) {
	store := newMemStore()
	store.addAccount("acct-1", 3)
	client := &fakeSubmitter{taskID: "task-1"}
	orch := NewOrchestrator(store, store, client, nil, testLogger())

	res, err := orch.Submit(context.Background(), "acct-1", "sunset over ocean", domain.VideoSettings{
		Orientation: domain.OrientationLandscape,
		Size:        domain.VideoSizeLarge,
		Duration:    10,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if res.ExternalTaskID != "task-1" || res.Status != domain.JobStatusProcessing {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.RemainingCredits != 2 {
		t.Fatalf("RemainingCredits = %d, want 2", res.RemainingCredits)
	}
	if got := store.balance("acct-1"); got != 2 {
		t.Fatalf("balance = %d, want 2", got)
	}
	job := store.job(res.JobID)
	if job.Status != domain.JobStatusProcessing || job.ExternalTaskID != "task-1" {
		t.Fatalf("job record not processing: %+v", job)
	}
}

func TestSubmitEmptyPromptNoSideEffects(t *testing.T) {
	store := newMemStore()
	store.addAccount("acct-1", 3)
	client := &fakeSubmitter{taskID: "task-1"}
	orch := NewOrchestrator(store, store, client, nil, testLogger())

	if _, err := orch.Submit(context.Background(), "acct-1", "   ", domain.VideoSettings{}); !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if store.balance("acct-1") != 3 {
		t.Fatalf("balance changed on rejected submit")
	}
	if store.jobCount() != 0 {
		t.Fatalf("job record created on rejected submit")
	}
	if client.calls.Load() != 0 {
		t.Fatalf("provider called on rejected submit")
	}
}

func TestSubmitInvalidDuration(t *testing.T) {
	store := newMemStore()
	store.addAccount("acct-1", 3)
	orch := NewOrchestrator(store, store, &fakeSubmitter{taskID: "t"}, nil, testLogger())

	_, err := orch.Submit(context.Background(), "acct-1", "a cat", domain.VideoSettings{Duration: 42})
	if !errors.Is(err, domain.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if store.jobCount() != 0 {
		t.Fatal("job record created for invalid settings")
	}
}

func TestSubmitZeroBalanceRejected(t *testing.T) {
	store := newMemStore()
	store.addAccount("acct-1", 0)
	client := &fakeSubmitter{taskID: "task-1"}
	orch := NewOrchestrator(store, store, client, nil, testLogger())

	if _, err := orch.Submit(context.Background(), "acct-1", "a cat", domain.VideoSettings{}); !errors.Is(err, domain.ErrInsufficientCredit) {
		t.Fatalf("expected ErrInsufficientCredit, got %v", err)
	}
	if store.balance("acct-1") != 0 {
		t.Fatalf("balance changed on rejected submit")
	}
	if client.calls.Load() != 0 {
		t.Fatalf("provider called despite insufficient credit")
	}
}

func TestSubmitUnknownAccount(t *testing.T) {
	store := newMemStore()
	orch := NewOrchestrator(store, store, &fakeSubmitter{taskID: "t"}, nil, testLogger())

	if _, err := orch.Submit(context.Background(), "ghost", "a cat", domain.VideoSettings{}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestSubmitWithoutProviderKey(t *testing.T) {
	store := newMemStore()
	store.addAccount("acct-1", 3)
	orch := NewOrchestrator(store, store, &fakeSubmitter{noCreds: true}, nil, testLogger())

	if _, err := orch.Submit(context.Background(), "acct-1", "a cat", domain.VideoSettings{}); !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if store.balance("acct-1") != 3 {
		t.Fatal("balance changed on configuration error")
	}
}

func TestSubmitProviderFailureRefunds(t *testing.T) {
	store := newMemStore()
	store.addAccount("acct-1", 3)
	provErr := &sora.ProviderError{StatusCode: 502, Message: "upstream unavailable"}
	client := &fakeSubmitter{err: provErr}
	orch := NewOrchestrator(store, store, client, nil, testLogger())

	_, err := orch.Submit(context.Background(), "acct-1", "a cat", domain.VideoSettings{})
	if err == nil {
		t.Fatal("expected submit error")
	}
	var pe *sora.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("provider error not preserved in chain: %v", err)
	}
	if got := store.balance("acct-1"); got != 3 {
		t.Fatalf("balance = %d after refund, want 3", got)
	}
	jobs, _ := store.ListByAccount(context.Background(), "acct-1", 0)
	if len(jobs) != 1 || jobs[0].Status != domain.JobStatusFailed {
		t.Fatalf("job not marked failed: %+v", jobs)
	}
	if jobs[0].ErrorMessage == "" {
		t.Fatal("failure reason not recorded on job")
	}
}

func TestRefundAppliesAtMostOnce(t *testing.T) {
	store := newMemStore()
	store.addAccount("acct-1", 1)
	job := &domain.VideoJob{ID: "job-1", AccountID: "acct-1", Prompt: "a cat", Status: domain.JobStatusPending}
	if _, err := store.DebitAndCreateJob(context.Background(), job); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := store.RefundSubmitFailure(context.Background(), "job-1", "boom"); err != nil {
		t.Fatalf("first refund: %v", err)
	}
	if err := store.RefundSubmitFailure(context.Background(), "job-1", "boom"); !errors.Is(err, domain.ErrDuplicateOperation) {
		t.Fatalf("second refund: got %v, want ErrDuplicateOperation", err)
	}
	if got := store.balance("acct-1"); got != 1 {
		t.Fatalf("balance = %d after double refund attempt, want 1", got)
	}
}

func TestConcurrentSubmissionsNeverOverdraw(t *testing.T) {
	const workers = 10
	const balance = 3

	store := newMemStore()
	store.addAccount("acct-1", balance)
	client := &fakeSubmitter{taskID: "task"}
	orch := NewOrchestrator(store, store, client, nil, testLogger())

	var wg sync.WaitGroup
	var ok, insufficient atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orch.Submit(context.Background(), "acct-1", "a cat", domain.VideoSettings{})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientCredit):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != balance {
		t.Fatalf("successful submissions = %d, want %d", ok.Load(), balance)
	}
	if insufficient.Load() != workers-balance {
		t.Fatalf("rejections = %d, want %d", insufficient.Load(), workers-balance)
	}
	if got := store.balance("acct-1"); got != 0 {
		t.Fatalf("final balance = %d, want 0", got)
	}
}

func TestSubmitNormalizesSettingsBeforeProviderCall(t *testing.T) {
	store := newMemStore()
	store.addAccount("acct-1", 1)
	client := &fakeSubmitter{taskID: "task-1"}
	orch := NewOrchestrator(store, store, client, nil, testLogger())

	if _, err := orch.Submit(context.Background(), "acct-1", "a cat", domain.VideoSettings{Size: "high"}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	client.mu.Lock()
	req := client.lastReq
	client.mu.Unlock()
	if req.Settings.Size != domain.VideoSizeLarge || req.Settings.Orientation != domain.OrientationLandscape || req.Settings.Duration != 10 {
		t.Fatalf("settings not normalized: %+v", req.Settings)
	}
}
