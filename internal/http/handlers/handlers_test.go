package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"sorastudio/internal/domain"
	"sorastudio/internal/generation"
	"sorastudio/internal/middleware"
	"sorastudio/internal/providers/sora"
)

type stubGenerator struct {
	result *generation.SubmitResult
	err    error
	calls  int
}

func (s *stubGenerator) Submit(ctx context.Context, accountID, prompt string, settings domain.VideoSettings) (*generation.SubmitResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubProvider struct {
	noCreds bool
	result  *sora.QueryResult
	err     error
	calls   int
}

func (s *stubProvider) HasCredentials() bool { return !s.noCreds }

func (s *stubProvider) Query(ctx context.Context, taskID string) (*sora.QueryResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// stubJobs serves a fixed job and records terminal writes.
type stubJobs struct {
	job       *domain.VideoJob
	jobErr    error
	completed []string
	failed    []string
}

func (s *stubJobs) MarkProcessing(ctx context.Context, jobID, externalTaskID string) error {
	return nil
}

func (s *stubJobs) CompleteFromProvider(ctx context.Context, jobID, resultURL, thumbnailURL string) error {
	s.completed = append(s.completed, jobID)
	return nil
}

func (s *stubJobs) FailFromProvider(ctx context.Context, jobID, reason string) error {
	s.failed = append(s.failed, jobID)
	return nil
}

func (s *stubJobs) GetByID(ctx context.Context, jobID string) (*domain.VideoJob, error) {
	if s.jobErr != nil {
		return nil, s.jobErr
	}
	return s.job, nil
}

func (s *stubJobs) GetByTaskID(ctx context.Context, accountID, externalTaskID string) (*domain.VideoJob, error) {
	if s.jobErr != nil {
		return nil, s.jobErr
	}
	return s.job, nil
}

func (s *stubJobs) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.VideoJob, error) {
	if s.jobErr != nil {
		return nil, s.jobErr
	}
	if s.job == nil {
		return nil, nil
	}
	return []domain.VideoJob{*s.job}, nil
}

type stubLedger struct {
	account *domain.Account
	err     error
}

func (s *stubLedger) DebitAndCreateJob(ctx context.Context, job *domain.VideoJob) (int, error) {
	return 0, s.err
}

func (s *stubLedger) RefundSubmitFailure(ctx context.Context, jobID, reason string) error {
	return s.err
}

func (s *stubLedger) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func quietLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func authed(r *http.Request, accountID string) *http.Request {
	return r.WithContext(middleware.ContextWithAccountID(r.Context(), accountID))
}

func doRequest(t *testing.T, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}
