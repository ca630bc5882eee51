package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sorastudio/internal/domain"
	"sorastudio/internal/middleware"
	"sorastudio/internal/providers/sora"
)

type statusResponse struct {
	TaskID        string `json:"taskId"`
	Status        string `json:"status"`
	VideoURL      string `json:"videoUrl,omitempty"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
	Progress      int    `json:"progress"`
	EstimatedTime int    `json:"estimatedTime,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Status proxies a single provider query for the caller's job and applies the
// terminal transition when one is observed. The browser polls this endpoint;
// the server never holds the connection open across provider attempts.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, r, http.StatusUnauthorized, codeUnauthorized)
		return
	}
	taskID := chi.URLParam(r, "taskId")
	if taskID == "" {
		a.error(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}

	job, err := a.Jobs.GetByTaskID(r.Context(), accountID, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, r, http.StatusNotFound, codeJobNotFound)
			return
		}
		a.Logger.Error().Err(err).Str("task_id", taskID).Msg("status: job lookup failed")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}

	// A terminal record answers from storage; the provider is done with us.
	if job.Status.IsTerminal() {
		a.json(w, http.StatusOK, statusFromRecord(job))
		return
	}

	if a.Provider == nil || !a.Provider.HasCredentials() {
		a.error(w, r, http.StatusInternalServerError, codeNotConfigured)
		return
	}
	result, err := a.Provider.Query(r.Context(), taskID)
	if err != nil {
		var pe *sora.ProviderError
		if errors.As(err, &pe) {
			// Mirror the provider's verdict so the client sees the same
			// status the upstream returned.
			a.Logger.Warn().Int("provider_status", pe.StatusCode).Str("task_id", taskID).Msg("status: provider query rejected")
			a.error(w, r, pe.StatusCode, codeProviderError)
			return
		}
		a.Logger.Error().Err(err).Str("task_id", taskID).Msg("status: provider query failed")
		a.error(w, r, http.StatusInternalServerError, codeProviderError)
		return
	}

	next, err := a.Poller.Reconcile(r.Context(), job.ID, job.AccountID, job.Status, result)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("status: reconcile failed")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}

	resp := statusResponse{
		TaskID:       taskID,
		Status:       string(next),
		VideoURL:     result.VideoURL,
		ThumbnailURL: result.CoverURL,
		Progress:     progressFor(next),
	}
	if next == domain.JobStatusPending {
		resp.EstimatedTime = 60
	}
	if next == domain.JobStatusFailed {
		resp.Error = localizedMessage(middleware.LocaleFromContext(r.Context()), codeProviderError)
		resp.VideoURL = ""
	}
	a.json(w, http.StatusOK, resp)
}

func statusFromRecord(job *domain.VideoJob) statusResponse {
	resp := statusResponse{
		TaskID:       job.ExternalTaskID,
		Status:       string(job.Status),
		VideoURL:     job.ResultURL,
		ThumbnailURL: job.ThumbnailURL,
		Progress:     progressFor(job.Status),
	}
	if job.Status == domain.JobStatusFailed {
		resp.Error = job.ErrorMessage
	}
	return resp
}

func progressFor(status domain.JobStatus) int {
	switch status {
	case domain.JobStatusCompleted:
		return 100
	case domain.JobStatusProcessing:
		return 50
	default:
		return 0
	}
}
