package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"sorastudio/internal/domain"
)

type generateRequest struct {
	Prompt   string          `json:"prompt"`
	Settings settingsPayload `json:"settings"`
}

type settingsPayload struct {
	Orientation string `json:"orientation"`
	Size        string `json:"size"`
	Duration    int    `json:"duration"`
}

type generateResponse struct {
	Success          bool   `json:"success"`
	TaskID           string `json:"taskId"`
	JobID            string `json:"jobId"`
	Status           string `json:"status"`
	RemainingCredits int    `json:"remainingCredits"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, r, http.StatusUnauthorized, codeUnauthorized)
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}

	res, err := a.Generator.Submit(r.Context(), accountID, req.Prompt, domain.VideoSettings{
		Orientation: domain.Orientation(req.Settings.Orientation),
		Size:        domain.VideoSize(req.Settings.Size),
		Duration:    req.Settings.Duration,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyPrompt):
			a.error(w, r, http.StatusBadRequest, codeEmptyPrompt)
		case errors.Is(err, domain.ErrInvalidSettings):
			a.error(w, r, http.StatusBadRequest, codeInvalidSettings)
		case errors.Is(err, domain.ErrInsufficientCredit):
			a.error(w, r, http.StatusForbidden, codeInsufficientCredit)
		case errors.Is(err, domain.ErrAccountNotFound):
			a.error(w, r, http.StatusNotFound, codeAccountNotFound)
		case errors.Is(err, domain.ErrNotConfigured):
			a.error(w, r, http.StatusInternalServerError, codeNotConfigured)
		default:
			// Submission failures were already compensated by the
			// orchestrator; nothing here distinguishes them for the client
			// beyond the code.
			a.Logger.Error().Err(err).Str("account_id", accountID).Msg("generate failed")
			a.error(w, r, http.StatusInternalServerError, codeProviderError)
		}
		return
	}

	a.json(w, http.StatusAccepted, generateResponse{
		Success:          true,
		TaskID:           res.ExternalTaskID,
		JobID:            res.JobID,
		Status:           string(res.Status),
		RemainingCredits: res.RemainingCredits,
	})
}
