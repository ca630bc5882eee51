package handlers

import (
	"net/http"
	"strconv"
	"time"

	"sorastudio/internal/domain"
)

const galleryDefaultLimit = 50

type galleryItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Prompt       string    `json:"prompt"`
	TaskID       string    `json:"taskId,omitempty"`
	Status       string    `json:"status"`
	Orientation  string    `json:"orientation"`
	Size         string    `json:"size"`
	Duration     int       `json:"duration"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Videos lists the caller's job records, newest first.
func (a *App) Videos(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, r, http.StatusUnauthorized, codeUnauthorized)
		return
	}
	limit := galleryDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	jobs, err := a.Jobs.ListByAccount(r.Context(), accountID, limit)
	if err != nil {
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("gallery: list failed")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}
	items := make([]galleryItem, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, galleryItemFrom(job))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func galleryItemFrom(job domain.VideoJob) galleryItem {
	return galleryItem{
		ID:           job.ID,
		Title:        job.DisplayTitle(),
		Prompt:       job.Prompt,
		TaskID:       job.ExternalTaskID,
		Status:       string(job.Status),
		Orientation:  string(job.Settings.Orientation),
		Size:         string(job.Settings.Size),
		Duration:     job.Settings.Duration,
		VideoURL:     job.ResultURL,
		ThumbnailURL: job.ThumbnailURL,
		Error:        job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
	}
}
