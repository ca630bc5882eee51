package handlers

import (
	"net/http"

	"sorastudio/internal/sqlinline"
)

// Stats summarizes the caller's generation history.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	accountID := a.currentAccountID(r)
	if accountID == "" {
		a.error(w, r, http.StatusUnauthorized, codeUnauthorized)
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QAccountStats, accountID)
	var completed, failed, inFlight, last24, submits24 int64
	if err := row.Scan(&completed, &failed, &inFlight, &last24, &submits24); err != nil {
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("stats: query failed")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"completed":        completed,
		"failed":           failed,
		"in_flight":        inFlight,
		"last_24h":         last24,
		"submits_last_24h": submits24,
	})
}
