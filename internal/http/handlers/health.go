package handlers

import (
	"net/http"
)

// Health answers liveness probes. It deliberately touches neither the
// database nor the provider.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
