package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"sorastudio/internal/domain"
	"sorastudio/internal/generation"
	"sorastudio/internal/infra"
	"sorastudio/internal/middleware"
	"sorastudio/internal/providers/sora"
)

// Generator is the slice of the orchestrator the generate endpoint needs.
type Generator interface {
	Submit(ctx context.Context, accountID, prompt string, settings domain.VideoSettings) (*generation.SubmitResult, error)
}

// ProviderQuerier is the slice of the sora client the status endpoint needs.
type ProviderQuerier interface {
	HasCredentials() bool
	Query(ctx context.Context, taskID string) (*sora.QueryResult, error)
}

type App struct {
	SQL       infra.SQLExecutor
	Ledger    domain.AccountLedger
	Jobs      domain.VideoJobRepository
	Generator Generator
	Provider  ProviderQuerier
	Poller    *generation.Poller
	Logger    infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the standard error envelope. The human-readable message is
// localized from the request locale; the code stays stable for clients.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code string) {
	a.json(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": localizedMessage(middleware.LocaleFromContext(r.Context()), code),
	})
}

func (a *App) currentAccountID(r *http.Request) string {
	return middleware.AccountIDFromContext(r.Context())
}

// TagUsageCountry decorates a recorder so events pick up the country resolved
// by the i18n middleware when the caller did not set one.
func TagUsageCountry(next domain.UsageRecorder) domain.UsageRecorder {
	return countryTaggedRecorder{next: next}
}

type countryTaggedRecorder struct {
	next domain.UsageRecorder
}

func (c countryTaggedRecorder) Record(ctx context.Context, event *domain.UsageEvent) error {
	if event.Country == "" {
		event.Country = middleware.CountryFromContext(ctx)
	}
	return c.next.Record(ctx, event)
}
