package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"sorastudio/internal/infra"
	"sorastudio/internal/sqlinline"
)

const (
	ProviderSora = "sora"
)

// Store reads and writes provider credentials kept in integration_tokens.
// It backs the SORA_API_KEY environment variable: when the variable is
// absent at startup, the service falls back to the stored token.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) SoraAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderSora)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetSoraAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("sora api key is required")
	}
	return s.upsert(ctx, ProviderSora, key, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
