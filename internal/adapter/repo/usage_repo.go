package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"sorastudio/internal/domain"
	"sorastudio/internal/infra"
	"sorastudio/internal/sqlinline"
)

// UsageRepositoryPG appends analytics events. Recording is best effort at the
// call sites; failures here never abort a generation flow.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

func (r *UsageRepositoryPG) Record(ctx context.Context, event *domain.UsageEvent) error {
	var props []byte
	if len(event.Properties) > 0 {
		b, err := json.Marshal(event.Properties)
		if err != nil {
			return fmt.Errorf("marshal event properties: %w", err)
		}
		props = b
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertUsageEvent,
		event.AccountID,
		event.JobID,
		event.EventType,
		event.Success,
		event.LatencyMS,
		event.Country,
		props,
	)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

var _ domain.UsageRecorder = (*UsageRepositoryPG)(nil)
