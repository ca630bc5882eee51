package handlers

import (
	"github.com/jackc/pgx/v5"
)

// SimpleRow adapts a scan function to pgx.Row for handler tests that stub the
// SQL executor.
type SimpleRow struct {
	scan func(dest ...any) error
}

func NewSimpleRow(scanner func(dest ...any) error) SimpleRow {
	return SimpleRow{scan: scanner}
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}
