package domain

import "time"

// Account holds the credit balance for one identity. Identity provisioning
// happens out of band; this service only reads the record and moves credits.
type Account struct {
	ID            string
	DisplayName   string
	CreditBalance int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
