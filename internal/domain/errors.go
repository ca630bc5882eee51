package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrEmptyPrompt        = errors.New("prompt is empty")
	ErrInvalidSettings    = errors.New("invalid video settings")
	ErrNotConfigured      = errors.New("provider credentials not configured")
	ErrPollTimeout        = errors.New("poll attempt budget exhausted")
	ErrDuplicateOperation = errors.New("duplicate operation")
)
