package models

import "errors"

// Custom errors
var (
	ErrInvalidPrediction = errors.New("invalid prediction sequence")
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrInvalidID         = errors.New("invalid ID format")
)
