package repository

import (
	"context"

	"github.com/yourusername/kyotei-edge/internal/models"
)

// Writer adapts a BetRecordRepository to the engine's RecordWriter contract
type Writer struct {
	repo BetRecordRepository
}

// NewWriter creates a record writer backed by a repository
func NewWriter(repo BetRecordRepository) *Writer {
	return &Writer{repo: repo}
}

// Append persists the record
func (w *Writer) Append(ctx context.Context, record *models.BetRecord) error {
	return w.repo.Create(ctx, record)
}
