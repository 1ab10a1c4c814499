package engine

import (
	"context"
	"errors"

	"github.com/yourusername/kyotei-edge/internal/models"
)

// MultiWriter fans each record out to several writers (e.g. the day-file
// store and the Postgres repository). All writers are attempted; errors
// are joined.
type MultiWriter []RecordWriter

// Append writes the record to every writer
func (m MultiWriter) Append(ctx context.Context, record *models.BetRecord) error {
	var errs []error
	for _, w := range m {
		if err := w.Append(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
