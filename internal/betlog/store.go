// Package betlog persists bet records as one JSON-lines file per day.
package betlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-edge/internal/models"
)

// Store appends and loads day files under a base directory. Records
// round-trip: a loaded record is field-for-field equal to what was written.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *logrus.Logger
}

// NewStore creates a store rooted at dir, creating it if needed
func NewStore(dir string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create record directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// dayPath returns the file path for a YYYY-MM-DD date
func (s *Store) dayPath(date string) string {
	return filepath.Join(s.dir, date+".jsonl")
}

// Append writes one record to its day file
func (s *Store) Append(ctx context.Context, record *models.BetRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal bet record: %w", err)
	}

	f, err := os.OpenFile(s.dayPath(record.Date), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open day file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append bet record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"record_id": record.ID,
		"date":      record.Date,
	}).Debug("Bet record appended")

	return nil
}

// LoadDay reads all records for a date back into memory.
// A missing day file yields an empty slice, not an error.
func (s *Store) LoadDay(ctx context.Context, date string) ([]*models.BetRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.dayPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.BetRecord{}, nil
		}
		return nil, fmt.Errorf("failed to open day file: %w", err)
	}
	defer f.Close()

	var records []*models.BetRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		record := &models.BetRecord{}
		if err := json.Unmarshal(scanner.Bytes(), record); err != nil {
			return nil, fmt.Errorf("failed to parse record at %s line %d: %w", date, line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read day file: %w", err)
	}

	return records, nil
}

// RewriteDay replaces a day file with the given records, used after
// settlement updates
func (s *Store) RewriteDay(ctx context.Context, date string, records []*models.BetRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.dayPath(date) + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp day file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("failed to marshal bet record: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("failed to write bet record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to flush day file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close day file: %w", err)
	}

	return os.Rename(tmp, s.dayPath(date))
}
