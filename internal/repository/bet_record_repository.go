// Package repository provides Postgres persistence for bet records.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/kyotei-edge/internal/database"
	"github.com/yourusername/kyotei-edge/internal/models"
)

// BetRecordRepository defines persistence operations for bet records
type BetRecordRepository interface {
	Create(ctx context.Context, record *models.BetRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error)
	GetByDate(ctx context.Context, date string) ([]*models.BetRecord, error)
	GetUnsettled(ctx context.Context) ([]*models.BetRecord, error)
	UpdateSettlement(ctx context.Context, record *models.BetRecord) error
}

// PostgresBetRecordRepository implements BetRecordRepository for PostgreSQL
type PostgresBetRecordRepository struct {
	db *database.DB
}

// NewPostgresBetRecordRepository creates a new bet record repository
func NewPostgresBetRecordRepository(db *database.DB) BetRecordRepository {
	return &PostgresBetRecordRepository{db: db}
}

const betRecordColumns = `id, date, venue_code, race_number, race_id, bet_type, combination,
	odds, stake, ev, edge, confidence_grade, method, reason, logic_version,
	hit, payout, roi, created_at, settled_at`

// Create inserts a new bet record
func (r *PostgresBetRecordRepository) Create(ctx context.Context, record *models.BetRecord) error {
	query := `
		INSERT INTO bet_records (` + betRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.Date, record.VenueCode, record.RaceNumber, record.RaceID,
		record.BetType, record.Combination, record.Odds, record.Stake, record.EV,
		record.Edge, record.ConfidenceGrade, record.Method, record.Reason,
		record.LogicVersion, record.Hit, record.Payout, record.ROI,
		record.CreatedAt, record.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet record: %w", err)
	}

	return nil
}

// GetByID retrieves a bet record by ID
func (r *PostgresBetRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error) {
	query := `SELECT ` + betRecordColumns + ` FROM bet_records WHERE id = $1`

	record, err := scanBetRecord(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet record: %w", err)
	}

	return record, nil
}

// GetByDate retrieves all bet records for a day ordered by creation time
func (r *PostgresBetRecordRepository) GetByDate(ctx context.Context, date string) ([]*models.BetRecord, error) {
	query := `SELECT ` + betRecordColumns + ` FROM bet_records WHERE date = $1 ORDER BY created_at`

	rows, err := r.db.GetPool().Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet records by date: %w", err)
	}
	defer rows.Close()

	return collectBetRecords(rows)
}

// GetUnsettled retrieves all records awaiting settlement
func (r *PostgresBetRecordRepository) GetUnsettled(ctx context.Context) ([]*models.BetRecord, error) {
	query := `SELECT ` + betRecordColumns + ` FROM bet_records WHERE settled_at IS NULL ORDER BY created_at`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsettled bet records: %w", err)
	}
	defer rows.Close()

	return collectBetRecords(rows)
}

// UpdateSettlement persists the settled outcome of a record
func (r *PostgresBetRecordRepository) UpdateSettlement(ctx context.Context, record *models.BetRecord) error {
	query := `
		UPDATE bet_records
		SET hit = $2, payout = $3, roi = $4, settled_at = $5
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.Hit, record.Payout, record.ROI, record.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update bet record settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func collectBetRecords(rows pgx.Rows) ([]*models.BetRecord, error) {
	var records []*models.BetRecord
	for rows.Next() {
		record, err := scanBetRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanBetRecord(row pgx.Row) (*models.BetRecord, error) {
	record := &models.BetRecord{}
	var (
		hit       *bool
		payout    decimal.NullDecimal
		roi       decimal.NullDecimal
		settledAt *time.Time
	)

	err := row.Scan(
		&record.ID, &record.Date, &record.VenueCode, &record.RaceNumber, &record.RaceID,
		&record.BetType, &record.Combination, &record.Odds, &record.Stake, &record.EV,
		&record.Edge, &record.ConfidenceGrade, &record.Method, &record.Reason,
		&record.LogicVersion, &hit, &payout, &roi, &record.CreatedAt, &settledAt,
	)
	if err != nil {
		return nil, err
	}

	record.Hit = hit
	record.SettledAt = settledAt
	if payout.Valid {
		record.Payout = &payout.Decimal
	}
	if roi.Valid {
		record.ROI = &roi.Decimal
	}

	return record, nil
}
