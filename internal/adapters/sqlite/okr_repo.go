package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// OKRRepository implements secondary.OKRRepository with SQLite.
type OKRRepository struct {
	db *sql.DB
}

// NewOKRRepository creates a new SQLite OKR repository.
func NewOKRRepository(db *sql.DB) *OKRRepository {
	return &OKRRepository{db: db}
}

const okrSelectCols = "id, initiative_id, quarter, objective, created_at"

func scanOKR(s scanner) (*secondary.OKRRecord, error) {
	var createdAt sql.NullTime
	record := &secondary.OKRRecord{}
	if err := s.Scan(&record.ID, &record.InitiativeID, &record.Quarter, &record.Objective, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Create persists a new OKR.
func (r *OKRRepository) Create(ctx context.Context, okr *secondary.OKRRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO okrs (id, initiative_id, quarter, objective) VALUES (?, ?, ?, ?)",
		okr.ID, okr.InitiativeID, okr.Quarter, okr.Objective,
	)
	if err != nil {
		return fmt.Errorf("failed to create okr: %w", err)
	}
	return nil
}

// GetByID retrieves an OKR by its ID.
func (r *OKRRepository) GetByID(ctx context.Context, id string) (*secondary.OKRRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+okrSelectCols+" FROM okrs WHERE id = ?", id)
	record, err := scanOKR(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("okr", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get okr: %w", err)
	}
	return record, nil
}

// List retrieves OKRs matching the given filters.
func (r *OKRRepository) List(ctx context.Context, filters secondary.OKRFilters) ([]*secondary.OKRRecord, error) {
	query := "SELECT " + okrSelectCols + " FROM okrs WHERE 1=1"
	args := []any{}

	if filters.InitiativeID != "" {
		query += " AND initiative_id = ?"
		args = append(args, filters.InitiativeID)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list okrs: %w", err)
	}
	defer rows.Close()

	var okrs []*secondary.OKRRecord
	for rows.Next() {
		record, err := scanOKR(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan okr: %w", err)
		}
		okrs = append(okrs, record)
	}
	return okrs, rows.Err()
}

// Ensure OKRRepository implements the interface
var _ secondary.OKRRepository = (*OKRRepository)(nil)
