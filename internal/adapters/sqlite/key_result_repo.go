package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// KeyResultRepository implements secondary.KeyResultRepository with SQLite.
type KeyResultRepository struct {
	db *sql.DB
}

// NewKeyResultRepository creates a new SQLite key result repository.
func NewKeyResultRepository(db *sql.DB) *KeyResultRepository {
	return &KeyResultRepository{db: db}
}

const keyResultSelectCols = "id, okr_id, title, kr_type, kpi_id, kpi_baseline_value, kpi_target_value, target_value, current_value, progress_percentage, source_period, last_synced_at, created_at"

func scanKeyResult(s scanner) (*secondary.KeyResultRecord, error) {
	var (
		kpiID        sql.NullString
		baseline     sql.NullFloat64
		kpiTarget    sql.NullFloat64
		target       sql.NullFloat64
		sourcePeriod sql.NullString
		lastSyncedAt sql.NullTime
		createdAt    sql.NullTime
	)
	record := &secondary.KeyResultRecord{}
	err := s.Scan(
		&record.ID, &record.OKRID, &record.Title, &record.KRType, &kpiID,
		&baseline, &kpiTarget, &target, &record.CurrentValue, &record.ProgressPercentage,
		&sourcePeriod, &lastSyncedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	record.KPIID = kpiID.String
	record.KPIBaselineValue = floatPtr(baseline)
	record.KPITargetValue = floatPtr(kpiTarget)
	record.TargetValue = floatPtr(target)
	record.SourcePeriod = sourcePeriod.String
	record.LastSyncedAt = formatTime(lastSyncedAt)
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Create persists a new key result.
func (r *KeyResultRepository) Create(ctx context.Context, kr *secondary.KeyResultRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO key_results (id, okr_id, title, kr_type, kpi_id, kpi_baseline_value, kpi_target_value,
			target_value, current_value, progress_percentage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kr.ID, kr.OKRID, kr.Title, kr.KRType, nullString(kr.KPIID),
		nullFloat(kr.KPIBaselineValue), nullFloat(kr.KPITargetValue), nullFloat(kr.TargetValue),
		kr.CurrentValue, kr.ProgressPercentage,
	)
	if err != nil {
		return fmt.Errorf("failed to create key result: %w", err)
	}
	return nil
}

// GetByID retrieves a key result by its ID.
func (r *KeyResultRepository) GetByID(ctx context.Context, id string) (*secondary.KeyResultRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+keyResultSelectCols+" FROM key_results WHERE id = ?", id)
	record, err := scanKeyResult(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("key result", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key result: %w", err)
	}
	return record, nil
}

// List retrieves key results matching the given filters.
func (r *KeyResultRepository) List(ctx context.Context, filters secondary.KeyResultFilters) ([]*secondary.KeyResultRecord, error) {
	query := "SELECT " + keyResultSelectCols + " FROM key_results WHERE 1=1"
	args := []any{}

	if filters.OKRID != "" {
		query += " AND okr_id = ?"
		args = append(args, filters.OKRID)
	}

	if filters.KPIID != "" {
		query += " AND kpi_id = ?"
		args = append(args, filters.KPIID)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list key results: %w", err)
	}
	defer rows.Close()

	var krs []*secondary.KeyResultRecord
	for rows.Next() {
		record, err := scanKeyResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan key result: %w", err)
		}
		krs = append(krs, record)
	}
	return krs, rows.Err()
}

// UpdateSnapshot stores a sync result and its sync time.
func (r *KeyResultRepository) UpdateSnapshot(ctx context.Context, id string, current, progress float64, sourcePeriod, syncedAt string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE key_results
		SET current_value = ?, progress_percentage = ?, source_period = ?, last_synced_at = ?
		WHERE id = ? AND kr_type = 'kpi_based'`,
		current, progress, nullString(sourcePeriod), nullString(syncedAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update key result snapshot: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.NotFound("kpi_based key result", id)
	}
	return nil
}

// UpdateCurrent stores a manual current value for a custom key result.
func (r *KeyResultRepository) UpdateCurrent(ctx context.Context, id string, current, progress float64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE key_results SET current_value = ?, progress_percentage = ? WHERE id = ? AND kr_type = 'custom'",
		current, progress, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update key result: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.NotFound("custom key result", id)
	}
	return nil
}

// CountByOKR returns the number of key results owned by an OKR.
func (r *KeyResultRepository) CountByOKR(ctx context.Context, okrID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM key_results WHERE okr_id = ?", okrID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count key results: %w", err)
	}
	return count, nil
}

// GetNextID returns the next available key result ID.
func (r *KeyResultRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 4) AS INTEGER)), 0) FROM key_results WHERE id LIKE 'KR-%'",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next key result ID: %w", err)
	}
	return fmt.Sprintf("KR-%03d", maxID+1), nil
}

// Ensure KeyResultRepository implements the interface
var _ secondary.KeyResultRepository = (*KeyResultRepository)(nil)
