package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// KPIRepository implements secondary.KPIRepository with SQLite.
type KPIRepository struct {
	db *sql.DB
}

// NewKPIRepository creates a new SQLite KPI repository.
func NewKPIRepository(db *sql.DB) *KPIRepository {
	return &KPIRepository{db: db}
}

const (
	kpiSelectCols       = "id, name, unit, target_value, created_at"
	kpiValueSelectCols  = "kpi_id, period, value, target_value, is_manual_exception, exception_reason, recorded_at"
	thresholdSelectCols = "kpi_id, version, mode, effective_from, green_min, green_max, yellow_min, yellow_max, red_min, red_max, created_at"
)

func scanKPI(s scanner) (*secondary.KPIRecord, error) {
	var (
		unit      sql.NullString
		createdAt sql.NullTime
	)
	record := &secondary.KPIRecord{}
	if err := s.Scan(&record.ID, &record.Name, &unit, &record.TargetValue, &createdAt); err != nil {
		return nil, err
	}
	record.Unit = unit.String
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

func scanKPIValue(s scanner) (*secondary.KPIValueRecord, error) {
	var (
		target     sql.NullFloat64
		reason     sql.NullString
		recordedAt sql.NullTime
	)
	record := &secondary.KPIValueRecord{}
	err := s.Scan(&record.KPIID, &record.Period, &record.Value, &target,
		&record.IsException, &reason, &recordedAt)
	if err != nil {
		return nil, err
	}
	record.TargetValue = target.Float64
	record.ExceptionReason = reason.String
	record.RecordedAt = formatTime(recordedAt)
	return record, nil
}

func scanThreshold(s scanner) (*secondary.ThresholdRecord, error) {
	var (
		effectiveFrom sql.NullString
		gMin, gMax    sql.NullFloat64
		yMin, yMax    sql.NullFloat64
		rMin, rMax    sql.NullFloat64
		createdAt     sql.NullTime
	)
	record := &secondary.ThresholdRecord{}
	err := s.Scan(&record.KPIID, &record.Version, &record.Mode, &effectiveFrom,
		&gMin, &gMax, &yMin, &yMax, &rMin, &rMax, &createdAt)
	if err != nil {
		return nil, err
	}
	record.EffectiveFrom = effectiveFrom.String
	record.GreenMin, record.GreenMax = floatPtr(gMin), floatPtr(gMax)
	record.YellowMin, record.YellowMax = floatPtr(yMin), floatPtr(yMax)
	record.RedMin, record.RedMax = floatPtr(rMin), floatPtr(rMax)
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Create persists a new KPI.
func (r *KPIRepository) Create(ctx context.Context, kpi *secondary.KPIRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO kpis (id, name, unit, target_value) VALUES (?, ?, ?, ?)",
		kpi.ID, kpi.Name, nullString(kpi.Unit), kpi.TargetValue,
	)
	if err != nil {
		return fmt.Errorf("failed to create kpi: %w", err)
	}
	return nil
}

// GetByID retrieves a KPI by its ID.
func (r *KPIRepository) GetByID(ctx context.Context, id string) (*secondary.KPIRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+kpiSelectCols+" FROM kpis WHERE id = ?", id)
	record, err := scanKPI(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("kpi", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kpi: %w", err)
	}
	return record, nil
}

// List retrieves all KPIs.
func (r *KPIRepository) List(ctx context.Context) ([]*secondary.KPIRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+kpiSelectCols+" FROM kpis ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list kpis: %w", err)
	}
	defer rows.Close()

	var kpis []*secondary.KPIRecord
	for rows.Next() {
		record, err := scanKPI(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kpi: %w", err)
		}
		kpis = append(kpis, record)
	}
	return kpis, rows.Err()
}

// ListValues retrieves a KPI's value history ordered by period, oldest first.
func (r *KPIRepository) ListValues(ctx context.Context, kpiID string) ([]*secondary.KPIValueRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+kpiValueSelectCols+" FROM kpi_values WHERE kpi_id = ? ORDER BY period ASC",
		kpiID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list kpi values: %w", err)
	}
	defer rows.Close()

	var values []*secondary.KPIValueRecord
	for rows.Next() {
		record, err := scanKPIValue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kpi value: %w", err)
		}
		values = append(values, record)
	}
	return values, rows.Err()
}

// GetValue retrieves one period of a KPI's history.
func (r *KPIRepository) GetValue(ctx context.Context, kpiID, period string) (*secondary.KPIValueRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+kpiValueSelectCols+" FROM kpi_values WHERE kpi_id = ? AND period = ?",
		kpiID, period,
	)
	record, err := scanKPIValue(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("kpi value", kpiID+"/"+period)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kpi value: %w", err)
	}
	return record, nil
}

// AppendValue stores a new period value. Existing periods are never overwritten.
func (r *KPIRepository) AppendValue(ctx context.Context, value *secondary.KPIValueRecord) error {
	var target sql.NullFloat64
	if value.TargetValue != 0 {
		target = sql.NullFloat64{Float64: value.TargetValue, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kpi_values (kpi_id, period, value, target_value, is_manual_exception, exception_reason)
		VALUES (?, ?, ?, ?, ?, ?)`,
		value.KPIID, value.Period, value.Value, target, value.IsException, nullString(value.ExceptionReason),
	)
	if err != nil {
		return fmt.Errorf("failed to append kpi value: %w", err)
	}
	return nil
}

// SetMark toggles the manual-exception mark of one value row.
func (r *KPIRepository) SetMark(ctx context.Context, kpiID, period string, exception bool, reason string) error {
	if !exception {
		reason = ""
	}
	result, err := r.db.ExecContext(ctx,
		"UPDATE kpi_values SET is_manual_exception = ?, exception_reason = ? WHERE kpi_id = ? AND period = ?",
		exception, nullString(reason), kpiID, period,
	)
	if err != nil {
		return fmt.Errorf("failed to set kpi value mark: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.NotFound("kpi value", kpiID+"/"+period)
	}
	return nil
}

// ListThresholds retrieves a KPI's threshold versions ordered by version.
func (r *KPIRepository) ListThresholds(ctx context.Context, kpiID string) ([]*secondary.ThresholdRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+thresholdSelectCols+" FROM kpi_thresholds WHERE kpi_id = ? ORDER BY version ASC",
		kpiID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list thresholds: %w", err)
	}
	defer rows.Close()

	var thresholds []*secondary.ThresholdRecord
	for rows.Next() {
		record, err := scanThreshold(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan threshold: %w", err)
		}
		thresholds = append(thresholds, record)
	}
	return thresholds, rows.Err()
}

// AddThreshold stores a new threshold version.
func (r *KPIRepository) AddThreshold(ctx context.Context, t *secondary.ThresholdRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kpi_thresholds (kpi_id, version, mode, effective_from,
			green_min, green_max, yellow_min, yellow_max, red_min, red_max)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.KPIID, t.Version, t.Mode, nullString(t.EffectiveFrom),
		nullFloat(t.GreenMin), nullFloat(t.GreenMax),
		nullFloat(t.YellowMin), nullFloat(t.YellowMax),
		nullFloat(t.RedMin), nullFloat(t.RedMax),
	)
	if err != nil {
		return fmt.Errorf("failed to add threshold: %w", err)
	}
	return nil
}

// LinkObjective records that a KPI measures an objective.
func (r *KPIRepository) LinkObjective(ctx context.Context, kpiID, objectiveID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO kpi_objectives (kpi_id, objective_id) VALUES (?, ?)",
		kpiID, objectiveID,
	)
	if err != nil {
		return fmt.Errorf("failed to link kpi to objective: %w", err)
	}
	return nil
}

// ListObjectivePairs retrieves every (kpi, objective) pair.
func (r *KPIRepository) ListObjectivePairs(ctx context.Context) ([]secondary.PairRecord, error) {
	return listPairs(ctx, r.db, "SELECT kpi_id, objective_id FROM kpi_objectives ORDER BY rowid ASC")
}

func listPairs(ctx context.Context, db *sql.DB, query string) ([]secondary.PairRecord, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	defer rows.Close()

	var pairs []secondary.PairRecord
	for rows.Next() {
		var p secondary.PairRecord
		if err := rows.Scan(&p.Left, &p.Right); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// Ensure KPIRepository implements the interface
var _ secondary.KPIRepository = (*KPIRepository)(nil)
