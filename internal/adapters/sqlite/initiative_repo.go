package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// InitiativeRepository implements secondary.InitiativeRepository with SQLite.
type InitiativeRepository struct {
	db *sql.DB
}

// NewInitiativeRepository creates a new SQLite initiative repository.
func NewInitiativeRepository(db *sql.DB) *InitiativeRepository {
	return &InitiativeRepository{db: db}
}

const initiativeSelectCols = "id, name, status, created_at"

func scanInitiative(s scanner) (*secondary.InitiativeRecord, error) {
	var createdAt sql.NullTime
	record := &secondary.InitiativeRecord{}
	if err := s.Scan(&record.ID, &record.Name, &record.Status, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Create persists a new initiative.
func (r *InitiativeRepository) Create(ctx context.Context, initiative *secondary.InitiativeRecord) error {
	status := initiative.Status
	if status == "" {
		status = "planned"
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO initiatives (id, name, status) VALUES (?, ?, ?)",
		initiative.ID, initiative.Name, status,
	)
	if err != nil {
		return fmt.Errorf("failed to create initiative: %w", err)
	}
	return nil
}

// GetByID retrieves an initiative by its ID.
func (r *InitiativeRepository) GetByID(ctx context.Context, id string) (*secondary.InitiativeRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+initiativeSelectCols+" FROM initiatives WHERE id = ?", id)
	record, err := scanInitiative(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("initiative", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get initiative: %w", err)
	}
	return record, nil
}

// List retrieves all initiatives.
func (r *InitiativeRepository) List(ctx context.Context) ([]*secondary.InitiativeRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+initiativeSelectCols+" FROM initiatives ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list initiatives: %w", err)
	}
	defer rows.Close()

	var initiatives []*secondary.InitiativeRecord
	for rows.Next() {
		record, err := scanInitiative(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan initiative: %w", err)
		}
		initiatives = append(initiatives, record)
	}
	return initiatives, rows.Err()
}

// LinkKPI records that an initiative references a KPI.
func (r *InitiativeRepository) LinkKPI(ctx context.Context, initiativeID, kpiID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO initiative_kpis (initiative_id, kpi_id) VALUES (?, ?)",
		initiativeID, kpiID,
	)
	if err != nil {
		return fmt.Errorf("failed to link initiative to kpi: %w", err)
	}
	return nil
}

// LinkObjective records that an initiative serves an objective directly.
func (r *InitiativeRepository) LinkObjective(ctx context.Context, initiativeID, objectiveID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO initiative_objectives (initiative_id, objective_id) VALUES (?, ?)",
		initiativeID, objectiveID,
	)
	if err != nil {
		return fmt.Errorf("failed to link initiative to objective: %w", err)
	}
	return nil
}

// ListKPIPairs retrieves every (initiative, kpi) pair.
func (r *InitiativeRepository) ListKPIPairs(ctx context.Context) ([]secondary.PairRecord, error) {
	return listPairs(ctx, r.db, "SELECT initiative_id, kpi_id FROM initiative_kpis ORDER BY rowid ASC")
}

// ListObjectivePairs retrieves every (initiative, objective) pair.
func (r *InitiativeRepository) ListObjectivePairs(ctx context.Context) ([]secondary.PairRecord, error) {
	return listPairs(ctx, r.db, "SELECT initiative_id, objective_id FROM initiative_objectives ORDER BY rowid ASC")
}

// Ensure InitiativeRepository implements the interface
var _ secondary.InitiativeRepository = (*InitiativeRepository)(nil)
