package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// ObjectiveRepository implements secondary.ObjectiveRepository with SQLite.
type ObjectiveRepository struct {
	db *sql.DB
}

// NewObjectiveRepository creates a new SQLite objective repository.
func NewObjectiveRepository(db *sql.DB) *ObjectiveRepository {
	return &ObjectiveRepository{db: db}
}

const objectiveSelectCols = "id, name, perspective, description, created_at"

func scanObjective(s scanner) (*secondary.ObjectiveRecord, error) {
	var (
		desc      sql.NullString
		createdAt sql.NullTime
	)
	record := &secondary.ObjectiveRecord{}
	if err := s.Scan(&record.ID, &record.Name, &record.Perspective, &desc, &createdAt); err != nil {
		return nil, err
	}
	record.Description = desc.String
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Create persists a new objective.
func (r *ObjectiveRepository) Create(ctx context.Context, objective *secondary.ObjectiveRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO objectives (id, name, perspective, description) VALUES (?, ?, ?, ?)",
		objective.ID, objective.Name, objective.Perspective, nullString(objective.Description),
	)
	if err != nil {
		return fmt.Errorf("failed to create objective: %w", err)
	}
	return nil
}

// GetByID retrieves an objective by its ID.
func (r *ObjectiveRepository) GetByID(ctx context.Context, id string) (*secondary.ObjectiveRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+objectiveSelectCols+" FROM objectives WHERE id = ?", id)
	record, err := scanObjective(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("objective", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get objective: %w", err)
	}
	return record, nil
}

// List retrieves all objectives in creation order.
func (r *ObjectiveRepository) List(ctx context.Context) ([]*secondary.ObjectiveRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+objectiveSelectCols+" FROM objectives ORDER BY rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list objectives: %w", err)
	}
	defer rows.Close()

	var objectives []*secondary.ObjectiveRecord
	for rows.Next() {
		record, err := scanObjective(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan objective: %w", err)
		}
		objectives = append(objectives, record)
	}
	return objectives, rows.Err()
}

// Ensure ObjectiveRepository implements the interface
var _ secondary.ObjectiveRepository = (*ObjectiveRepository)(nil)
