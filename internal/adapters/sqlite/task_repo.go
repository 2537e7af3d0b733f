package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// scanTask scans a task row into a TaskRecord.
func scanTask(s scanner) (*secondary.TaskRecord, error) {
	var (
		keyResultID sql.NullString
		kpiID       sql.NullString
		createdAt   sql.NullTime
	)

	record := &secondary.TaskRecord{}
	err := s.Scan(&record.ID, &record.Title, &record.Status, &keyResultID, &kpiID, &createdAt)
	if err != nil {
		return nil, err
	}

	record.KeyResultID = keyResultID.String
	record.KPIID = kpiID.String
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

const taskSelectCols = "id, title, status, key_result_id, kpi_id, created_at"

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	status := task.Status
	if status == "" {
		status = "todo"
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (id, title, status, key_result_id, kpi_id) VALUES (?, ?, ?, ?, ?)",
		task.ID, task.Title, status, nullString(task.KeyResultID), nullString(task.KPIID),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE id = ?",
		id,
	)

	record, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return record, nil
}

// List retrieves tasks matching the given filters.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskSelectCols + " FROM tasks WHERE 1=1"
	args := []any{}

	if filters.KeyResultID != "" {
		query += " AND key_result_id = ?"
		args = append(args, filters.KeyResultID)
	}

	if filters.KPIID != "" {
		query += " AND kpi_id = ?"
		args = append(args, filters.KPIID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}

	return tasks, rows.Err()
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
