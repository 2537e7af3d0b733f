package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// WorkflowRepository implements secondary.WorkflowRepository with SQLite.
type WorkflowRepository struct {
	db *sql.DB
}

// NewWorkflowRepository creates a new SQLite workflow repository.
func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

const (
	workflowSelectCols     = "id, template_id, name, step_name, step_started_at, sla_days, created_at"
	assigneeSelectCols     = "workflow_id, user_id, name, role, assigned_at, last_activity_at"
	consultationSelectCols = "id, workflow_id, user_id, status, comment, submitted_at"
)

func scanWorkflow(s scanner) (*secondary.WorkflowRecord, error) {
	var (
		templateID sql.NullString
		startedAt  sql.NullTime
		createdAt  sql.NullTime
	)
	record := &secondary.WorkflowRecord{}
	err := s.Scan(&record.ID, &templateID, &record.Name, &record.StepName, &startedAt, &record.SLADays, &createdAt)
	if err != nil {
		return nil, err
	}
	record.TemplateID = templateID.String
	record.StepStartedAt = formatTime(startedAt)
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

func scanAssignee(s scanner) (*secondary.AssigneeRecord, error) {
	var assignedAt, activityAt sql.NullTime
	record := &secondary.AssigneeRecord{}
	err := s.Scan(&record.WorkflowID, &record.UserID, &record.Name, &record.Role, &assignedAt, &activityAt)
	if err != nil {
		return nil, err
	}
	record.AssignedAt = formatTime(assignedAt)
	record.LastActivityAt = formatTime(activityAt)
	return record, nil
}

func scanConsultation(s scanner) (*secondary.ConsultationRecord, error) {
	var (
		comment     sql.NullString
		submittedAt sql.NullTime
	)
	record := &secondary.ConsultationRecord{}
	err := s.Scan(&record.ID, &record.WorkflowID, &record.UserID, &record.Status, &comment, &submittedAt)
	if err != nil {
		return nil, err
	}
	record.Comment = comment.String
	record.SubmittedAt = formatTime(submittedAt)
	return record, nil
}

// Create persists a new workflow.
func (r *WorkflowRepository) Create(ctx context.Context, wf *secondary.WorkflowRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO raci_workflows (id, template_id, name, step_name, step_started_at, sla_days)
		VALUES (?, ?, ?, ?, ?, ?)`,
		wf.ID, nullString(wf.TemplateID), wf.Name, wf.StepName, wf.StepStartedAt, wf.SLADays,
	)
	if err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

// GetByID retrieves a workflow by its ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*secondary.WorkflowRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+workflowSelectCols+" FROM raci_workflows WHERE id = ?", id)
	record, err := scanWorkflow(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("workflow", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return record, nil
}

// List retrieves all workflows.
func (r *WorkflowRepository) List(ctx context.Context) ([]*secondary.WorkflowRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+workflowSelectCols+" FROM raci_workflows ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*secondary.WorkflowRecord
	for rows.Next() {
		record, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, record)
	}
	return workflows, rows.Err()
}

// AddAssignee adds a participant to the workflow's current step.
func (r *WorkflowRepository) AddAssignee(ctx context.Context, a *secondary.AssigneeRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO raci_assignees (workflow_id, user_id, name, role, assigned_at, last_activity_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.WorkflowID, a.UserID, a.Name, a.Role, nullString(a.AssignedAt), nullString(a.LastActivityAt),
	)
	if err != nil {
		return fmt.Errorf("failed to add assignee: %w", err)
	}
	return nil
}

// ListAssignees retrieves a workflow's assignees.
func (r *WorkflowRepository) ListAssignees(ctx context.Context, workflowID string) ([]*secondary.AssigneeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+assigneeSelectCols+" FROM raci_assignees WHERE workflow_id = ? ORDER BY rowid ASC",
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	defer rows.Close()

	var assignees []*secondary.AssigneeRecord
	for rows.Next() {
		record, err := scanAssignee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignee: %w", err)
		}
		assignees = append(assignees, record)
	}
	return assignees, rows.Err()
}

// TouchAssignee records partial activity by an assignee.
func (r *WorkflowRepository) TouchAssignee(ctx context.Context, workflowID, userID, at string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE raci_assignees SET last_activity_at = ? WHERE workflow_id = ? AND user_id = ?",
		at, workflowID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch assignee: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.NotFound("assignee", workflowID+"/"+userID)
	}
	return nil
}

// CreateRecord persists a consultation record.
func (r *WorkflowRepository) CreateRecord(ctx context.Context, record *secondary.ConsultationRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO consultation_records (id, workflow_id, user_id, status, comment, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.WorkflowID, record.UserID, record.Status, nullString(record.Comment), record.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation record: %w", err)
	}
	return nil
}

// ListRecords retrieves a workflow's consultation records, oldest first.
func (r *WorkflowRepository) ListRecords(ctx context.Context, workflowID string) ([]*secondary.ConsultationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+consultationSelectCols+" FROM consultation_records WHERE workflow_id = ? ORDER BY submitted_at ASC, rowid ASC",
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultation records: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ConsultationRecord
	for rows.Next() {
		record, err := scanConsultation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consultation record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Ensure WorkflowRepository implements the interface
var _ secondary.WorkflowRepository = (*WorkflowRepository)(nil)
