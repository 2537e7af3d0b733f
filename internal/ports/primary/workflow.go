package primary

import (
	"context"

	"github.com/example/strata/internal/core/consultation"
)

// WorkflowService defines the primary port for RACI workflow progress.
type WorkflowService interface {
	// GetProgress reports per-assignee status and stats for a workflow's current step.
	GetProgress(ctx context.Context, workflowID string) (*consultation.Progress, error)

	// SubmitRecord stores a consultation record for an assignee.
	SubmitRecord(ctx context.Context, req SubmitRecordRequest) (*SubmitRecordResponse, error)

	// RecordActivity marks partial activity by an assignee.
	RecordActivity(ctx context.Context, workflowID, userID string) error
}

// SubmitRecordRequest contains parameters for submitting a consultation record.
type SubmitRecordRequest struct {
	WorkflowID string
	UserID     string
	Status     string // e.g. approved, rejected, commented
	Comment    string
}

// SubmitRecordResponse contains the result of submitting a consultation record.
type SubmitRecordResponse struct {
	RecordID string `json:"record_id"`
}
