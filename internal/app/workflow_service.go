package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/strata/internal/core/consultation"
	"github.com/example/strata/internal/core/effects"
	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ctxutil"
	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/ports/secondary"
)

// WorkflowServiceImpl implements the WorkflowService interface.
type WorkflowServiceImpl struct {
	workflowRepo secondary.WorkflowRepository
	executor     EffectExecutor
	opts         consultation.Options
	logger       *slog.Logger
	clock        func() time.Time
	newID        func() string
}

// NewWorkflowService creates a new WorkflowService with injected dependencies.
func NewWorkflowService(
	workflowRepo secondary.WorkflowRepository,
	executor EffectExecutor,
	opts consultation.Options,
	logger *slog.Logger,
) *WorkflowServiceImpl {
	return &WorkflowServiceImpl{
		workflowRepo: workflowRepo,
		executor:     executor,
		opts:         opts,
		logger:       orDefault(logger),
		clock:        time.Now,
		newID:        func() string { return "REC-" + uuid.NewString() },
	}
}

// GetProgress reports per-assignee status and stats for a workflow's current step.
func (s *WorkflowServiceImpl) GetProgress(ctx context.Context, workflowID string) (*consultation.Progress, error) {
	wf, err := s.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	progress := consultation.ComputeProgress(wf, s.clock(), s.opts)
	return &progress, nil
}

// SubmitRecord stores a consultation record for an assignee of the current step.
func (s *WorkflowServiceImpl) SubmitRecord(ctx context.Context, req primary.SubmitRecordRequest) (*primary.SubmitRecordResponse, error) {
	wf, err := s.load(ctx, req.WorkflowID)
	if err != nil {
		return nil, err
	}

	guardCtx := consultation.ConsultContext{WorkflowID: wf.ID, UserID: req.UserID}
	for _, a := range wf.Assignees {
		if a.UserID == req.UserID {
			guardCtx.IsAssignee = true
			guardCtx.Role = a.Role
		}
	}
	for _, r := range wf.Records {
		if r.UserID == req.UserID {
			guardCtx.AlreadySubmitted = true
		}
	}
	if guard := consultation.CanSubmitRecord(guardCtx); !guard.Allowed {
		return nil, errs.InvalidState("workflow", wf.ID, guard.Reason, nil)
	}

	status := req.Status
	if status == "" {
		status = "approved"
	}
	recordID := s.newID()
	effs := []effects.Effect{
		effects.ConsultationRecordEffect{
			RecordID:    recordID,
			WorkflowID:  wf.ID,
			UserID:      req.UserID,
			Status:      status,
			Comment:     req.Comment,
			SubmittedAt: s.clock(),
		},
		effects.LogEffect{
			Level:   "info",
			Message: "consultation record submitted",
			Fields: map[string]any{
				"workflow_id": wf.ID,
				"user_id":     req.UserID,
				"record_id":   recordID,
				"status":      status,
			},
		},
	}
	if err := s.executor.Execute(ctx, effs); err != nil {
		return nil, err
	}
	return &primary.SubmitRecordResponse{RecordID: recordID}, nil
}

// RecordActivity marks partial activity by an assignee.
func (s *WorkflowServiceImpl) RecordActivity(ctx context.Context, workflowID, userID string) error {
	if err := s.workflowRepo.TouchAssignee(ctx, workflowID, userID, formatTimestamp(s.clock())); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "assignee activity recorded",
		append(ctxutil.LogAttrs(ctx), "workflow_id", workflowID, "user_id", userID)...)
	return nil
}

func (s *WorkflowServiceImpl) load(ctx context.Context, workflowID string) (consultation.Workflow, error) {
	wf, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return consultation.Workflow{}, err
	}
	assignees, err := s.workflowRepo.ListAssignees(ctx, workflowID)
	if err != nil {
		return consultation.Workflow{}, err
	}
	records, err := s.workflowRepo.ListRecords(ctx, workflowID)
	if err != nil {
		return consultation.Workflow{}, err
	}
	return toWorkflow(wf, assignees, records)
}

// Ensure WorkflowServiceImpl implements the interface.
var _ primary.WorkflowService = (*WorkflowServiceImpl)(nil)
