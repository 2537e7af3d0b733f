package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/strata/internal/ports/primary"
)

// WorkflowAdapter translates CLI operations to WorkflowService calls.
type WorkflowAdapter struct {
	service primary.WorkflowService
	out     io.Writer
}

// NewWorkflowAdapter creates a new WorkflowAdapter with the given service.
func NewWorkflowAdapter(service primary.WorkflowService, out io.Writer) *WorkflowAdapter {
	return &WorkflowAdapter{service: service, out: out}
}

// Progress prints per-assignee status for a workflow's current step.
func (a *WorkflowAdapter) Progress(ctx context.Context, workflowID string) error {
	p, err := a.service.GetProgress(ctx, workflowID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s %s\n", bold.Sprint(p.WorkflowID), p.Name)
	fmt.Fprintf(a.out, "Step:     %s (day %d", p.StepName, p.DaysElapsed)
	if p.Deadline != nil {
		fmt.Fprintf(a.out, " of %d, due %s", p.SLADays, p.Deadline.Format("2006-01-02"))
	}
	fmt.Fprintln(a.out, ")")

	if len(p.Assignees) == 0 {
		fmt.Fprintln(a.out, "No assignees")
		return nil
	}
	fmt.Fprintf(a.out, "\n%-10s %-4s %-11s %-5s %s\n", "USER", "ROLE", "STATUS", "DAYS", "NAME")
	fmt.Fprintln(a.out, rule)
	for _, as := range p.Assignees {
		name := as.Name
		if !as.Counted {
			name += gray.Sprint(" (not counted)")
		}
		fmt.Fprintf(a.out, "%-10s %-4s %s %-5d %s\n", as.UserID, as.Role, assigneeLabel(as.Status), as.DaysElapsed, name)
	}
	st := p.Stats
	fmt.Fprintln(a.out, rule)
	fmt.Fprintf(a.out, "%d/%d completed (%.0f%%) · %d in progress · %d pending · %d overdue\n\n",
		st.Completed, st.Total, st.CompletionRate, st.InProgress, st.Pending, st.Overdue)
	return nil
}

// Consult submits a consultation record.
func (a *WorkflowAdapter) Consult(ctx context.Context, req primary.SubmitRecordRequest) error {
	resp, err := a.service.SubmitRecord(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Recorded %s for %s on %s\n", resp.RecordID, req.UserID, req.WorkflowID)
	return nil
}

// Activity marks partial activity by an assignee.
func (a *WorkflowAdapter) Activity(ctx context.Context, workflowID, userID string) error {
	if err := a.service.RecordActivity(ctx, workflowID, userID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Activity recorded for %s on %s\n", userID, workflowID)
	return nil
}
