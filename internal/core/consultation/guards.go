package consultation

import "fmt"

// ConsultContext provides context for submitting a consultation record.
// Populated by the caller with the pre-fetched workflow.
type ConsultContext struct {
	WorkflowID       string
	UserID           string
	IsAssignee       bool
	Role             Role
	AlreadySubmitted bool // a record already exists for this user
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanSubmitRecord evaluates whether a user can submit a consultation record.
// Rules: the user must be assigned to the step, must not be Informed-only,
// and may submit once per step.
func CanSubmitRecord(ctx ConsultContext) GuardResult {
	if !ctx.IsAssignee {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("User %s is not assigned to workflow %s", ctx.UserID, ctx.WorkflowID),
		}
	}
	if ctx.Role == RoleInformed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("User %s is only informed on workflow %s and does not submit records", ctx.UserID, ctx.WorkflowID),
		}
	}
	if ctx.AlreadySubmitted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("User %s already submitted a record for workflow %s", ctx.UserID, ctx.WorkflowID),
		}
	}
	return GuardResult{Allowed: true}
}
