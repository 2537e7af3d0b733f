package threshold

import (
	"fmt"

	"github.com/example/strata/internal/core/effects"
)

// MarkPlanInput contains pre-fetched data for toggling a value's mark.
type MarkPlanInput struct {
	KPIID     string
	Period    string
	Current   Mark
	Exception bool
	Reason    string
}

// MarkGuardResult represents the outcome of the mark guard.
type MarkGuardResult struct {
	Allowed bool
	Reason  string
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r MarkGuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanSetException evaluates whether a value can be flagged as a manual exception.
// Rule: flagging requires a reason; clearing does not.
func CanSetException(input MarkPlanInput) MarkGuardResult {
	if input.Exception && input.Reason == "" {
		return MarkGuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("A reason is required to flag %s %s as an exception. Use --reason", input.KPIID, input.Period),
		}
	}
	return MarkGuardResult{Allowed: true}
}

// GenerateMarkPlan plans the mark toggle. Setting a mark that is already in
// place yields no write.
// This is a pure function - all input data must be pre-fetched.
func GenerateMarkPlan(input MarkPlanInput) []effects.Effect {
	var next Mark = Normal{}
	if input.Exception {
		next = ManualException{Reason: input.Reason}
	}
	if sameMark(input.Current, next) {
		return []effects.Effect{effects.NoEffect{}}
	}

	msg := fmt.Sprintf("cleared exception on %s %s", input.KPIID, input.Period)
	if input.Exception {
		msg = fmt.Sprintf("flagged %s %s as exception", input.KPIID, input.Period)
	}
	return []effects.Effect{
		effects.ValueMarkEffect{
			KPIID:     input.KPIID,
			Period:    input.Period,
			Exception: input.Exception,
			Reason:    input.Reason,
		},
		effects.LogEffect{
			Level:   "info",
			Message: msg,
			Fields: map[string]any{
				"kpi_id": input.KPIID,
				"period": input.Period,
				"reason": input.Reason,
			},
		},
	}
}

func sameMark(a, b Mark) bool {
	ea, aok := a.(ManualException)
	eb, bok := b.(ManualException)
	if aok != bok {
		return false
	}
	return !aok || ea.Reason == eb.Reason
}
