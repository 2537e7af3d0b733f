package keyresult

import "fmt"

// AddContext provides context for adding a key result to an OKR.
type AddContext struct {
	OKRID         string
	OKRExists     bool
	ExistingCount int
}

// UpdateContext provides context for a manual current-value update.
type UpdateContext struct {
	KeyResultID string
	Type        Type
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

// CanAddKeyResult evaluates whether an OKR can take another key result.
// Rule: an OKR owns at most MaxPerOKR key results.
func CanAddKeyResult(ctx AddContext) GuardResult {
	if !ctx.OKRExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("OKR %s not found", ctx.OKRID),
		}
	}
	if ctx.ExistingCount >= MaxPerOKR {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("OKR %s already has %d key results (max %d)", ctx.OKRID, ctx.ExistingCount, MaxPerOKR),
		}
	}
	return GuardResult{Allowed: true}
}

// CanUpdateManually evaluates whether a key result's current value can be set by hand.
// Rule: kpi_based results are only updated by sync.
func CanUpdateManually(ctx UpdateContext) GuardResult {
	if ctx.Type == TypeKPIBased {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Key result %s is kpi_based; its value comes from sync. Run: strata kr sync %s", ctx.KeyResultID, ctx.KeyResultID),
		}
	}
	return GuardResult{Allowed: true}
}
