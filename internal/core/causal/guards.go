package causal

import "fmt"

// LinkContext provides context for link creation guards.
// Populated by the caller with pre-fetched existence checks.
type LinkContext struct {
	FromID      string
	ToID        string
	FromExists  bool
	ToExists    bool
	LinkExists  bool // an identical from -> to link is already stored
	ClosesCycle bool // to already reaches from through existing links
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // populated when not allowed
	Warning string // populated when allowed with a caveat
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanLink evaluates whether a causal link can be created.
// Rules: no self-loops, both objectives must exist, no duplicate edge.
// A link that closes a cycle is allowed with a warning.
func CanLink(ctx LinkContext) GuardResult {
	if ctx.FromID == ctx.ToID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Cannot link objective %s to itself", ctx.FromID),
		}
	}
	if !ctx.FromExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Objective %s not found", ctx.FromID),
		}
	}
	if !ctx.ToExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Objective %s not found", ctx.ToID),
		}
	}
	if ctx.LinkExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Objective %s is already linked to %s", ctx.FromID, ctx.ToID),
		}
	}
	if ctx.ClosesCycle {
		return GuardResult{
			Allowed: true,
			Warning: fmt.Sprintf("Linking %s → %s closes a causal cycle; traversals will truncate it", ctx.FromID, ctx.ToID),
		}
	}
	return GuardResult{Allowed: true}
}
