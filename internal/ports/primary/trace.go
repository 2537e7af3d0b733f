package primary

import (
	"context"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/core/trace"
)

// TraceService defines the primary port for traceability queries.
type TraceService interface {
	// TraceUp resolves the path from a task to the objectives it serves.
	TraceUp(ctx context.Context, taskID string, opts TraceOptions) (*TraceResult, error)

	// TraceDown resolves the work beneath a KPI.
	TraceDown(ctx context.Context, kpiID string, opts TraceOptions) (*TraceResult, error)

	// TraceObjective resolves the drivers of an objective and the work beneath them.
	TraceObjective(ctx context.Context, objectiveID string, opts TraceOptions) (*TraceResult, error)
}

// TraceOptions controls how much of a path is returned.
type TraceOptions struct {
	// Hops keeps only the last N depth layers; 0 keeps all.
	Hops int
}

// TraceResult is a resolved trace path.
type TraceResult struct {
	Direction string                `json:"direction"`
	RootType  string                `json:"root_type"`
	RootID    string                `json:"root_id"`
	Nodes     []trace.Node          `json:"nodes"`
	Hidden    int                   `json:"hidden"`
	Warnings  []causal.CycleWarning `json:"warnings,omitempty"`
}
