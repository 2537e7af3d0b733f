package primary

import (
	"context"

	"github.com/example/strata/internal/core/threshold"
)

// KPIService defines the primary port for KPI status operations.
type KPIService interface {
	// GetStatus evaluates a KPI's latest period.
	GetStatus(ctx context.Context, kpiID string) (*KPIStatus, error)

	// ListStatuses evaluates every KPI and rolls the results up.
	ListStatuses(ctx context.Context) (*KPIStatusReport, error)

	// GetHistory evaluates every recorded period of a KPI.
	GetHistory(ctx context.Context, kpiID string) (*KPIHistory, error)

	// RecordValue appends a period value to a KPI.
	RecordValue(ctx context.Context, req RecordValueRequest) error

	// SetException flags or clears the manual-exception mark of a period.
	SetException(ctx context.Context, req SetExceptionRequest) error
}

// KPIStatus is a KPI together with its latest evaluation.
type KPIStatus struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Unit       string               `json:"unit,omitempty"`
	Evaluation threshold.Evaluation `json:"evaluation"`
}

// KPIStatusReport is the evaluation of every KPI.
type KPIStatusReport struct {
	KPIs   []*KPIStatus     `json:"kpis"`
	Rollup threshold.Rollup `json:"rollup"`
}

// KPIHistory is the per-period evaluation of one KPI.
type KPIHistory struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Unit    string                 `json:"unit,omitempty"`
	Periods []threshold.Evaluation `json:"periods"`
	Rollup  threshold.Rollup       `json:"rollup"`
}

// RecordValueRequest contains parameters for recording a KPI value.
type RecordValueRequest struct {
	KPIID       string
	Period      string
	Value       float64
	TargetValue float64 // 0 means "use the KPI target"
}

// SetExceptionRequest contains parameters for toggling a manual exception.
type SetExceptionRequest struct {
	KPIID     string
	Period    string
	Exception bool
	Reason    string
}
