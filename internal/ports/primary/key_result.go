package primary

import "context"

// KeyResultService defines the primary port for key result and OKR operations.
type KeyResultService interface {
	// SyncKeyResult recomputes a kpi_based key result from its KPI and stores the snapshot.
	SyncKeyResult(ctx context.Context, keyResultID string) (*SyncResponse, error)

	// UpdateKeyResult sets the current value of a custom key result.
	UpdateKeyResult(ctx context.Context, req UpdateKeyResultRequest) (*KeyResult, error)

	// AddKeyResult creates a key result under an OKR.
	AddKeyResult(ctx context.Context, req AddKeyResultRequest) (*KeyResult, error)

	// GetOKR retrieves an OKR with its key results, optionally syncing the kpi_based ones first.
	GetOKR(ctx context.Context, okrID string, opts GetOKROptions) (*OKR, error)
}

// SyncResponse contains the result of syncing a key result.
type SyncResponse struct {
	KeyResultID  string  `json:"key_result_id"`
	KPIID        string  `json:"kpi_id"`
	CurrentValue float64 `json:"current_value"`
	Progress     float64 `json:"progress_percentage"`
	SourcePeriod string  `json:"source_period,omitempty"`
	UsedBaseline bool    `json:"used_baseline"`
	Changed      bool    `json:"changed"`
	LastSyncedAt string  `json:"last_synced_at"`
}

// UpdateKeyResultRequest contains parameters for a manual key result update.
type UpdateKeyResultRequest struct {
	KeyResultID  string
	CurrentValue float64
}

// AddKeyResultRequest contains parameters for creating a key result.
// kpi_based requests set KPIID, Baseline and KPITarget; custom requests set Target.
type AddKeyResultRequest struct {
	OKRID     string
	Title     string
	Type      string
	KPIID     string
	Baseline  *float64
	KPITarget *float64
	Target    *float64
}

// GetOKROptions controls GetOKR.
type GetOKROptions struct {
	Sync bool
}

// KeyResult represents a key result at the port boundary.
type KeyResult struct {
	ID           string   `json:"id"`
	OKRID        string   `json:"okr_id"`
	Title        string   `json:"title"`
	Type         string   `json:"kr_type"`
	KPIID        string   `json:"kpi_id,omitempty"`
	Baseline     *float64 `json:"kpi_baseline_value,omitempty"`
	KPITarget    *float64 `json:"kpi_target_value,omitempty"`
	Target       *float64 `json:"target_value,omitempty"`
	CurrentValue float64  `json:"current_value"`
	Progress     float64  `json:"progress_percentage"`
	SourcePeriod string   `json:"source_period,omitempty"`
	LastSyncedAt string   `json:"last_synced_at,omitempty"`
	Stale        bool     `json:"stale"`
}

// OKR represents an OKR with its key results at the port boundary.
type OKR struct {
	ID           string       `json:"id"`
	InitiativeID string       `json:"initiative_id"`
	Quarter      string       `json:"quarter"`
	Objective    string       `json:"objective"`
	Progress     float64      `json:"progress_percentage"`
	KeyResults   []*KeyResult `json:"key_results"`
}
