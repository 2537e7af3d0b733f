// Package keyresult contains the pure Key-Result progress logic.
// This is part of the Functional Core - no I/O, only pure functions.
package keyresult

import (
	"fmt"
	"math"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/core/threshold"
)

// Type is the shape of a key result.
type Type string

// Key result types.
const (
	TypeCustom   Type = "custom"
	TypeKPIBased Type = "kpi_based"
)

// MaxPerOKR is the most key results an OKR may own.
const MaxPerOKR = 5

// KeyResult is the synchronizer's view of a key result.
// kpi_based results populate KPIID, KPIBaseline and KPITarget;
// custom results populate Target. Never both.
type KeyResult struct {
	ID          string
	OKRID       string
	Title       string
	Type        Type
	KPIID       string
	KPIBaseline *float64
	KPITarget   *float64
	Target      *float64
	Current     float64
	Progress    float64
	// SourcePeriod is the KPI period the current snapshot was taken from.
	SourcePeriod string
}

// ValidateShape checks that exactly one of the two shapes is populated.
func ValidateShape(kr KeyResult) error {
	switch kr.Type {
	case TypeKPIBased:
		if kr.KPIID == "" || kr.KPIBaseline == nil || kr.KPITarget == nil {
			return errs.InvalidState("key result", kr.ID, "kpi_based key result requires kpi_id, baseline and target", nil)
		}
		if kr.Target != nil {
			return errs.InvalidState("key result", kr.ID, "kpi_based key result must not carry a custom target", nil)
		}
	case TypeCustom:
		if kr.Target == nil {
			return errs.InvalidState("key result", kr.ID, "custom key result requires a target", nil)
		}
		if kr.KPIID != "" || kr.KPIBaseline != nil || kr.KPITarget != nil {
			return errs.InvalidState("key result", kr.ID, "custom key result must not reference a KPI", nil)
		}
	default:
		return errs.InvalidState("key result", kr.ID, fmt.Sprintf("unknown key result type %q", kr.Type), nil)
	}
	return nil
}

// SyncResult is the snapshot computed for a kpi_based key result.
type SyncResult struct {
	KeyResultID  string  `json:"key_result_id"`
	KPIID        string  `json:"kpi_id"`
	CurrentValue float64 `json:"current_value"`
	Progress     float64 `json:"progress_percentage"`
	SourcePeriod string  `json:"source_period,omitempty"`
	UsedBaseline bool    `json:"used_baseline"`
}

// Sync computes current value and progress from the KPI's value history.
// values must be ordered by period, oldest first. The most recent
// non-exception value is used; with none, current falls back to the baseline.
func Sync(kr KeyResult, values []threshold.Value) (SyncResult, error) {
	if kr.Type != TypeKPIBased {
		return SyncResult{}, errs.InvalidState("key result", kr.ID,
			fmt.Sprintf("type is %s, not kpi_based", kr.Type), errs.ErrNotKPIBased)
	}
	if err := ValidateShape(kr); err != nil {
		return SyncResult{}, err
	}

	baseline, target := *kr.KPIBaseline, *kr.KPITarget
	result := SyncResult{
		KeyResultID:  kr.ID,
		KPIID:        kr.KPIID,
		CurrentValue: baseline,
		UsedBaseline: true,
	}
	if v, ok := LatestUsable(values); ok {
		result.CurrentValue = v.Value
		result.SourcePeriod = v.Period
		result.UsedBaseline = false
	}
	result.Progress = Progress(result.CurrentValue, baseline, target)
	return result, nil
}

// LatestUsable returns the most recent value not marked as a manual exception.
func LatestUsable(values []threshold.Value) (threshold.Value, bool) {
	for i := len(values) - 1; i >= 0; i-- {
		if !threshold.IsException(values[i].Mark) {
			return values[i], true
		}
	}
	return threshold.Value{}, false
}

// Progress returns clamp(0, 100, (current-baseline)/(target-baseline)*100).
// When target equals baseline, progress is 100 if current reached target, else 0.
func Progress(current, baseline, target float64) float64 {
	if target == baseline {
		if current >= target {
			return 100
		}
		return 0
	}
	p := (current - baseline) * 100 / (target - baseline)
	if math.IsNaN(p) {
		return 0
	}
	return clamp(p)
}

// CustomProgress is progress for a custom key result, measured from zero.
func CustomProgress(current, target float64) float64 {
	return Progress(current, 0, target)
}

// OKRProgress is the mean progress of an OKR's key results; 0 with none.
func OKRProgress(krs []KeyResult) float64 {
	if len(krs) == 0 {
		return 0
	}
	var sum float64
	for _, kr := range krs {
		sum += kr.Progress
	}
	return sum / float64(len(krs))
}

// IsStale reports whether the KPI has a usable value newer than the snapshot.
func IsStale(kr KeyResult, values []threshold.Value) bool {
	if kr.Type != TypeKPIBased {
		return false
	}
	latest, ok := LatestUsable(values)
	if !ok {
		return false
	}
	return latest.Period != kr.SourcePeriod
}

func clamp(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}
