package keyresult

import (
	"fmt"
	"time"

	"github.com/example/strata/internal/core/effects"
	"github.com/example/strata/internal/core/threshold"
)

// SyncPlanInput contains pre-fetched data for a key-result sync.
type SyncPlanInput struct {
	KeyResult KeyResult
	Values    []threshold.Value // the KPI's history, oldest first
	Now       time.Time
}

// SyncPlan is the computed snapshot plus the writes that store it.
type SyncPlan struct {
	Result  SyncResult
	Changed bool
	Effects []effects.Effect
}

// GenerateSyncPlan computes the snapshot for a kpi_based key result.
// This is a pure function - all input data must be pre-fetched.
// The snapshot is always written so last_synced_at moves forward.
func GenerateSyncPlan(input SyncPlanInput) (SyncPlan, error) {
	res, err := Sync(input.KeyResult, input.Values)
	if err != nil {
		return SyncPlan{}, err
	}
	kr := input.KeyResult
	changed := kr.Current != res.CurrentValue || kr.Progress != res.Progress || kr.SourcePeriod != res.SourcePeriod

	plan := SyncPlan{Result: res, Changed: changed}
	plan.Effects = append(plan.Effects, effects.KeyResultSnapshotEffect{
		KeyResultID:  kr.ID,
		CurrentValue: res.CurrentValue,
		Progress:     res.Progress,
		SourcePeriod: res.SourcePeriod,
		SyncedAt:     input.Now,
	})

	level, msg := "debug", fmt.Sprintf("key result %s unchanged", kr.ID)
	if changed {
		level, msg = "info", fmt.Sprintf("key result %s synced", kr.ID)
	}
	plan.Effects = append(plan.Effects, effects.LogEffect{
		Level:   level,
		Message: msg,
		Fields: map[string]any{
			"key_result_id": kr.ID,
			"kpi_id":        kr.KPIID,
			"current_value": res.CurrentValue,
			"progress":      res.Progress,
			"source_period": res.SourcePeriod,
			"used_baseline": res.UsedBaseline,
		},
	})
	return plan, nil
}
