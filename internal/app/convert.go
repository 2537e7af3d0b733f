package app

import (
	"fmt"
	"time"

	"github.com/example/strata/internal/core/consultation"
	"github.com/example/strata/internal/core/keyresult"
	"github.com/example/strata/internal/core/threshold"
	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/ports/secondary"
)

// Record -> core conversions. Services fetch records, convert, then hand
// pure values to the core packages.

func toThresholdKPI(k *secondary.KPIRecord, values []*secondary.KPIValueRecord, versions []*secondary.ThresholdRecord) threshold.KPI {
	kpi := threshold.KPI{
		ID:     k.ID,
		Name:   k.Name,
		Target: k.TargetValue,
	}
	for _, v := range versions {
		kpi.Thresholds = append(kpi.Thresholds, toVersion(v))
	}
	kpi.Values = toValues(values)
	return kpi
}

func toValues(values []*secondary.KPIValueRecord) []threshold.Value {
	out := make([]threshold.Value, 0, len(values))
	for _, v := range values {
		out = append(out, toValue(v))
	}
	return out
}

func toValue(v *secondary.KPIValueRecord) threshold.Value {
	return threshold.Value{
		Period: v.Period,
		Value:  v.Value,
		Target: v.TargetValue,
		Mark:   toMark(v),
	}
}

func toMark(v *secondary.KPIValueRecord) threshold.Mark {
	if v.IsException {
		return threshold.ManualException{Reason: v.ExceptionReason}
	}
	return threshold.Normal{}
}

func toVersion(r *secondary.ThresholdRecord) threshold.Version {
	return threshold.Version{
		Version:       r.Version,
		Mode:          threshold.Mode(r.Mode),
		EffectiveFrom: r.EffectiveFrom,
		Green:         toBand(r.GreenMin, r.GreenMax),
		Yellow:        toBand(r.YellowMin, r.YellowMax),
		Red:           toBand(r.RedMin, r.RedMax),
	}
}

// toBand returns nil when both bounds are unset: the band is not configured.
func toBand(lo, hi *float64) *threshold.Band {
	if lo == nil && hi == nil {
		return nil
	}
	return &threshold.Band{Min: lo, Max: hi}
}

func toKeyResult(r *secondary.KeyResultRecord) keyresult.KeyResult {
	return keyresult.KeyResult{
		ID:           r.ID,
		OKRID:        r.OKRID,
		Title:        r.Title,
		Type:         keyresult.Type(r.KRType),
		KPIID:        r.KPIID,
		KPIBaseline:  r.KPIBaselineValue,
		KPITarget:    r.KPITargetValue,
		Target:       r.TargetValue,
		Current:      r.CurrentValue,
		Progress:     r.ProgressPercentage,
		SourcePeriod: r.SourcePeriod,
	}
}

func toPortKeyResult(r *secondary.KeyResultRecord, stale bool) *primary.KeyResult {
	return &primary.KeyResult{
		ID:           r.ID,
		OKRID:        r.OKRID,
		Title:        r.Title,
		Type:         r.KRType,
		KPIID:        r.KPIID,
		Baseline:     r.KPIBaselineValue,
		KPITarget:    r.KPITargetValue,
		Target:       r.TargetValue,
		CurrentValue: r.CurrentValue,
		Progress:     r.ProgressPercentage,
		SourcePeriod: r.SourcePeriod,
		LastSyncedAt: r.LastSyncedAt,
		Stale:        stale,
	}
}

func toWorkflow(wf *secondary.WorkflowRecord, assignees []*secondary.AssigneeRecord, records []*secondary.ConsultationRecord) (consultation.Workflow, error) {
	started, err := parseTimestamp(wf.StepStartedAt)
	if err != nil {
		return consultation.Workflow{}, fmt.Errorf("workflow %s step_started_at: %w", wf.ID, err)
	}
	out := consultation.Workflow{
		ID:            wf.ID,
		TemplateID:    wf.TemplateID,
		Name:          wf.Name,
		StepName:      wf.StepName,
		StepStartedAt: started,
		SLADays:       wf.SLADays,
	}
	for _, a := range assignees {
		activityAt, err := parseOptionalTimestamp(a.LastActivityAt)
		if err != nil {
			return consultation.Workflow{}, fmt.Errorf("assignee %s last_activity_at: %w", a.UserID, err)
		}
		out.Assignees = append(out.Assignees, consultation.Assignee{
			UserID:         a.UserID,
			Name:           a.Name,
			Role:           consultation.Role(a.Role),
			LastActivityAt: activityAt,
		})
	}
	for _, r := range records {
		submitted, err := parseTimestamp(r.SubmittedAt)
		if err != nil {
			return consultation.Workflow{}, fmt.Errorf("record %s submitted_at: %w", r.ID, err)
		}
		out.Records = append(out.Records, consultation.Record{
			ID:          r.ID,
			UserID:      r.UserID,
			Status:      r.Status,
			Comment:     r.Comment,
			SubmittedAt: submitted,
		})
	}
	return out, nil
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func parseOptionalTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTimestamp(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
