// Package threshold contains the pure KPI status evaluator.
// Evaluation maps a KPI's latest value and its threshold configuration to a
// traffic-light status. No I/O happens here; callers pre-fetch the KPI.
package threshold

import (
	"fmt"
	"math"

	"github.com/example/strata/internal/core/errs"
)

// Status is the derived state of a KPI period.
type Status string

// Status constants. Exception and no_data are not colours and never count as red.
const (
	StatusGreen     Status = "green"
	StatusYellow    Status = "yellow"
	StatusRed       Status = "red"
	StatusException Status = "exception" // latest period flagged as a manual exception
	StatusNoData    Status = "no_data"   // no value recorded yet (rendered gray)
	StatusUnknown   Status = "unknown"   // achievement undefined (target is zero)
)

// IsColor reports whether the status takes part in colour aggregation.
func (s Status) IsColor() bool {
	return s == StatusGreen || s == StatusYellow || s == StatusRed
}

// Evaluation is the result of evaluating one KPI period.
type Evaluation struct {
	KPIID            string   `json:"kpi_id"`
	Period           string   `json:"period,omitempty"`
	Status           Status   `json:"status"`
	Reason           string   `json:"reason"`
	Value            *float64 `json:"value,omitempty"`
	Target           float64  `json:"target"`
	Achievement      *float64 `json:"achievement,omitempty"`
	ThresholdVersion int      `json:"threshold_version,omitempty"`
}

// Evaluate computes the status of the KPI's most recent value.
// Values must be ordered by period, oldest first.
func Evaluate(kpi KPI) (Evaluation, error) {
	if len(kpi.Values) == 0 {
		return Evaluation{
			KPIID:  kpi.ID,
			Status: StatusNoData,
			Reason: "no values recorded",
			Target: kpi.Target,
		}, nil
	}
	return evaluateValue(kpi, kpi.Values[len(kpi.Values)-1])
}

// EvaluateHistory evaluates every recorded period, each against the threshold
// version active for that period.
func EvaluateHistory(kpi KPI) ([]Evaluation, error) {
	result := make([]Evaluation, 0, len(kpi.Values))
	for _, v := range kpi.Values {
		ev, err := evaluateValue(kpi, v)
		if err != nil {
			return nil, err
		}
		result = append(result, ev)
	}
	return result, nil
}

func evaluateValue(kpi KPI, v Value) (Evaluation, error) {
	target := kpi.Target
	if v.Target != 0 {
		target = v.Target
	}
	value := v.Value
	ev := Evaluation{
		KPIID:  kpi.ID,
		Period: v.Period,
		Target: target,
		Value:  &value,
	}

	if exc, ok := v.Mark.(ManualException); ok {
		ev.Status = StatusException
		ev.Reason = "manual exception"
		if exc.Reason != "" {
			ev.Reason = "manual exception: " + exc.Reason
		}
		return ev, nil
	}

	version, err := ActiveVersion(kpi.Thresholds, v.Period)
	if err != nil {
		return Evaluation{}, errs.InvalidState("kpi", kpi.ID, err.Error(), errs.ErrMalformedThresholds)
	}
	if err := version.Validate(); err != nil {
		return Evaluation{}, errs.InvalidState("kpi", kpi.ID, err.Error(), errs.ErrMalformedThresholds)
	}
	ev.ThresholdVersion = version.Version

	if target != 0 {
		a := value / target * 100
		if !math.IsNaN(a) && !math.IsInf(a, 0) {
			ev.Achievement = &a
		}
	}

	switch version.Mode {
	case ModeFixed:
		if ev.Achievement == nil {
			ev.Status = StatusUnknown
			ev.Reason = "target is zero; achievement undefined"
			return ev, nil
		}
		status, ok := version.match(*ev.Achievement)
		ev.Status = status
		ev.Reason = describe("achievement", *ev.Achievement, "%", status, ok)
	case ModeDynamic:
		status, ok := version.match(value)
		ev.Status = status
		ev.Reason = describe("value", value, "", status, ok)
	}

	return ev, nil
}

func describe(subject string, x float64, unit string, status Status, matched bool) string {
	if !matched {
		return fmt.Sprintf("%s %.1f%s outside configured bands", subject, x, unit)
	}
	return fmt.Sprintf("%s %.1f%s in %s band", subject, x, unit, status)
}
