package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/strata/internal/ports/primary"
)

// KPIAdapter translates CLI operations to KPIService calls.
type KPIAdapter struct {
	service primary.KPIService
	out     io.Writer
}

// NewKPIAdapter creates a new KPIAdapter with the given service.
func NewKPIAdapter(service primary.KPIService, out io.Writer) *KPIAdapter {
	return &KPIAdapter{service: service, out: out}
}

// Status prints the latest evaluation of one KPI.
func (a *KPIAdapter) Status(ctx context.Context, kpiID string) error {
	s, err := a.service.GetStatus(ctx, kpiID)
	if err != nil {
		return err
	}
	ev := s.Evaluation

	fmt.Fprintf(a.out, "\n%s %s\n", bold.Sprint(s.ID), s.Name)
	fmt.Fprintf(a.out, "Status:      %s\n", statusLabel(ev.Status))
	if ev.Period != "" {
		fmt.Fprintf(a.out, "Period:      %s\n", ev.Period)
	}
	fmt.Fprintf(a.out, "Value:       %s\n", fmtFloat(ev.Value, s.Unit))
	fmt.Fprintf(a.out, "Target:      %.1f%s\n", ev.Target, s.Unit)
	fmt.Fprintf(a.out, "Achievement: %s\n", fmtFloat(ev.Achievement, "%"))
	if ev.ThresholdVersion > 0 {
		fmt.Fprintf(a.out, "Thresholds:  v%d\n", ev.ThresholdVersion)
	}
	fmt.Fprintf(a.out, "Reason:      %s\n\n", ev.Reason)
	return nil
}

// List prints every KPI's status and the rollup.
func (a *KPIAdapter) List(ctx context.Context) error {
	report, err := a.service.ListStatuses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list kpi statuses: %w", err)
	}
	if len(report.KPIs) == 0 {
		fmt.Fprintln(a.out, "No KPIs found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-9s %-9s %-12s %s\n", "ID", "STATUS", "PERIOD", "ACHIEVEMENT", "NAME")
	fmt.Fprintln(a.out, rule)
	for _, k := range report.KPIs {
		ev := k.Evaluation
		fmt.Fprintf(a.out, "%-10s %s %-9s %-12s %s\n",
			k.ID, statusLabel(ev.Status), ev.Period, fmtFloat(ev.Achievement, "%"), k.Name)
	}
	r := report.Rollup
	fmt.Fprintln(a.out, rule)
	fmt.Fprintf(a.out, "Worst: %s  green %d · yellow %d · red %d · unknown %d · no data %d · excluded %d\n\n",
		statusLabel(r.Worst), r.Green, r.Yellow, r.Red, r.Unknown, r.NoData, r.Excluded)
	return nil
}

// History prints every recorded period of a KPI.
func (a *KPIAdapter) History(ctx context.Context, kpiID string) error {
	h, err := a.service.GetHistory(ctx, kpiID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s %s\n", bold.Sprint(h.ID), h.Name)
	if len(h.Periods) == 0 {
		fmt.Fprintln(a.out, "No values recorded")
		return nil
	}
	fmt.Fprintf(a.out, "%-9s %-9s %-10s %-10s %s\n", "PERIOD", "STATUS", "VALUE", "TARGET", "REASON")
	fmt.Fprintln(a.out, rule)
	for _, ev := range h.Periods {
		fmt.Fprintf(a.out, "%-9s %s %-10s %-10.1f %s\n",
			ev.Period, statusLabel(ev.Status), fmtFloat(ev.Value, h.Unit), ev.Target, ev.Reason)
	}
	fmt.Fprintf(a.out, "\nExcluded periods: %d\n\n", h.Rollup.Excluded)
	return nil
}

// Record appends a period value.
func (a *KPIAdapter) Record(ctx context.Context, req primary.RecordValueRequest) error {
	if err := a.service.RecordValue(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Recorded %s %s = %g\n", req.KPIID, req.Period, req.Value)
	return nil
}

// Exception flags or clears a period's manual-exception mark.
func (a *KPIAdapter) Exception(ctx context.Context, req primary.SetExceptionRequest) error {
	if err := a.service.SetException(ctx, req); err != nil {
		return err
	}
	if req.Exception {
		fmt.Fprintf(a.out, "✓ Flagged %s %s as exception: %s\n", req.KPIID, req.Period, req.Reason)
	} else {
		fmt.Fprintf(a.out, "✓ Cleared exception on %s %s\n", req.KPIID, req.Period)
	}
	return nil
}
