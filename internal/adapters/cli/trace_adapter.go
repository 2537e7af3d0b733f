package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/strata/internal/ports/primary"
)

// TraceAdapter translates CLI operations to TraceService calls.
type TraceAdapter struct {
	service primary.TraceService
	out     io.Writer
}

// NewTraceAdapter creates a new TraceAdapter with the given service.
func NewTraceAdapter(service primary.TraceService, out io.Writer) *TraceAdapter {
	return &TraceAdapter{service: service, out: out}
}

// Up prints the path from a task to its objectives.
func (a *TraceAdapter) Up(ctx context.Context, taskID string, hops int) error {
	res, err := a.service.TraceUp(ctx, taskID, primary.TraceOptions{Hops: hops})
	if err != nil {
		return err
	}
	a.render(res)
	return nil
}

// Down prints the work beneath a KPI.
func (a *TraceAdapter) Down(ctx context.Context, kpiID string, hops int) error {
	res, err := a.service.TraceDown(ctx, kpiID, primary.TraceOptions{Hops: hops})
	if err != nil {
		return err
	}
	a.render(res)
	return nil
}

// Objective prints the drivers of an objective and the work beneath them.
func (a *TraceAdapter) Objective(ctx context.Context, objectiveID string, hops int) error {
	res, err := a.service.TraceObjective(ctx, objectiveID, primary.TraceOptions{Hops: hops})
	if err != nil {
		return err
	}
	a.render(res)
	return nil
}

func (a *TraceAdapter) render(res *primary.TraceResult) {
	if len(res.Nodes) == 0 {
		fmt.Fprintln(a.out, "No traceability data")
		return
	}

	fmt.Fprintf(a.out, "\nTrace %s from %s %s\n\n", res.Direction, res.RootType, bold.Sprint(res.RootID))
	if res.Hidden > 0 {
		fmt.Fprintln(a.out, gray.Sprintf("… %d node(s) in earlier layers hidden", res.Hidden))
	}
	base := res.Nodes[0].Depth
	for _, n := range res.Nodes {
		base = min(base, n.Depth)
	}
	for _, n := range res.Nodes {
		indent := strings.Repeat("  ", n.Depth-base)
		fmt.Fprintf(a.out, "%s%-11s %-10s %s\n", indent, n.Type, n.ID, n.Name)
	}
	fmt.Fprintln(a.out)
	for _, w := range res.Warnings {
		warn(a.out, w.Message)
	}
}
