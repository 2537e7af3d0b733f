package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/core/trace"
	"github.com/example/strata/internal/ports/primary"
)

func TestTraceAdapter_Up(t *testing.T) {
	service := &mockTraceService{result: &primary.TraceResult{
		Direction: trace.DirectionUp, RootType: "task", RootID: "TASK-1",
		Nodes: []trace.Node{
			{Type: trace.NodeTask, ID: "TASK-1", Name: "Build login", Depth: 0},
			{Type: trace.NodeKeyResult, ID: "KR-1", Name: "Launch portal", Depth: 1},
			{Type: trace.NodeOKR, ID: "OKR-1", Name: "Ship portal", Depth: 2},
			{Type: trace.NodeInitiative, ID: "INIT-1", Name: "Student portal", Depth: 3},
			{Type: trace.NodeKPI, ID: "KPI-1", Name: "Satisfaction", Depth: 4},
			{Type: trace.NodeObjective, ID: "OBJ-2", Name: "Student experience", Depth: 5},
			{Type: trace.NodeObjective, ID: "OBJ-1", Name: "Financial health", Depth: 6},
		},
	}}
	var out bytes.Buffer

	if err := NewTraceAdapter(service, &out).Up(context.Background(), "TASK-1", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	newGolden(t).Assert(t, "trace_up", out.Bytes())
}

func TestTraceAdapter_HiddenAndWarnings(t *testing.T) {
	service := &mockTraceService{result: &primary.TraceResult{
		Direction: trace.DirectionObjective, RootType: "objective", RootID: "OBJ-1",
		Nodes: []trace.Node{
			{Type: trace.NodeKPI, ID: "KPI-1", Name: "Satisfaction", Depth: 2},
			{Type: trace.NodeInitiative, ID: "INIT-1", Name: "Student portal", Depth: 3},
		},
		Hidden: 3,
		Warnings: []causal.CycleWarning{
			{Path: []string{"OBJ-1", "OBJ-2", "OBJ-1"}, Message: "causal cycle: OBJ-1 → OBJ-2 → OBJ-1", Level: "warning"},
		},
	}}
	var out bytes.Buffer

	if err := NewTraceAdapter(service, &out).Objective(context.Background(), "OBJ-1", 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if service.lastOpts.Hops != 2 {
		t.Errorf("expected hops 2, got %d", service.lastOpts.Hops)
	}
	newGolden(t).Assert(t, "trace_objective_hops", out.Bytes())
}

func TestTraceAdapter_Empty(t *testing.T) {
	service := &mockTraceService{result: &primary.TraceResult{Direction: trace.DirectionDown, RootID: "KPI-1"}}
	var out bytes.Buffer

	if err := NewTraceAdapter(service, &out).Down(context.Background(), "KPI-1", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.String() != "No traceability data\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}
