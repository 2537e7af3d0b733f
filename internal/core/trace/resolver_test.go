package trace

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/core/keyresult"
)

// universityDataset:
//
//	O4 (learning) → O3 (internal) → O2 (customer) → O1 (financial)
//	K1 measures O3, K2 measures O1, K3 measures O2
//	I1 references K2; I2 references K1, K3 and objective O4
//	OKR1 (I1): KR1 custom, KR3 kpi_based on K3
//	OKR2 (I2): KR2 kpi_based on K1
//	T1 → KR1, T2 → KR2, T3 → K2 directly, T4 unlinked, T5 → KR3
func universityDataset() Dataset {
	return Dataset{
		Objectives: []causal.Objective{
			{ID: "O1", Name: "Financial sustainability", Perspective: causal.PerspectiveFinancial},
			{ID: "O2", Name: "Student satisfaction", Perspective: causal.PerspectiveCustomer},
			{ID: "O3", Name: "Teaching quality", Perspective: causal.PerspectiveInternalProcess},
			{ID: "O4", Name: "Faculty development", Perspective: causal.PerspectiveLearningGrowth},
		},
		Links: []causal.Link{
			{ID: "L1", From: "O4", To: "O3"},
			{ID: "L2", From: "O3", To: "O2"},
			{ID: "L3", From: "O2", To: "O1"},
		},
		KPIs: []KPI{
			{ID: "K1", Name: "Course evaluation score"},
			{ID: "K2", Name: "Operating margin"},
			{ID: "K3", Name: "Retention rate"},
		},
		KPIObjectives: []Pair{{"K1", "O3"}, {"K2", "O1"}, {"K3", "O2"}},
		Initiatives: []Initiative{
			{ID: "I1", Name: "Cost optimisation", Status: "active"},
			{ID: "I2", Name: "Teaching excellence", Status: "active"},
		},
		InitiativeKPIs:       []Pair{{"I1", "K2"}, {"I2", "K1"}, {"I2", "K3"}},
		InitiativeObjectives: []Pair{{"I2", "O4"}},
		OKRs: []OKR{
			{ID: "OKR1", InitiativeID: "I1", Quarter: "2024-Q1", Objective: "Cut overhead"},
			{ID: "OKR2", InitiativeID: "I2", Quarter: "2024-Q1", Objective: "Better courses"},
		},
		KeyResults: []KeyResult{
			{ID: "KR1", OKRID: "OKR1", Title: "Renegotiate contracts", Type: keyresult.TypeCustom},
			{ID: "KR2", OKRID: "OKR2", Title: "Evaluation score 4.5", Type: keyresult.TypeKPIBased, KPIID: "K1"},
			{ID: "KR3", OKRID: "OKR1", Title: "Retention 92%", Type: keyresult.TypeKPIBased, KPIID: "K3"},
		},
		Tasks: []Task{
			{ID: "T1", Title: "Audit vendors", KeyResultID: "KR1"},
			{ID: "T2", Title: "Peer review pilot", KeyResultID: "KR2"},
			{ID: "T3", Title: "Monthly finance report", KPIID: "K2"},
			{ID: "T4", Title: "Unlinked chore"},
			{ID: "T5", Title: "Mentoring programme", KeyResultID: "KR3"},
		},
	}
}

func TestTraceUp_Scenario(t *testing.T) {
	ds := Dataset{
		Objectives:    []causal.Objective{{ID: "O1", Name: "Objective"}},
		KPIs:          []KPI{{ID: "K2", Name: "KPI"}},
		KPIObjectives: []Pair{{"K2", "O1"}},
		Initiatives:   []Initiative{{ID: "I1", Name: "Initiative"}},
		InitiativeKPIs: []Pair{
			{"I1", "K2"},
		},
		OKRs:       []OKR{{ID: "OKR1", InitiativeID: "I1", Objective: "OKR"}},
		KeyResults: []KeyResult{{ID: "KR1", OKRID: "OKR1", Title: "KR", Type: keyresult.TypeCustom}},
		Tasks:      []Task{{ID: "T1", Title: "Task", KeyResultID: "KR1"}},
	}

	got, err := NewResolver(ds).TraceUp("T1")
	if err != nil {
		t.Fatalf("TraceUp() error = %v", err)
	}
	want := []string{"T1", "KR1", "OKR1", "I1", "K2", "O1"}
	if diff := cmp.Diff(want, got.IDs()); diff != "" {
		t.Errorf("TraceUp() mismatch (-want +got):\n%s", diff)
	}
	for i, n := range got.Nodes {
		if n.Depth != i {
			t.Errorf("node %s depth = %d, want %d", n.ID, n.Depth, i)
		}
	}
}

func TestTraceUp(t *testing.T) {
	r := NewResolver(universityDataset())

	tests := []struct {
		name   string
		taskID string
		want   []string
	}{
		{
			name:   "via key result, initiative KPIs and direct objective",
			taskID: "T2",
			want:   []string{"T2", "KR2", "OKR2", "I2", "K1", "K3", "O3", "O2", "O4", "O1"},
		},
		{
			name:   "kpi_based key result adds its own KPI",
			taskID: "T5",
			want:   []string{"T5", "KR3", "OKR1", "I1", "K2", "K3", "O1", "O2"},
		},
		{
			name:   "direct KPI link skips the OKR hop",
			taskID: "T3",
			want:   []string{"T3", "K2", "O1"},
		},
		{
			name:   "no links yields an empty path",
			taskID: "T4",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.TraceUp(tt.taskID)
			if err != nil {
				t.Fatalf("TraceUp(%s) error = %v", tt.taskID, err)
			}
			if diff := cmp.Diff(tt.want, got.IDs()); diff != "" {
				t.Errorf("TraceUp(%s) mismatch (-want +got):\n%s", tt.taskID, diff)
			}
			if got.Direction != DirectionUp || got.RootID != tt.taskID {
				t.Errorf("TraceUp(%s) root = %s/%s", tt.taskID, got.Direction, got.RootID)
			}
		})
	}
}

func TestTraceUp_EmptyPathIsNotNil(t *testing.T) {
	got, err := NewResolver(universityDataset()).TraceUp("T4")
	if err != nil {
		t.Fatalf("TraceUp() error = %v", err)
	}
	if got.Nodes == nil || !got.Empty() {
		t.Errorf("TraceUp(T4).Nodes = %#v, want empty non-nil slice", got.Nodes)
	}
}

func TestTraceUp_Depths(t *testing.T) {
	got, err := NewResolver(universityDataset()).TraceUp("T2")
	if err != nil {
		t.Fatalf("TraceUp() error = %v", err)
	}
	depths := map[string]int{}
	for _, n := range got.Nodes {
		depths[n.ID] = n.Depth
	}
	want := map[string]int{
		"T2": 0, "KR2": 1, "OKR2": 2, "I2": 3,
		"K1": 4, "K3": 4,
		"O3": 5, "O2": 5, "O4": 5,
		"O1": 6,
	}
	if diff := cmp.Diff(want, depths); diff != "" {
		t.Errorf("TraceUp(T2) depths mismatch (-want +got):\n%s", diff)
	}
}

func TestTraceUp_DeduplicatesConvergingObjectives(t *testing.T) {
	ds := Dataset{
		Objectives:     []causal.Objective{{ID: "O1", Name: "Shared"}},
		KPIs:           []KPI{{ID: "K1"}, {ID: "K2"}},
		KPIObjectives:  []Pair{{"K1", "O1"}, {"K2", "O1"}},
		Initiatives:    []Initiative{{ID: "I1"}},
		InitiativeKPIs: []Pair{{"I1", "K1"}, {"I1", "K2"}},
		OKRs:           []OKR{{ID: "OKR1", InitiativeID: "I1"}},
		KeyResults:     []KeyResult{{ID: "KR1", OKRID: "OKR1", Type: keyresult.TypeKPIBased, KPIID: "K1"}},
		Tasks:          []Task{{ID: "T1", KeyResultID: "KR1", KPIID: "K2"}},
	}

	got, err := NewResolver(ds).TraceUp("T1")
	if err != nil {
		t.Fatalf("TraceUp() error = %v", err)
	}
	want := []string{"T1", "KR1", "OKR1", "I1", "K1", "K2", "O1"}
	if diff := cmp.Diff(want, got.IDs()); diff != "" {
		t.Errorf("TraceUp() mismatch (-want +got):\n%s", diff)
	}
}

func TestTraceUp_CycleTruncatedAndWarned(t *testing.T) {
	ds := Dataset{
		Objectives:    []causal.Objective{{ID: "A"}, {ID: "B"}},
		Links:         []causal.Link{{From: "A", To: "B"}, {From: "B", To: "A"}},
		KPIs:          []KPI{{ID: "K1"}},
		KPIObjectives: []Pair{{"K1", "A"}},
		Tasks:         []Task{{ID: "T1", KPIID: "K1"}},
	}

	got, err := NewResolver(ds).TraceUp("T1")
	if err != nil {
		t.Fatalf("TraceUp() error = %v", err)
	}
	if diff := cmp.Diff([]string{"T1", "K1", "A", "B"}, got.IDs()); diff != "" {
		t.Errorf("TraceUp() mismatch (-want +got):\n%s", diff)
	}
	if len(got.Warnings) != 1 {
		t.Fatalf("len(Warnings) = %d, want 1", len(got.Warnings))
	}
	if diff := cmp.Diff([]string{"A", "B", "A"}, got.Warnings[0].Path); diff != "" {
		t.Errorf("Warnings[0].Path mismatch (-want +got):\n%s", diff)
	}
}

func TestTraceUp_DanglingReferencesAreSkipped(t *testing.T) {
	ds := Dataset{
		KPIs:          []KPI{{ID: "K1"}},
		KPIObjectives: []Pair{{"K1", "O-gone"}},
		KeyResults:    []KeyResult{{ID: "KR1", OKRID: "OKR-gone"}},
		Tasks:         []Task{{ID: "T1", KeyResultID: "KR1", KPIID: "K-gone"}},
	}

	got, err := NewResolver(ds).TraceUp("T1")
	if err != nil {
		t.Fatalf("TraceUp() error = %v", err)
	}
	if diff := cmp.Diff([]string{"T1", "KR1"}, got.IDs()); diff != "" {
		t.Errorf("TraceUp() mismatch (-want +got):\n%s", diff)
	}
}

func TestTraceDown(t *testing.T) {
	r := NewResolver(universityDataset())

	tests := []struct {
		name  string
		kpiID string
		want  []string
	}{
		{
			name:  "initiative path plus kpi_based owner",
			kpiID: "K3",
			want:  []string{"K3", "I2", "OKR2", "OKR1", "KR2", "KR3", "T2", "T5"},
		},
		{
			name:  "initiative path plus direct task",
			kpiID: "K2",
			want:  []string{"K2", "I1", "OKR1", "KR1", "KR3", "T1", "T5", "T3"},
		},
		{
			name:  "kpi_based key result reached twice appears once",
			kpiID: "K1",
			want:  []string{"K1", "I2", "OKR2", "KR2", "T2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.TraceDown(tt.kpiID)
			if err != nil {
				t.Fatalf("TraceDown(%s) error = %v", tt.kpiID, err)
			}
			if diff := cmp.Diff(tt.want, got.IDs()); diff != "" {
				t.Errorf("TraceDown(%s) mismatch (-want +got):\n%s", tt.kpiID, diff)
			}
		})
	}
}

func TestTraceDown_LayerDepths(t *testing.T) {
	got, err := NewResolver(universityDataset(), WithBaseURL("https://strata.example.edu/")).TraceDown("K2")
	if err != nil {
		t.Fatalf("TraceDown() error = %v", err)
	}
	want := []Node{
		{Type: NodeKPI, ID: "K2", Name: "Operating margin", URL: "https://strata.example.edu/kpis/K2", Depth: 0},
		{Type: NodeInitiative, ID: "I1", Name: "Cost optimisation", URL: "https://strata.example.edu/initiatives/I1", Depth: 1},
		{Type: NodeOKR, ID: "OKR1", Name: "2024-Q1: Cut overhead", URL: "https://strata.example.edu/okrs/OKR1", Depth: 2},
		{Type: NodeKeyResult, ID: "KR1", Name: "Renegotiate contracts", URL: "https://strata.example.edu/key-results/KR1", Depth: 3},
		{Type: NodeKeyResult, ID: "KR3", Name: "Retention 92%", URL: "https://strata.example.edu/key-results/KR3", Depth: 3},
		{Type: NodeTask, ID: "T1", Name: "Audit vendors", URL: "https://strata.example.edu/tasks/T1", Depth: 4},
		{Type: NodeTask, ID: "T5", Name: "Mentoring programme", URL: "https://strata.example.edu/tasks/T5", Depth: 4},
		{Type: NodeTask, ID: "T3", Name: "Monthly finance report", URL: "https://strata.example.edu/tasks/T3", Depth: 4},
	}
	if diff := cmp.Diff(want, got.Nodes); diff != "" {
		t.Errorf("TraceDown(K2) mismatch (-want +got):\n%s", diff)
	}
}

func TestTraceDown_ThenUp_RoundTrip(t *testing.T) {
	ds := universityDataset()
	r := NewResolver(ds)

	for _, kpi := range ds.KPIs {
		down, err := r.TraceDown(kpi.ID)
		if err != nil {
			t.Fatalf("TraceDown(%s) error = %v", kpi.ID, err)
		}

		// Objectives the KPI itself reaches.
		want := map[string]bool{}
		for _, p := range ds.KPIObjectives {
			if p.Left != kpi.ID {
				continue
			}
			for _, id := range r.Graph().ReachableFrom(p.Right, causal.Forward) {
				want[id] = true
			}
		}

		for _, taskID := range down.IDsOf(NodeTask) {
			up, err := r.TraceUp(taskID)
			if err != nil {
				t.Fatalf("TraceUp(%s) error = %v", taskID, err)
			}
			got := map[string]bool{}
			for _, id := range up.IDsOf(NodeObjective) {
				got[id] = true
			}
			for id := range want {
				if !got[id] {
					t.Errorf("TraceUp(%s) from TraceDown(%s) misses objective %s", taskID, kpi.ID, id)
				}
			}
			if !contains(up.IDsOf(NodeKPI), kpi.ID) {
				t.Errorf("TraceUp(%s) from TraceDown(%s) misses the KPI", taskID, kpi.ID)
			}
		}
	}
}

func TestTraceObjective(t *testing.T) {
	got, err := NewResolver(universityDataset()).TraceObjective("O2")
	if err != nil {
		t.Fatalf("TraceObjective() error = %v", err)
	}
	want := []string{"O2", "O3", "O4", "K3", "K1", "I2", "OKR2", "OKR1", "KR2", "KR3", "T2", "T5"}
	if diff := cmp.Diff(want, got.IDs()); diff != "" {
		t.Errorf("TraceObjective(O2) mismatch (-want +got):\n%s", diff)
	}

	wantDepths := []int{0, 1, 2, 3, 3, 4, 5, 5, 6, 6, 7, 7}
	var depths []int
	for _, n := range got.Nodes {
		depths = append(depths, n.Depth)
	}
	if diff := cmp.Diff(wantDepths, depths); diff != "" {
		t.Errorf("TraceObjective(O2) depths mismatch (-want +got):\n%s", diff)
	}
}

func TestTrace_UnknownIDs(t *testing.T) {
	r := NewResolver(universityDataset())

	tests := []struct {
		name    string
		run     func() error
		wantMsg string
	}{
		{"task", func() error { _, err := r.TraceUp("T404"); return err }, "task T404 not found"},
		{"kpi", func() error { _, err := r.TraceDown("K404"); return err }, "kpi K404 not found"},
		{"objective", func() error { _, err := r.TraceObjective("O404"); return err }, "objective O404 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errs.IsNotFound(err) {
				t.Fatalf("error = %v, want NotFoundError", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLastHops(t *testing.T) {
	down, err := NewResolver(universityDataset()).TraceDown("K3")
	if err != nil {
		t.Fatalf("TraceDown() error = %v", err)
	}

	tests := []struct {
		hops int
		want []string
	}{
		{0, []string{"K3", "I2", "OKR2", "OKR1", "KR2", "KR3", "T2", "T5"}},
		{1, []string{"T2", "T5"}},
		{2, []string{"KR2", "KR3", "T2", "T5"}},
		{10, []string{"K3", "I2", "OKR2", "OKR1", "KR2", "KR3", "T2", "T5"}},
	}

	for _, tt := range tests {
		got := Result{Nodes: LastHops(down.Nodes, tt.hops)}
		if diff := cmp.Diff(tt.want, got.IDs()); diff != "" {
			t.Errorf("LastHops(%d) mismatch (-want +got):\n%s", tt.hops, diff)
		}
	}
}

func TestResolverURL(t *testing.T) {
	r := NewResolver(Dataset{})
	if got := r.URL(NodeKeyResult, "KR 1"); got != "/key-results/KR%201" {
		t.Errorf("URL() = %q, want %q", got, "/key-results/KR%201")
	}
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
