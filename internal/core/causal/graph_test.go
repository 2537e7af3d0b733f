package causal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objectives(ids ...string) []Objective {
	out := make([]Objective, len(ids))
	for i, id := range ids {
		out[i] = Objective{ID: id, Name: "Objective " + id, Perspective: PerspectiveCustomer}
	}
	return out
}

func TestReachableFrom_CycleTerminates(t *testing.T) {
	g := BuildGraph(objectives("A", "B"), []Link{
		{ID: "L1", From: "A", To: "B"},
		{ID: "L2", From: "B", To: "A"},
	})

	assert.Equal(t, []string{"A", "B"}, g.ReachableFrom("A", Forward))
	assert.Equal(t, []string{"A", "B"}, g.ReachableFrom("A", Backward))
	assert.Equal(t, []string{"B", "A"}, g.ReachableFrom("B", Forward))
}

func TestReachableFrom_BreadthFirstInsertionOrder(t *testing.T) {
	// A -> C, A -> B, B -> D, C -> D, D -> E
	g := BuildGraph(objectives("A", "B", "C", "D", "E"), []Link{
		{From: "A", To: "C"},
		{From: "A", To: "B"},
		{From: "B", To: "D"},
		{From: "C", To: "D"},
		{From: "D", To: "E"},
	})

	assert.Equal(t, []string{"A", "C", "B", "D", "E"}, g.ReachableFrom("A", Forward))
	assert.Equal(t, []string{"E", "D", "B", "C", "A"}, g.ReachableFrom("E", Backward))
	assert.Equal(t, []string{"D", "E"}, g.ReachableFrom("D", Forward))
}

func TestReachableFrom_UnknownStart(t *testing.T) {
	g := BuildGraph(objectives("A"), nil)
	assert.Nil(t, g.ReachableFrom("Z", Forward))
	assert.Equal(t, []string{"A"}, g.ReachableFrom("A", Forward))
}

func TestReachableFrom_LargeCycleTerminates(t *testing.T) {
	ids := make([]string, 200)
	var links []Link
	for i := range ids {
		ids[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	for i := range ids {
		links = append(links, Link{From: ids[i], To: ids[(i+1)%len(ids)]})
		links = append(links, Link{From: ids[i], To: ids[(i+7)%len(ids)]})
	}
	g := BuildGraph(objectives(ids...), links)

	got := g.ReachableFrom(ids[0], Forward)
	require.Len(t, got, len(ids))
	assert.Equal(t, ids[0], got[0])
}

func TestBuildGraph_SkipsBadLinks(t *testing.T) {
	g := BuildGraph(objectives("A", "B"), []Link{
		{ID: "L1", From: "A", To: "A"},
		{ID: "L2", From: "A", To: "X"},
		{ID: "L3", From: "Y", To: "B"},
		{ID: "L4", From: "A", To: "B"},
		{ID: "L5", From: "A", To: "B"},
	})

	skipped := g.Skipped()
	require.Len(t, skipped, 4)
	assert.Equal(t, "self-loop", skipped[0].Reason)
	assert.Equal(t, "unknown objective X", skipped[1].Reason)
	assert.Equal(t, "unknown objective Y", skipped[2].Reason)
	assert.Equal(t, "duplicate link", skipped[3].Reason)
	assert.Equal(t, "L5", skipped[3].Link.ID)

	assert.Equal(t, []string{"B"}, g.Neighbors("A", Forward))
	assert.Equal(t, []string{"A"}, g.Neighbors("B", Backward))
	assert.Equal(t, 2, g.Len())
}

func TestDetectCycles(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		links     []Link
		wantPaths [][]string
	}{
		{
			name: "acyclic",
			ids:  []string{"A", "B", "C"},
			links: []Link{
				{From: "A", To: "B"},
				{From: "B", To: "C"},
				{From: "A", To: "C"},
			},
			wantPaths: nil,
		},
		{
			name:      "two-node cycle",
			ids:       []string{"A", "B"},
			links:     []Link{{From: "A", To: "B"}, {From: "B", To: "A"}},
			wantPaths: [][]string{{"A", "B", "A"}},
		},
		{
			name: "three-node cycle reported from earliest objective",
			ids:  []string{"A", "B", "C", "D"},
			links: []Link{
				{From: "C", To: "A"},
				{From: "A", To: "B"},
				{From: "B", To: "C"},
				{From: "C", To: "D"},
			},
			wantPaths: [][]string{{"A", "B", "C", "A"}},
		},
		{
			name: "two independent cycles",
			ids:  []string{"A", "B", "C", "D", "E"},
			links: []Link{
				{From: "D", To: "E"},
				{From: "E", To: "D"},
				{From: "A", To: "B"},
				{From: "B", To: "A"},
				{From: "B", To: "C"},
			},
			wantPaths: [][]string{{"A", "B", "A"}, {"D", "E", "D"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BuildGraph(objectives(tt.ids...), tt.links)
			warnings := g.DetectCycles()

			var paths [][]string
			for _, w := range warnings {
				assert.Equal(t, "warning", w.Level)
				assert.Contains(t, w.Message, "causal cycle detected")
				paths = append(paths, w.Path)
			}
			assert.Equal(t, tt.wantPaths, paths)
		})
	}
}

func TestReach_AttachesTouchedCycles(t *testing.T) {
	g := BuildGraph(objectives("A", "B", "C", "D", "E"), []Link{
		{From: "A", To: "B"},
		{From: "B", To: "A"},
		{From: "B", To: "C"},
		{From: "D", To: "E"},
		{From: "E", To: "D"},
	})

	r := g.Reach("A", Forward)
	assert.Equal(t, []string{"A", "B", "C"}, r.IDs)
	assert.Equal(t, "forward", r.Direction)
	require.Len(t, r.Cycles, 1)
	assert.Equal(t, []string{"A", "B", "A"}, r.Cycles[0].Path)

	r = g.Reach("C", Forward)
	assert.Equal(t, []string{"C"}, r.IDs)
	assert.Empty(t, r.Cycles)

	r = g.Reach("missing", Backward)
	assert.Empty(t, r.IDs)
}

func TestWouldCloseCycle(t *testing.T) {
	g := BuildGraph(objectives("A", "B", "C"), []Link{
		{From: "A", To: "B"},
		{From: "B", To: "C"},
	})

	assert.True(t, g.WouldCloseCycle("C", "A"))
	assert.False(t, g.WouldCloseCycle("A", "C"))
}

func TestValidPerspective(t *testing.T) {
	assert.True(t, ValidPerspective(PerspectiveLearningGrowth))
	assert.False(t, ValidPerspective("marketing"))
}
