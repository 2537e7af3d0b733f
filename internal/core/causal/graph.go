// Package causal holds the in-memory directed graph of BSC objectives.
// The graph is rebuilt from the current objectives and links on every call;
// nothing here is cached or persisted.
package causal

import (
	"fmt"
	"strings"
)

// Perspective is a Balanced Scorecard perspective.
type Perspective string

// Perspective constants.
const (
	PerspectiveFinancial       Perspective = "financial"
	PerspectiveCustomer        Perspective = "customer"
	PerspectiveInternalProcess Perspective = "internal_process"
	PerspectiveLearningGrowth  Perspective = "learning_growth"
)

// ValidPerspective reports whether p is one of the four BSC perspectives.
func ValidPerspective(p Perspective) bool {
	switch p {
	case PerspectiveFinancial, PerspectiveCustomer, PerspectiveInternalProcess, PerspectiveLearningGrowth:
		return true
	}
	return false
}

// Objective is a node of the graph.
type Objective struct {
	ID          string
	Name        string
	Perspective Perspective
}

// Link is a directed edge: From drives To.
type Link struct {
	ID   string
	From string
	To   string
}

// Direction selects which adjacency list a traversal follows.
type Direction int

const (
	// Forward follows links from cause to effect.
	Forward Direction = iota
	// Backward follows links from effect to cause.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// SkippedLink is a link left out of the graph at build time.
type SkippedLink struct {
	Link   Link
	Reason string
}

// Graph is a directed graph over objectives with adjacency in both directions.
// Sibling order follows link insertion order.
type Graph struct {
	objectives map[string]Objective
	order      []string
	forward    map[string][]string
	backward   map[string][]string
	skipped    []SkippedLink
}

// BuildGraph constructs the graph. Links that reference an unknown objective,
// loop on a single objective, or repeat an existing edge are skipped and
// reported through Skipped.
func BuildGraph(objectives []Objective, links []Link) *Graph {
	g := &Graph{
		objectives: make(map[string]Objective, len(objectives)),
		forward:    make(map[string][]string),
		backward:   make(map[string][]string),
	}
	for _, o := range objectives {
		if _, dup := g.objectives[o.ID]; dup {
			continue
		}
		g.objectives[o.ID] = o
		g.order = append(g.order, o.ID)
	}

	seen := make(map[[2]string]bool, len(links))
	for _, l := range links {
		switch {
		case l.From == l.To:
			g.skipped = append(g.skipped, SkippedLink{Link: l, Reason: "self-loop"})
			continue
		case !g.Has(l.From):
			g.skipped = append(g.skipped, SkippedLink{Link: l, Reason: fmt.Sprintf("unknown objective %s", l.From)})
			continue
		case !g.Has(l.To):
			g.skipped = append(g.skipped, SkippedLink{Link: l, Reason: fmt.Sprintf("unknown objective %s", l.To)})
			continue
		}
		key := [2]string{l.From, l.To}
		if seen[key] {
			g.skipped = append(g.skipped, SkippedLink{Link: l, Reason: "duplicate link"})
			continue
		}
		seen[key] = true
		g.forward[l.From] = append(g.forward[l.From], l.To)
		g.backward[l.To] = append(g.backward[l.To], l.From)
	}
	return g
}

// Has reports whether the objective is part of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.objectives[id]
	return ok
}

// Objective returns the objective with the given id.
func (g *Graph) Objective(id string) (Objective, bool) {
	o, ok := g.objectives[id]
	return o, ok
}

// Skipped returns the links dropped at build time.
func (g *Graph) Skipped() []SkippedLink {
	return g.skipped
}

// Len returns the number of objectives.
func (g *Graph) Len() int {
	return len(g.order)
}

// Neighbors returns the direct successors (Forward) or predecessors (Backward).
func (g *Graph) Neighbors(id string, dir Direction) []string {
	if dir == Backward {
		return g.backward[id]
	}
	return g.forward[id]
}

// ReachableFrom returns the start objective followed by every objective
// reachable from it, in breadth-first order. Each objective appears once;
// a revisited objective is never expanded again, so cycles terminate.
// An unknown start returns nil.
func (g *Graph) ReachableFrom(id string, dir Direction) []string {
	if !g.Has(id) {
		return nil
	}
	visited := map[string]bool{id: true}
	result := []string{id}
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.Neighbors(current, dir) {
			if visited[next] {
				continue
			}
			visited[next] = true
			result = append(result, next)
			queue = append(queue, next)
		}
	}
	return result
}

// Reach is a traversal result together with the cycles it touched.
type Reach struct {
	Start     string         `json:"start"`
	Direction string         `json:"direction"`
	IDs       []string       `json:"ids"`
	Cycles    []CycleWarning `json:"cycles,omitempty"`
}

// Reach runs ReachableFrom and attaches the cycle warnings that involve any
// reached objective.
func (g *Graph) Reach(id string, dir Direction) Reach {
	r := Reach{Start: id, Direction: dir.String(), IDs: g.ReachableFrom(id, dir)}
	if len(r.IDs) == 0 {
		return r
	}
	reached := make(map[string]bool, len(r.IDs))
	for _, rid := range r.IDs {
		reached[rid] = true
	}
	for _, w := range g.DetectCycles() {
		for _, p := range w.Path {
			if reached[p] {
				r.Cycles = append(r.Cycles, w)
				break
			}
		}
	}
	return r
}

// WouldCloseCycle reports whether adding from -> to makes to reach from.
func (g *Graph) WouldCloseCycle(from, to string) bool {
	for _, id := range g.ReachableFrom(to, Forward) {
		if id == from {
			return true
		}
	}
	return false
}

// CycleWarning describes a cycle among objectives. Cycles are not errors:
// traversals truncate them and callers surface the warning.
type CycleWarning struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// DetectCycles finds every strongly connected component with more than one
// objective and reports it as a cycle. Output order follows objective
// insertion order.
func (g *Graph) DetectCycles() []CycleWarning {
	var warnings []CycleWarning
	for _, scc := range g.tarjan() {
		if len(scc) < 2 {
			continue
		}
		path := g.cyclePath(scc)
		warnings = append(warnings, CycleWarning{
			Path:    path,
			Message: fmt.Sprintf("causal cycle detected: %s", strings.Join(path, " → ")),
			Level:   "warning",
		})
	}
	return warnings
}

// tarjan returns strongly connected components. Self-loops never reach the
// adjacency lists, so single-node components are never cycles.
func (g *Graph) tarjan() [][]string {
	var (
		index   int
		stack   []string
		indices = make(map[string]int, len(g.order))
		lowlink = make(map[string]int, len(g.order))
		onStack = make(map[string]bool, len(g.order))
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.forward[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, id := range g.order {
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}

	// Report components in objective insertion order.
	pos := make(map[string]int, len(g.order))
	for i, id := range g.order {
		pos[id] = i
	}
	first := func(scc []string) int {
		m := len(g.order)
		for _, id := range scc {
			if pos[id] < m {
				m = pos[id]
			}
		}
		return m
	}
	for i := 1; i < len(sccs); i++ {
		for j := i; j > 0 && first(sccs[j]) < first(sccs[j-1]); j-- {
			sccs[j], sccs[j-1] = sccs[j-1], sccs[j]
		}
	}
	return sccs
}

// cyclePath finds the shortest cycle through the component's earliest
// objective, e.g. [A, B, A].
func (g *Graph) cyclePath(scc []string) []string {
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}
	var start string
	for _, id := range g.order {
		if members[id] {
			start = id
			break
		}
	}

	parent := map[string]string{}
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.forward[current] {
			if !members[next] {
				continue
			}
			if next == start {
				path := []string{start}
				for n := current; n != start; n = parent[n] {
					path = append(path, n)
				}
				// path is [start, current, ..., second]; reverse the tail.
				for i, j := 1, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return append(path, start)
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current
			queue = append(queue, next)
		}
	}
	return append(scc, scc[0])
}
