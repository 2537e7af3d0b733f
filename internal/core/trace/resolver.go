package trace

import (
	"net/url"
	"strings"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/core/keyresult"
)

// NodeType identifies the entity a trace node stands for.
type NodeType string

// Node types, from strategy down to execution.
const (
	NodeObjective  NodeType = "objective"
	NodeKPI        NodeType = "kpi"
	NodeInitiative NodeType = "initiative"
	NodeOKR        NodeType = "okr"
	NodeKeyResult  NodeType = "key_result"
	NodeTask       NodeType = "task"
)

var urlSegments = map[NodeType]string{
	NodeObjective:  "objectives",
	NodeKPI:        "kpis",
	NodeInitiative: "initiatives",
	NodeOKR:        "okrs",
	NodeKeyResult:  "key-results",
	NodeTask:       "tasks",
}

// Node is one entry of a trace path. Depth is the node's layer, counted
// from the query root.
type Node struct {
	Type  NodeType `json:"type"`
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	URL   string   `json:"url"`
	Depth int      `json:"depth"`
}

// Trace directions.
const (
	DirectionUp        = "up"
	DirectionDown      = "down"
	DirectionObjective = "objective"
)

// Result is a deduplicated, depth-ordered node list.
type Result struct {
	Direction string                `json:"direction"`
	RootType  NodeType              `json:"root_type"`
	RootID    string                `json:"root_id"`
	Nodes     []Node                `json:"nodes"`
	Warnings  []causal.CycleWarning `json:"warnings,omitempty"`
}

// Empty reports whether the trace found no traceability data.
func (r Result) Empty() bool {
	return len(r.Nodes) == 0
}

// IDsOf returns the ids of the nodes of one type, in path order.
func (r Result) IDsOf(t NodeType) []string {
	var ids []string
	for _, n := range r.Nodes {
		if n.Type == t {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// IDs returns every node id in path order.
func (r Result) IDs() []string {
	ids := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBaseURL sets the prefix used to build node URLs.
func WithBaseURL(base string) Option {
	return func(r *Resolver) {
		r.baseURL = strings.TrimRight(base, "/")
	}
}

// Resolver answers trace queries over one Dataset.
type Resolver struct {
	ix      *index
	graph   *causal.Graph
	cycles  []causal.CycleWarning
	baseURL string
}

// NewResolver indexes the dataset and builds its causal graph.
func NewResolver(ds Dataset, opts ...Option) *Resolver {
	r := &Resolver{
		ix:    buildIndex(ds),
		graph: causal.BuildGraph(ds.Objectives, ds.Links),
	}
	r.cycles = r.graph.DetectCycles()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Graph returns the causal graph built from the dataset.
func (r *Resolver) Graph() *causal.Graph {
	return r.graph
}

// Cycles returns every cycle in the causal graph.
func (r *Resolver) Cycles() []causal.CycleWarning {
	return r.cycles
}

// TraceUp walks from a task to the strategic objectives it serves:
// Task → KeyResult → OKR → Initiative → KPIs → Objectives. A task with no
// key result and no KPI link yields an empty path.
func (r *Resolver) TraceUp(taskID string) (Result, error) {
	task, ok := r.ix.tasks[taskID]
	if !ok {
		return Result{}, errs.NotFound("task", taskID)
	}
	res := Result{Direction: DirectionUp, RootType: NodeTask, RootID: taskID, Nodes: []Node{}}

	p := newPath()
	p.add(r.node(NodeTask, task.ID, task.Title, 0))
	depth := 1

	var kpiIDs, seeds []string
	if kr, ok := r.ix.krs[task.KeyResultID]; ok {
		p.add(r.node(NodeKeyResult, kr.ID, kr.Title, depth))
		depth++
		if okr, ok := r.ix.okrs[kr.OKRID]; ok {
			p.add(r.node(NodeOKR, okr.ID, okrName(okr), depth))
			depth++
			if ini, ok := r.ix.initiatives[okr.InitiativeID]; ok {
				p.add(r.node(NodeInitiative, ini.ID, ini.Name, depth))
				depth++
				kpiIDs = append(kpiIDs, r.ix.initiativeKPIs[ini.ID]...)
				seeds = append(seeds, r.ix.initiativeObjectives[ini.ID]...)
			}
		}
		if kr.Type == keyresult.TypeKPIBased && kr.KPIID != "" {
			kpiIDs = append(kpiIDs, kr.KPIID)
		}
	}
	if task.KPIID != "" {
		kpiIDs = append(kpiIDs, task.KPIID)
	}

	var measured []string
	kpiLayer := false
	for _, id := range kpiIDs {
		k, ok := r.ix.kpis[id]
		if !ok {
			continue
		}
		if p.add(r.node(NodeKPI, k.ID, k.Name, depth)) {
			kpiLayer = true
			measured = append(measured, r.ix.kpiObjectives[k.ID]...)
		}
	}
	if kpiLayer {
		depth++
	}

	reached, _ := r.expandObjectives(p, append(measured, seeds...), depth, causal.Forward)
	if len(p.nodes) == 1 {
		return res, nil
	}
	res.Nodes = p.nodes
	res.Warnings = r.cyclesTouching(reached)
	return res, nil
}

// TraceDown walks from a KPI to the work that feeds it:
// KPI → Initiatives → OKRs → KeyResults → Tasks, plus tasks linked to the
// KPI directly. Depth is fixed per layer: KPI 0, initiatives 1, OKRs 2,
// key results 3, tasks 4.
func (r *Resolver) TraceDown(kpiID string) (Result, error) {
	k, ok := r.ix.kpis[kpiID]
	if !ok {
		return Result{}, errs.NotFound("kpi", kpiID)
	}
	p := newPath()
	p.add(r.node(NodeKPI, k.ID, k.Name, 0))
	r.down(p, []string{k.ID}, nil, 1)

	return Result{Direction: DirectionDown, RootType: NodeKPI, RootID: kpiID, Nodes: p.nodes}, nil
}

// TraceObjective walks from an objective back through the objectives that
// drive it, then down to the KPIs measuring any of them and the work beneath.
func (r *Resolver) TraceObjective(objectiveID string) (Result, error) {
	if !r.graph.Has(objectiveID) {
		return Result{}, errs.NotFound("objective", objectiveID)
	}
	p := newPath()
	reached, next := r.expandObjectives(p, []string{objectiveID}, 0, causal.Backward)

	var kpiIDs, initiatives []string
	for _, id := range reached {
		kpiIDs = append(kpiIDs, r.ix.objectiveKPIs[id]...)
		initiatives = append(initiatives, r.ix.objectiveInitiatives[id]...)
	}
	var kpis []string
	for _, id := range kpiIDs {
		if k, ok := r.ix.kpis[id]; ok && p.add(r.node(NodeKPI, k.ID, k.Name, next)) {
			kpis = append(kpis, k.ID)
		}
	}
	r.down(p, kpis, initiatives, next+1)

	return Result{
		Direction: DirectionObjective,
		RootType:  NodeObjective,
		RootID:    objectiveID,
		Nodes:     p.nodes,
		Warnings:  r.cyclesTouching(reached),
	}, nil
}

// down adds initiatives, OKRs, key results and tasks beneath a set of KPIs.
// extraInitiatives join the initiative layer even without a KPI reference.
func (r *Resolver) down(p *path, kpiIDs, extraInitiatives []string, base int) {
	var initiativeIDs []string
	for _, id := range kpiIDs {
		initiativeIDs = append(initiativeIDs, r.ix.kpiInitiatives[id]...)
	}
	initiativeIDs = append(initiativeIDs, extraInitiatives...)

	var okrIDs []string
	for _, id := range initiativeIDs {
		ini, ok := r.ix.initiatives[id]
		if !ok {
			continue
		}
		if p.add(r.node(NodeInitiative, ini.ID, ini.Name, base)) {
			okrIDs = append(okrIDs, r.ix.okrsByInitiative[ini.ID]...)
		}
	}

	var krIDs []string
	for _, id := range okrIDs {
		krIDs = append(krIDs, r.ix.krsByOKR[id]...)
	}
	// kpi_based key results on these KPIs pull in their OKR, but not the
	// OKR's other key results.
	for _, kpiID := range kpiIDs {
		for _, krID := range r.ix.krsByKPI[kpiID] {
			krIDs = append(krIDs, krID)
			okrIDs = append(okrIDs, r.ix.krs[krID].OKRID)
		}
	}

	for _, id := range okrIDs {
		if okr, ok := r.ix.okrs[id]; ok {
			p.add(r.node(NodeOKR, okr.ID, okrName(okr), base+1))
		}
	}

	var taskIDs []string
	for _, id := range krIDs {
		kr, ok := r.ix.krs[id]
		if !ok {
			continue
		}
		if p.add(r.node(NodeKeyResult, kr.ID, kr.Title, base+2)) {
			taskIDs = append(taskIDs, r.ix.tasksByKR[kr.ID]...)
		}
	}
	for _, id := range kpiIDs {
		taskIDs = append(taskIDs, r.ix.tasksByKPI[id]...)
	}
	for _, id := range taskIDs {
		if t, ok := r.ix.tasks[id]; ok {
			p.add(r.node(NodeTask, t.ID, t.Title, base+3))
		}
	}
}

// expandObjectives adds the seed objectives at depth and everything they
// reach, one depth per causal hop. It returns the reached ids and the first
// depth left unused.
func (r *Resolver) expandObjectives(p *path, seeds []string, depth int, dir causal.Direction) ([]string, int) {
	var reached, level []string
	visited := map[string]bool{}
	for _, id := range seeds {
		if r.graph.Has(id) && !visited[id] {
			visited[id] = true
			level = append(level, id)
		}
	}
	for len(level) > 0 {
		var next []string
		for _, id := range level {
			o, _ := r.graph.Objective(id)
			p.add(r.node(NodeObjective, o.ID, o.Name, depth))
			reached = append(reached, id)
			for _, n := range r.graph.Neighbors(id, dir) {
				if !visited[n] {
					visited[n] = true
					next = append(next, n)
				}
			}
		}
		level = next
		depth++
	}
	return reached, depth
}

func (r *Resolver) cyclesTouching(ids []string) []causal.CycleWarning {
	if len(r.cycles) == 0 || len(ids) == 0 {
		return nil
	}
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	var out []causal.CycleWarning
	for _, w := range r.cycles {
		for _, id := range w.Path {
			if in[id] {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

func (r *Resolver) node(t NodeType, id, name string, depth int) Node {
	return Node{Type: t, ID: id, Name: name, URL: r.URL(t, id), Depth: depth}
}

// URL builds the link for an entity under the configured base.
func (r *Resolver) URL(t NodeType, id string) string {
	return r.baseURL + "/" + urlSegments[t] + "/" + url.PathEscape(id)
}

func okrName(o OKR) string {
	if o.Quarter == "" {
		return o.Objective
	}
	return o.Quarter + ": " + o.Objective
}

// LastHops keeps the nodes in the last n depth layers. n <= 0 keeps all.
func LastHops(nodes []Node, n int) []Node {
	if n <= 0 || len(nodes) == 0 {
		return nodes
	}
	maxDepth := 0
	for _, node := range nodes {
		if node.Depth > maxDepth {
			maxDepth = node.Depth
		}
	}
	out := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		if node.Depth > maxDepth-n {
			out = append(out, node)
		}
	}
	return out
}

// path accumulates nodes, keeping the first occurrence of each entity.
type path struct {
	nodes []Node
	seen  map[string]bool
}

func newPath() *path {
	return &path{nodes: []Node{}, seen: map[string]bool{}}
}

func (p *path) add(n Node) bool {
	key := string(n.Type) + ":" + n.ID
	if p.seen[key] {
		return false
	}
	p.seen[key] = true
	p.nodes = append(p.nodes, n)
	return true
}
