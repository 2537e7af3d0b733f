// Package trace resolves traceability paths between tasks and strategic
// objectives. The resolver is pure: callers load a Dataset, and every query
// re-resolves paths from it. Nothing is materialized or cached.
package trace

import (
	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/core/keyresult"
)

// Pair is one row of a many-to-many relation set.
type Pair struct {
	Left  string
	Right string
}

// KPI is the resolver's view of an indicator.
type KPI struct {
	ID   string
	Name string
}

// Initiative is a strategic project.
type Initiative struct {
	ID     string
	Name   string
	Status string
}

// OKR is a quarterly objective owned by an initiative.
type OKR struct {
	ID           string
	InitiativeID string
	Quarter      string
	Objective    string
}

// KeyResult belongs to an OKR; kpi_based results carry their KPI.
type KeyResult struct {
	ID    string
	OKRID string
	Title string
	Type  keyresult.Type
	KPIID string
}

// Task is optionally linked to a key result and/or directly to a KPI.
type Task struct {
	ID          string
	Title       string
	Status      string
	KeyResultID string
	KPIID       string
}

// Dataset is everything a trace query reads. Relation sets are kept as
// Pairs: KPIObjectives is (kpi, objective), InitiativeKPIs is
// (initiative, kpi), InitiativeObjectives is (initiative, objective).
type Dataset struct {
	Objectives           []causal.Objective
	Links                []causal.Link
	KPIs                 []KPI
	KPIObjectives        []Pair
	Initiatives          []Initiative
	InitiativeKPIs       []Pair
	InitiativeObjectives []Pair
	OKRs                 []OKR
	KeyResults           []KeyResult
	Tasks                []Task
}

// index holds id lookups and both directions of every relation set.
type index struct {
	kpis        map[string]KPI
	initiatives map[string]Initiative
	okrs        map[string]OKR
	krs         map[string]KeyResult
	tasks       map[string]Task

	kpiObjectives        map[string][]string
	objectiveKPIs        map[string][]string
	initiativeKPIs       map[string][]string
	kpiInitiatives       map[string][]string
	initiativeObjectives map[string][]string
	objectiveInitiatives map[string][]string
	okrsByInitiative     map[string][]string
	krsByOKR             map[string][]string
	krsByKPI             map[string][]string
	tasksByKR            map[string][]string
	tasksByKPI           map[string][]string
}

func buildIndex(ds Dataset) *index {
	ix := &index{
		kpis:                 make(map[string]KPI, len(ds.KPIs)),
		initiatives:          make(map[string]Initiative, len(ds.Initiatives)),
		okrs:                 make(map[string]OKR, len(ds.OKRs)),
		krs:                  make(map[string]KeyResult, len(ds.KeyResults)),
		tasks:                make(map[string]Task, len(ds.Tasks)),
		kpiObjectives:        map[string][]string{},
		objectiveKPIs:        map[string][]string{},
		initiativeKPIs:       map[string][]string{},
		kpiInitiatives:       map[string][]string{},
		initiativeObjectives: map[string][]string{},
		objectiveInitiatives: map[string][]string{},
		okrsByInitiative:     map[string][]string{},
		krsByOKR:             map[string][]string{},
		krsByKPI:             map[string][]string{},
		tasksByKR:            map[string][]string{},
		tasksByKPI:           map[string][]string{},
	}

	for _, k := range ds.KPIs {
		ix.kpis[k.ID] = k
	}
	for _, i := range ds.Initiatives {
		ix.initiatives[i.ID] = i
	}
	for _, o := range ds.OKRs {
		ix.okrs[o.ID] = o
		ix.okrsByInitiative[o.InitiativeID] = append(ix.okrsByInitiative[o.InitiativeID], o.ID)
	}
	for _, kr := range ds.KeyResults {
		ix.krs[kr.ID] = kr
		ix.krsByOKR[kr.OKRID] = append(ix.krsByOKR[kr.OKRID], kr.ID)
		if kr.Type == keyresult.TypeKPIBased && kr.KPIID != "" {
			ix.krsByKPI[kr.KPIID] = append(ix.krsByKPI[kr.KPIID], kr.ID)
		}
	}
	for _, t := range ds.Tasks {
		ix.tasks[t.ID] = t
		if t.KeyResultID != "" {
			ix.tasksByKR[t.KeyResultID] = append(ix.tasksByKR[t.KeyResultID], t.ID)
		}
		if t.KPIID != "" {
			ix.tasksByKPI[t.KPIID] = append(ix.tasksByKPI[t.KPIID], t.ID)
		}
	}
	for _, p := range ds.KPIObjectives {
		ix.kpiObjectives[p.Left] = append(ix.kpiObjectives[p.Left], p.Right)
		ix.objectiveKPIs[p.Right] = append(ix.objectiveKPIs[p.Right], p.Left)
	}
	for _, p := range ds.InitiativeKPIs {
		ix.initiativeKPIs[p.Left] = append(ix.initiativeKPIs[p.Left], p.Right)
		ix.kpiInitiatives[p.Right] = append(ix.kpiInitiatives[p.Right], p.Left)
	}
	for _, p := range ds.InitiativeObjectives {
		ix.initiativeObjectives[p.Left] = append(ix.initiativeObjectives[p.Left], p.Right)
		ix.objectiveInitiatives[p.Right] = append(ix.objectiveInitiatives[p.Right], p.Left)
	}
	return ix
}
