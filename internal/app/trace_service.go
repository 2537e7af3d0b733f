package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/core/keyresult"
	"github.com/example/strata/internal/core/trace"
	"github.com/example/strata/internal/ctxutil"
	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/ports/secondary"
)

// TraceSources groups the repositories a trace query reads.
type TraceSources struct {
	Objectives  secondary.ObjectiveRepository
	Links       secondary.CausalLinkRepository
	KPIs        secondary.KPIRepository
	Initiatives secondary.InitiativeRepository
	OKRs        secondary.OKRRepository
	KeyResults  secondary.KeyResultRepository
	Tasks       secondary.TaskRepository
}

// TraceServiceImpl implements the TraceService interface.
// Every query loads a fresh dataset and resolves paths from it.
type TraceServiceImpl struct {
	src     TraceSources
	baseURL string
	metrics secondary.MetricsRecorder
	logger  *slog.Logger
}

// NewTraceService creates a new TraceService. baseURL prefixes every node URL.
func NewTraceService(src TraceSources, baseURL string, metrics secondary.MetricsRecorder, logger *slog.Logger) *TraceServiceImpl {
	if metrics == nil {
		metrics = secondary.NopMetrics{}
	}
	return &TraceServiceImpl{
		src:     src,
		baseURL: baseURL,
		metrics: metrics,
		logger:  orDefault(logger),
	}
}

// TraceUp resolves the path from a task to the objectives it serves.
func (s *TraceServiceImpl) TraceUp(ctx context.Context, taskID string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	return s.run(ctx, opts, func(r *trace.Resolver) (trace.Result, error) { return r.TraceUp(taskID) })
}

// TraceDown resolves the work beneath a KPI.
func (s *TraceServiceImpl) TraceDown(ctx context.Context, kpiID string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	return s.run(ctx, opts, func(r *trace.Resolver) (trace.Result, error) { return r.TraceDown(kpiID) })
}

// TraceObjective resolves the drivers of an objective and the work beneath them.
func (s *TraceServiceImpl) TraceObjective(ctx context.Context, objectiveID string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	return s.run(ctx, opts, func(r *trace.Resolver) (trace.Result, error) { return r.TraceObjective(objectiveID) })
}

func (s *TraceServiceImpl) run(ctx context.Context, opts primary.TraceOptions, query func(*trace.Resolver) (trace.Result, error)) (*primary.TraceResult, error) {
	start := time.Now()

	ds, err := s.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	resolver := trace.NewResolver(ds, trace.WithBaseURL(s.baseURL))

	res, err := query(resolver)
	if err != nil {
		return nil, err
	}

	nodes := trace.LastHops(res.Nodes, opts.Hops)
	out := &primary.TraceResult{
		Direction: res.Direction,
		RootType:  string(res.RootType),
		RootID:    res.RootID,
		Nodes:     nodes,
		Hidden:    len(res.Nodes) - len(nodes),
		Warnings:  res.Warnings,
	}

	s.metrics.ObserveTrace(res.Direction, len(res.Nodes), time.Since(start))
	if len(res.Warnings) > 0 {
		s.metrics.ObserveCycleWarnings(len(res.Warnings))
		for _, w := range res.Warnings {
			s.logger.WarnContext(ctx, w.Message,
				append(ctxutil.LogAttrs(ctx), "direction", res.Direction, "root_id", res.RootID)...)
		}
	}
	return out, nil
}

// LoadDataset reads every entity class a trace can touch. The reads are
// independent and run concurrently.
func (s *TraceServiceImpl) LoadDataset(ctx context.Context) (trace.Dataset, error) {
	var (
		ds         trace.Dataset
		objectives []*secondary.ObjectiveRecord
		links      []*secondary.CausalLinkRecord
		kpis       []*secondary.KPIRecord
		kpiObjs    []secondary.PairRecord
		inits      []*secondary.InitiativeRecord
		initKPIs   []secondary.PairRecord
		initObjs   []secondary.PairRecord
		okrs       []*secondary.OKRRecord
		krs        []*secondary.KeyResultRecord
		tasks      []*secondary.TaskRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { objectives, err = s.src.Objectives.List(gctx); return })
	g.Go(func() (err error) { links, err = s.src.Links.List(gctx); return })
	g.Go(func() (err error) { kpis, err = s.src.KPIs.List(gctx); return })
	g.Go(func() (err error) { kpiObjs, err = s.src.KPIs.ListObjectivePairs(gctx); return })
	g.Go(func() (err error) { inits, err = s.src.Initiatives.List(gctx); return })
	g.Go(func() (err error) { initKPIs, err = s.src.Initiatives.ListKPIPairs(gctx); return })
	g.Go(func() (err error) { initObjs, err = s.src.Initiatives.ListObjectivePairs(gctx); return })
	g.Go(func() (err error) { okrs, err = s.src.OKRs.List(gctx, secondary.OKRFilters{}); return })
	g.Go(func() (err error) { krs, err = s.src.KeyResults.List(gctx, secondary.KeyResultFilters{}); return })
	g.Go(func() (err error) { tasks, err = s.src.Tasks.List(gctx, secondary.TaskFilters{}); return })
	if err := g.Wait(); err != nil {
		return trace.Dataset{}, fmt.Errorf("failed to load trace dataset: %w", err)
	}

	ds.Objectives = toCausalObjectives(objectives)
	ds.Links = toCausalLinks(links)
	for _, k := range kpis {
		ds.KPIs = append(ds.KPIs, trace.KPI{ID: k.ID, Name: k.Name})
	}
	ds.KPIObjectives = toPairs(kpiObjs)
	for _, i := range inits {
		ds.Initiatives = append(ds.Initiatives, trace.Initiative{ID: i.ID, Name: i.Name, Status: i.Status})
	}
	ds.InitiativeKPIs = toPairs(initKPIs)
	ds.InitiativeObjectives = toPairs(initObjs)
	for _, o := range okrs {
		ds.OKRs = append(ds.OKRs, trace.OKR{ID: o.ID, InitiativeID: o.InitiativeID, Quarter: o.Quarter, Objective: o.Objective})
	}
	for _, kr := range krs {
		ds.KeyResults = append(ds.KeyResults, trace.KeyResult{
			ID:    kr.ID,
			OKRID: kr.OKRID,
			Title: kr.Title,
			Type:  keyresult.Type(kr.KRType),
			KPIID: kr.KPIID,
		})
	}
	for _, t := range tasks {
		ds.Tasks = append(ds.Tasks, trace.Task{
			ID:          t.ID,
			Title:       t.Title,
			Status:      t.Status,
			KeyResultID: t.KeyResultID,
			KPIID:       t.KPIID,
		})
	}
	return ds, nil
}

func toCausalLinks(links []*secondary.CausalLinkRecord) []causal.Link {
	out := make([]causal.Link, 0, len(links))
	for _, l := range links {
		out = append(out, causal.Link{ID: l.ID, From: l.FromObjectiveID, To: l.ToObjectiveID})
	}
	return out
}

func toPairs(pairs []secondary.PairRecord) []trace.Pair {
	out := make([]trace.Pair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, trace.Pair{Left: p.Left, Right: p.Right})
	}
	return out
}

// Ensure TraceServiceImpl implements the interface.
var _ primary.TraceService = (*TraceServiceImpl)(nil)
