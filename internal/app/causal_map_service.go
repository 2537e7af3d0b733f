package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ctxutil"
	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/ports/secondary"
)

// CausalMapServiceImpl implements the CausalMapService interface.
type CausalMapServiceImpl struct {
	objectiveRepo secondary.ObjectiveRepository
	linkRepo      secondary.CausalLinkRepository
	metrics       secondary.MetricsRecorder
	logger        *slog.Logger
}

// NewCausalMapService creates a new CausalMapService with injected dependencies.
func NewCausalMapService(
	objectiveRepo secondary.ObjectiveRepository,
	linkRepo secondary.CausalLinkRepository,
	metrics secondary.MetricsRecorder,
	logger *slog.Logger,
) *CausalMapServiceImpl {
	if metrics == nil {
		metrics = secondary.NopMetrics{}
	}
	return &CausalMapServiceImpl{
		objectiveRepo: objectiveRepo,
		linkRepo:      linkRepo,
		metrics:       metrics,
		logger:        orDefault(logger),
	}
}

// ListObjectives retrieves all BSC objectives.
func (s *CausalMapServiceImpl) ListObjectives(ctx context.Context) ([]*primary.Objective, error) {
	records, err := s.objectiveRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.Objective, 0, len(records))
	for _, r := range records {
		out = append(out, &primary.Objective{
			ID:          r.ID,
			Name:        r.Name,
			Perspective: r.Perspective,
			Description: r.Description,
		})
	}
	return out, nil
}

// Link creates a causal link. A link that closes a cycle is stored and
// the response carries a warning.
func (s *CausalMapServiceImpl) Link(ctx context.Context, req primary.LinkRequest) (*primary.LinkResponse, error) {
	graph, err := s.graph(ctx)
	if err != nil {
		return nil, err
	}

	linkCtx := causal.LinkContext{
		FromID:     req.FromObjectiveID,
		ToID:       req.ToObjectiveID,
		FromExists: graph.Has(req.FromObjectiveID),
		ToExists:   graph.Has(req.ToObjectiveID),
	}
	if linkCtx.FromExists && linkCtx.ToExists && linkCtx.FromID != linkCtx.ToID {
		exists, err := s.linkRepo.Exists(ctx, req.FromObjectiveID, req.ToObjectiveID)
		if err != nil {
			return nil, err
		}
		linkCtx.LinkExists = exists
		linkCtx.ClosesCycle = graph.WouldCloseCycle(req.FromObjectiveID, req.ToObjectiveID)
	}

	guard := causal.CanLink(linkCtx)
	if !guard.Allowed {
		switch {
		case linkCtx.FromID != linkCtx.ToID && !linkCtx.FromExists:
			return nil, errs.NotFound("objective", req.FromObjectiveID)
		case linkCtx.FromID != linkCtx.ToID && !linkCtx.ToExists:
			return nil, errs.NotFound("objective", req.ToObjectiveID)
		}
		return nil, errs.InvalidState("causal link", "", guard.Reason, nil)
	}

	id, err := s.linkRepo.GetNextID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.linkRepo.Create(ctx, &secondary.CausalLinkRecord{
		ID:              id,
		FromObjectiveID: req.FromObjectiveID,
		ToObjectiveID:   req.ToObjectiveID,
	}); err != nil {
		return nil, err
	}

	attrs := append(ctxutil.LogAttrs(ctx), "link_id", id, "from", req.FromObjectiveID, "to", req.ToObjectiveID)
	if guard.Warning != "" {
		s.metrics.ObserveCycleWarnings(1)
		s.logger.WarnContext(ctx, "causal link closes a cycle", attrs...)
	} else {
		s.logger.InfoContext(ctx, "causal link created", attrs...)
	}
	return &primary.LinkResponse{LinkID: id, Warning: guard.Warning}, nil
}

// Unlink deletes a causal link.
func (s *CausalMapServiceImpl) Unlink(ctx context.Context, linkID string) error {
	if err := s.linkRepo.Delete(ctx, linkID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "causal link deleted", append(ctxutil.LogAttrs(ctx), "link_id", linkID)...)
	return nil
}

// ListLinks retrieves all causal links with objective names and reports
// the stored links the graph ignores.
func (s *CausalMapServiceImpl) ListLinks(ctx context.Context) (*primary.LinkList, error) {
	objectives, err := s.objectiveRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.linkRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(objectives))
	for _, o := range objectives {
		names[o.ID] = o.Name
	}
	out := &primary.LinkList{Links: make([]*primary.CausalLink, 0, len(links))}
	for _, l := range links {
		out.Links = append(out.Links, &primary.CausalLink{
			ID:       l.ID,
			FromID:   l.FromObjectiveID,
			FromName: names[l.FromObjectiveID],
			ToID:     l.ToObjectiveID,
			ToName:   names[l.ToObjectiveID],
		})
	}

	graph := causal.BuildGraph(toCausalObjectives(objectives), toCausalLinks(links))
	for _, sk := range graph.Skipped() {
		out.Skipped = append(out.Skipped, primary.SkippedLink{LinkID: sk.Link.ID, Reason: sk.Reason})
	}
	return out, nil
}

// Reach lists the objectives reachable from an objective in one direction,
// with the cycles the traversal touched.
func (s *CausalMapServiceImpl) Reach(ctx context.Context, objectiveID string, dir causal.Direction) (*causal.Reach, error) {
	graph, err := s.graph(ctx)
	if err != nil {
		return nil, err
	}
	if !graph.Has(objectiveID) {
		return nil, errs.NotFound("objective", objectiveID)
	}
	reach := graph.Reach(objectiveID, dir)
	if len(reach.Cycles) > 0 {
		s.metrics.ObserveCycleWarnings(len(reach.Cycles))
	}
	return &reach, nil
}

// Cycles lists every cycle in the strategy map.
func (s *CausalMapServiceImpl) Cycles(ctx context.Context) ([]causal.CycleWarning, error) {
	graph, err := s.graph(ctx)
	if err != nil {
		return nil, err
	}
	cycles := graph.DetectCycles()
	s.metrics.ObserveCycleWarnings(len(cycles))
	return cycles, nil
}

func (s *CausalMapServiceImpl) graph(ctx context.Context) (*causal.Graph, error) {
	objectives, err := s.objectiveRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list objectives: %w", err)
	}
	links, err := s.linkRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list causal links: %w", err)
	}
	return causal.BuildGraph(toCausalObjectives(objectives), toCausalLinks(links)), nil
}

func toCausalObjectives(records []*secondary.ObjectiveRecord) []causal.Objective {
	out := make([]causal.Objective, 0, len(records))
	for _, o := range records {
		out = append(out, causal.Objective{ID: o.ID, Name: o.Name, Perspective: causal.Perspective(o.Perspective)})
	}
	return out
}

// Ensure CausalMapServiceImpl implements the interface.
var _ primary.CausalMapService = (*CausalMapServiceImpl)(nil)
