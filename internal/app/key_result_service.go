package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/core/keyresult"
	"github.com/example/strata/internal/core/threshold"
	"github.com/example/strata/internal/ctxutil"
	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/ports/secondary"
)

// KeyResultServiceImpl implements the KeyResultService interface.
type KeyResultServiceImpl struct {
	krRepo   secondary.KeyResultRepository
	kpiRepo  secondary.KPIRepository
	okrRepo  secondary.OKRRepository
	executor EffectExecutor
	metrics  secondary.MetricsRecorder
	logger   *slog.Logger
	clock    func() time.Time
}

// NewKeyResultService creates a new KeyResultService with injected dependencies.
func NewKeyResultService(
	krRepo secondary.KeyResultRepository,
	kpiRepo secondary.KPIRepository,
	okrRepo secondary.OKRRepository,
	executor EffectExecutor,
	metrics secondary.MetricsRecorder,
	logger *slog.Logger,
) *KeyResultServiceImpl {
	if metrics == nil {
		metrics = secondary.NopMetrics{}
	}
	return &KeyResultServiceImpl{
		krRepo:   krRepo,
		kpiRepo:  kpiRepo,
		okrRepo:  okrRepo,
		executor: executor,
		metrics:  metrics,
		logger:   orDefault(logger),
		clock:    time.Now,
	}
}

// SyncKeyResult recomputes a kpi_based key result from its KPI's latest
// usable value and stores the snapshot.
func (s *KeyResultServiceImpl) SyncKeyResult(ctx context.Context, keyResultID string) (*primary.SyncResponse, error) {
	record, err := s.krRepo.GetByID(ctx, keyResultID)
	if err != nil {
		return nil, err
	}
	return s.sync(ctx, record)
}

func (s *KeyResultServiceImpl) sync(ctx context.Context, record *secondary.KeyResultRecord) (*primary.SyncResponse, error) {
	input := keyresult.SyncPlanInput{KeyResult: toKeyResult(record), Now: s.clock()}
	if record.KRType == string(keyresult.TypeKPIBased) && record.KPIID != "" {
		values, err := s.kpiRepo.ListValues(ctx, record.KPIID)
		if err != nil {
			s.metrics.ObserveSync("error")
			return nil, err
		}
		input.Values = toValues(values)
	}

	plan, err := keyresult.GenerateSyncPlan(input)
	if err != nil {
		s.metrics.ObserveSync("error")
		return nil, err
	}
	if err := s.executor.Execute(ctx, plan.Effects); err != nil {
		s.metrics.ObserveSync("error")
		return nil, err
	}

	outcome := "unchanged"
	if plan.Changed {
		outcome = "changed"
	}
	s.metrics.ObserveSync(outcome)

	res := plan.Result
	return &primary.SyncResponse{
		KeyResultID:  res.KeyResultID,
		KPIID:        res.KPIID,
		CurrentValue: res.CurrentValue,
		Progress:     res.Progress,
		SourcePeriod: res.SourcePeriod,
		UsedBaseline: res.UsedBaseline,
		Changed:      plan.Changed,
		LastSyncedAt: formatTimestamp(input.Now),
	}, nil
}

// UpdateKeyResult sets the current value of a custom key result and
// recomputes its progress against the target.
func (s *KeyResultServiceImpl) UpdateKeyResult(ctx context.Context, req primary.UpdateKeyResultRequest) (*primary.KeyResult, error) {
	record, err := s.krRepo.GetByID(ctx, req.KeyResultID)
	if err != nil {
		return nil, err
	}

	guard := keyresult.CanUpdateManually(keyresult.UpdateContext{
		KeyResultID: record.ID,
		Type:        keyresult.Type(record.KRType),
	})
	if !guard.Allowed {
		return nil, errs.InvalidState("key result", record.ID, guard.Reason, nil)
	}
	if record.TargetValue == nil {
		return nil, errs.InvalidState("key result", record.ID, "custom key result has no target", nil)
	}

	progress := keyresult.CustomProgress(req.CurrentValue, *record.TargetValue)
	if err := s.krRepo.UpdateCurrent(ctx, record.ID, req.CurrentValue, progress); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "key result updated",
		append(ctxutil.LogAttrs(ctx), "key_result_id", record.ID, "current_value", req.CurrentValue, "progress", progress)...)

	updated, err := s.krRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	return toPortKeyResult(updated, false), nil
}

// AddKeyResult creates a key result under an OKR.
func (s *KeyResultServiceImpl) AddKeyResult(ctx context.Context, req primary.AddKeyResultRequest) (*primary.KeyResult, error) {
	addCtx := keyresult.AddContext{OKRID: req.OKRID}
	if _, err := s.okrRepo.GetByID(ctx, req.OKRID); err == nil {
		addCtx.OKRExists = true
	} else if !errs.IsNotFound(err) {
		return nil, err
	}
	if addCtx.OKRExists {
		n, err := s.krRepo.CountByOKR(ctx, req.OKRID)
		if err != nil {
			return nil, err
		}
		addCtx.ExistingCount = n
	}
	if guard := keyresult.CanAddKeyResult(addCtx); !guard.Allowed {
		if !addCtx.OKRExists {
			return nil, errs.NotFound("okr", req.OKRID)
		}
		return nil, errs.InvalidState("okr", req.OKRID, guard.Reason, nil)
	}

	kr := keyresult.KeyResult{
		OKRID:       req.OKRID,
		Title:       req.Title,
		Type:        keyresult.Type(req.Type),
		KPIID:       req.KPIID,
		KPIBaseline: req.Baseline,
		KPITarget:   req.KPITarget,
		Target:      req.Target,
	}
	if err := keyresult.ValidateShape(kr); err != nil {
		return nil, err
	}
	if kr.Type == keyresult.TypeKPIBased {
		if _, err := s.kpiRepo.GetByID(ctx, kr.KPIID); err != nil {
			return nil, err
		}
		// A kpi_based result starts at its baseline until the first sync.
		kr.Current = *kr.KPIBaseline
	}

	id, err := s.krRepo.GetNextID(ctx)
	if err != nil {
		return nil, err
	}
	record := &secondary.KeyResultRecord{
		ID:               id,
		OKRID:            kr.OKRID,
		Title:            kr.Title,
		KRType:           string(kr.Type),
		KPIID:            kr.KPIID,
		KPIBaselineValue: kr.KPIBaseline,
		KPITargetValue:   kr.KPITarget,
		TargetValue:      kr.Target,
		CurrentValue:     kr.Current,
	}
	if err := s.krRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create key result: %w", err)
	}
	s.logger.InfoContext(ctx, "key result added",
		append(ctxutil.LogAttrs(ctx), "key_result_id", id, "okr_id", req.OKRID, "kr_type", req.Type)...)

	created, err := s.krRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPortKeyResult(created, false), nil
}

// GetOKR retrieves an OKR with its key results. With opts.Sync the
// kpi_based results are synced before reading; otherwise stale snapshots
// are flagged.
func (s *KeyResultServiceImpl) GetOKR(ctx context.Context, okrID string, opts primary.GetOKROptions) (*primary.OKR, error) {
	okr, err := s.okrRepo.GetByID(ctx, okrID)
	if err != nil {
		return nil, err
	}

	records, err := s.krRepo.List(ctx, secondary.KeyResultFilters{OKRID: okrID})
	if err != nil {
		return nil, err
	}

	if opts.Sync {
		for _, r := range records {
			if r.KRType != string(keyresult.TypeKPIBased) {
				continue
			}
			if _, err := s.sync(ctx, r); err != nil {
				return nil, fmt.Errorf("sync %s: %w", r.ID, err)
			}
		}
		records, err = s.krRepo.List(ctx, secondary.KeyResultFilters{OKRID: okrID})
		if err != nil {
			return nil, err
		}
	}

	out := &primary.OKR{
		ID:           okr.ID,
		InitiativeID: okr.InitiativeID,
		Quarter:      okr.Quarter,
		Objective:    okr.Objective,
		KeyResults:   make([]*primary.KeyResult, 0, len(records)),
	}
	values := make(map[string][]threshold.Value)
	for _, r := range records {
		if r.KRType != string(keyresult.TypeKPIBased) {
			continue
		}
		if _, ok := values[r.KPIID]; ok {
			continue
		}
		list, err := s.kpiRepo.ListValues(ctx, r.KPIID)
		if err != nil {
			return nil, err
		}
		values[r.KPIID] = toValues(list)
	}

	krs := make([]keyresult.KeyResult, 0, len(records))
	for _, r := range records {
		kr := toKeyResult(r)
		stale := false
		if kr.Type == keyresult.TypeKPIBased {
			stale = keyresult.IsStale(kr, values[kr.KPIID])
		}
		krs = append(krs, kr)
		out.KeyResults = append(out.KeyResults, toPortKeyResult(r, stale))
	}
	out.Progress = keyresult.OKRProgress(krs)
	return out, nil
}

// Ensure KeyResultServiceImpl implements the interface.
var _ primary.KeyResultService = (*KeyResultServiceImpl)(nil)
