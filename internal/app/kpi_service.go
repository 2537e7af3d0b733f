package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/core/threshold"
	"github.com/example/strata/internal/ctxutil"
	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/ports/secondary"
)

// KPIServiceImpl implements the KPIService interface.
type KPIServiceImpl struct {
	kpiRepo  secondary.KPIRepository
	executor EffectExecutor
	metrics  secondary.MetricsRecorder
	logger   *slog.Logger
}

// NewKPIService creates a new KPIService with injected dependencies.
func NewKPIService(
	kpiRepo secondary.KPIRepository,
	executor EffectExecutor,
	metrics secondary.MetricsRecorder,
	logger *slog.Logger,
) *KPIServiceImpl {
	if metrics == nil {
		metrics = secondary.NopMetrics{}
	}
	return &KPIServiceImpl{
		kpiRepo:  kpiRepo,
		executor: executor,
		metrics:  metrics,
		logger:   orDefault(logger),
	}
}

// GetStatus evaluates a KPI's latest period.
func (s *KPIServiceImpl) GetStatus(ctx context.Context, kpiID string) (*primary.KPIStatus, error) {
	record, kpi, err := s.load(ctx, kpiID)
	if err != nil {
		return nil, err
	}

	eval, err := threshold.Evaluate(kpi)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStatus(string(eval.Status))

	return &primary.KPIStatus{
		ID:         record.ID,
		Name:       record.Name,
		Unit:       record.Unit,
		Evaluation: eval,
	}, nil
}

// ListStatuses evaluates every KPI and rolls the results up. A KPI with
// malformed thresholds is reported as unknown instead of failing the report.
func (s *KPIServiceImpl) ListStatuses(ctx context.Context) (*primary.KPIStatusReport, error) {
	records, err := s.kpiRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list kpis: %w", err)
	}

	report := &primary.KPIStatusReport{KPIs: make([]*primary.KPIStatus, 0, len(records))}
	evals := make([]threshold.Evaluation, 0, len(records))
	for _, r := range records {
		_, kpi, err := s.load(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		eval, err := threshold.Evaluate(kpi)
		if errors.Is(err, errs.ErrMalformedThresholds) {
			s.logger.WarnContext(ctx, "kpi has malformed thresholds",
				append(ctxutil.LogAttrs(ctx), "kpi_id", r.ID, "error", err)...)
			eval = threshold.Evaluation{
				KPIID:  r.ID,
				Status: threshold.StatusUnknown,
				Reason: err.Error(),
				Target: r.TargetValue,
			}
		} else if err != nil {
			return nil, err
		}
		s.metrics.ObserveStatus(string(eval.Status))

		evals = append(evals, eval)
		report.KPIs = append(report.KPIs, &primary.KPIStatus{
			ID:         r.ID,
			Name:       r.Name,
			Unit:       r.Unit,
			Evaluation: eval,
		})
	}
	report.Rollup = threshold.Summarize(evals)
	return report, nil
}

// GetHistory evaluates every recorded period of a KPI.
func (s *KPIServiceImpl) GetHistory(ctx context.Context, kpiID string) (*primary.KPIHistory, error) {
	record, kpi, err := s.load(ctx, kpiID)
	if err != nil {
		return nil, err
	}

	evals, err := threshold.EvaluateHistory(kpi)
	if err != nil {
		return nil, err
	}

	return &primary.KPIHistory{
		ID:      record.ID,
		Name:    record.Name,
		Unit:    record.Unit,
		Periods: evals,
		Rollup:  threshold.Summarize(evals),
	}, nil
}

// RecordValue appends a period value to a KPI. Recording never touches
// key results; they pick the value up on their next sync.
func (s *KPIServiceImpl) RecordValue(ctx context.Context, req primary.RecordValueRequest) error {
	if req.Period == "" {
		return errs.InvalidState("kpi", req.KPIID, "period is required", nil)
	}
	if err := threshold.CheckPeriod("period", req.Period); err != nil {
		return errs.InvalidState("kpi", req.KPIID, err.Error(), nil)
	}
	if _, err := s.kpiRepo.GetByID(ctx, req.KPIID); err != nil {
		return err
	}
	if existing, err := s.kpiRepo.GetValue(ctx, req.KPIID, req.Period); err == nil && existing != nil {
		return errs.InvalidState("kpi", req.KPIID, fmt.Sprintf("period %s already recorded", req.Period), nil)
	} else if err != nil && !errs.IsNotFound(err) {
		return err
	}

	if err := s.kpiRepo.AppendValue(ctx, &secondary.KPIValueRecord{
		KPIID:       req.KPIID,
		Period:      req.Period,
		Value:       req.Value,
		TargetValue: req.TargetValue,
	}); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "kpi value recorded",
		append(ctxutil.LogAttrs(ctx), "kpi_id", req.KPIID, "period", req.Period, "value", req.Value)...)
	return nil
}

// SetException flags or clears the manual-exception mark of a period.
func (s *KPIServiceImpl) SetException(ctx context.Context, req primary.SetExceptionRequest) error {
	value, err := s.kpiRepo.GetValue(ctx, req.KPIID, req.Period)
	if err != nil {
		return err
	}

	input := threshold.MarkPlanInput{
		KPIID:     req.KPIID,
		Period:    req.Period,
		Current:   toMark(value),
		Exception: req.Exception,
		Reason:    req.Reason,
	}
	if result := threshold.CanSetException(input); !result.Allowed {
		return errs.InvalidState("kpi value", req.KPIID+"/"+req.Period, result.Reason, nil)
	}

	return s.executor.Execute(ctx, threshold.GenerateMarkPlan(input))
}

func (s *KPIServiceImpl) load(ctx context.Context, kpiID string) (*secondary.KPIRecord, threshold.KPI, error) {
	record, err := s.kpiRepo.GetByID(ctx, kpiID)
	if err != nil {
		return nil, threshold.KPI{}, err
	}
	values, err := s.kpiRepo.ListValues(ctx, kpiID)
	if err != nil {
		return nil, threshold.KPI{}, err
	}
	versions, err := s.kpiRepo.ListThresholds(ctx, kpiID)
	if err != nil {
		return nil, threshold.KPI{}, err
	}
	return record, toThresholdKPI(record, values, versions), nil
}

// Ensure KPIServiceImpl implements the interface.
var _ primary.KPIService = (*KPIServiceImpl)(nil)
