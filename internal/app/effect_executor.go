// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/strata/internal/core/effects"
	"github.com/example/strata/internal/ctxutil"
	"github.com/example/strata/internal/logging"
	"github.com/example/strata/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against the repositories.
type DefaultEffectExecutor struct {
	kpiRepo       secondary.KPIRepository
	keyResultRepo secondary.KeyResultRepository
	workflowRepo  secondary.WorkflowRepository
	logger        *slog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor with injected repositories.
func NewEffectExecutor(
	kpiRepo secondary.KPIRepository,
	keyResultRepo secondary.KeyResultRepository,
	workflowRepo secondary.WorkflowRepository,
	logger *slog.Logger,
) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		kpiRepo:       kpiRepo,
		keyResultRepo: keyResultRepo,
		workflowRepo:  workflowRepo,
		logger:        orDefault(logger),
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.KeyResultSnapshotEffect:
		return e.keyResultRepo.UpdateSnapshot(ctx, typed.KeyResultID, typed.CurrentValue, typed.Progress,
			typed.SourcePeriod, formatTimestamp(typed.SyncedAt))
	case effects.ValueMarkEffect:
		return e.kpiRepo.SetMark(ctx, typed.KPIID, typed.Period, typed.Exception, typed.Reason)
	case effects.ConsultationRecordEffect:
		return e.workflowRepo.CreateRecord(ctx, &secondary.ConsultationRecord{
			ID:          typed.RecordID,
			WorkflowID:  typed.WorkflowID,
			UserID:      typed.UserID,
			Status:      typed.Status,
			Comment:     typed.Comment,
			SubmittedAt: formatTimestamp(typed.SubmittedAt),
		})
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.NoEffect:
		return nil
	case effects.LogEffect:
		e.log(ctx, typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) log(ctx context.Context, eff effects.LogEffect) {
	level, err := logging.ParseLevel(eff.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	keys := make([]string, 0, len(eff.Fields))
	for k := range eff.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := ctxutil.LogAttrs(ctx)
	for _, k := range keys {
		attrs = append(attrs, k, eff.Fields[k])
	}
	e.logger.Log(ctx, level, eff.Message, attrs...)
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Ensure DefaultEffectExecutor implements the interface
var _ EffectExecutor = (*DefaultEffectExecutor)(nil)
