package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/strata/internal/ports/primary"
)

// KeyResultAdapter translates CLI operations to KeyResultService calls.
type KeyResultAdapter struct {
	service primary.KeyResultService
	out     io.Writer
}

// NewKeyResultAdapter creates a new KeyResultAdapter with the given service.
func NewKeyResultAdapter(service primary.KeyResultService, out io.Writer) *KeyResultAdapter {
	return &KeyResultAdapter{service: service, out: out}
}

// Sync recomputes a kpi_based key result.
func (a *KeyResultAdapter) Sync(ctx context.Context, keyResultID string) error {
	resp, err := a.service.SyncKeyResult(ctx, keyResultID)
	if err != nil {
		return err
	}

	source := "period " + resp.SourcePeriod
	if resp.UsedBaseline {
		source = "baseline (no usable KPI value)"
	}
	verb := "Synced"
	if !resp.Changed {
		verb = "Unchanged"
	}
	fmt.Fprintf(a.out, "✓ %s %s from %s: current %g, progress %.1f%%\n",
		verb, resp.KeyResultID, source, resp.CurrentValue, resp.Progress)
	return nil
}

// Update sets a custom key result's current value.
func (a *KeyResultAdapter) Update(ctx context.Context, keyResultID string, current float64) error {
	kr, err := a.service.UpdateKeyResult(ctx, primary.UpdateKeyResultRequest{KeyResultID: keyResultID, CurrentValue: current})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Updated %s: current %g, progress %.1f%%\n", kr.ID, kr.CurrentValue, kr.Progress)
	return nil
}

// Add creates a key result under an OKR.
func (a *KeyResultAdapter) Add(ctx context.Context, req primary.AddKeyResultRequest) error {
	kr, err := a.service.AddKeyResult(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created key result %s (%s) on %s: %s\n", kr.ID, kr.Type, kr.OKRID, kr.Title)
	return nil
}

// ShowOKR prints an OKR with its key results.
func (a *KeyResultAdapter) ShowOKR(ctx context.Context, okrID string, sync bool) error {
	okr, err := a.service.GetOKR(ctx, okrID, primary.GetOKROptions{Sync: sync})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s %s: %s\n", bold.Sprint(okr.ID), okr.Quarter, okr.Objective)
	fmt.Fprintf(a.out, "Initiative: %s\n", okr.InitiativeID)
	fmt.Fprintf(a.out, "Progress:   %s %.1f%%\n\n", progressBar(okr.Progress), okr.Progress)

	if len(okr.KeyResults) == 0 {
		fmt.Fprintln(a.out, "No key results")
		return nil
	}
	fmt.Fprintf(a.out, "%-8s %-10s %-9s %-10s %s\n", "ID", "TYPE", "PROGRESS", "CURRENT", "TITLE")
	fmt.Fprintln(a.out, rule)
	stale := 0
	for _, kr := range okr.KeyResults {
		marker := ""
		if kr.Stale {
			marker = yellow.Sprint(" (stale)")
			stale++
		}
		fmt.Fprintf(a.out, "%-8s %-10s %-9s %-10g %s%s\n",
			kr.ID, kr.Type, fmt.Sprintf("%.1f%%", kr.Progress), kr.CurrentValue, kr.Title, marker)
	}
	fmt.Fprintln(a.out)
	if stale > 0 {
		warn(a.out, fmt.Sprintf("%d key result(s) behind their KPI. Run: strata okr show %s --sync", stale, okr.ID))
	}
	return nil
}
