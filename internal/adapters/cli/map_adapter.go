package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/ports/primary"
)

// MapAdapter translates CLI operations to CausalMapService calls.
type MapAdapter struct {
	service primary.CausalMapService
	out     io.Writer
}

// NewMapAdapter creates a new MapAdapter with the given service.
func NewMapAdapter(service primary.CausalMapService, out io.Writer) *MapAdapter {
	return &MapAdapter{service: service, out: out}
}

// Link creates a causal link.
func (a *MapAdapter) Link(ctx context.Context, fromID, toID string) error {
	resp, err := a.service.Link(ctx, primary.LinkRequest{FromObjectiveID: fromID, ToObjectiveID: toID})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created %s: %s → %s\n", resp.LinkID, fromID, toID)
	if resp.Warning != "" {
		warn(a.out, resp.Warning)
	}
	return nil
}

// Unlink deletes a causal link.
func (a *MapAdapter) Unlink(ctx context.Context, linkID string) error {
	if err := a.service.Unlink(ctx, linkID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted %s\n", linkID)
	return nil
}

// List prints objectives grouped by perspective, then every link.
func (a *MapAdapter) List(ctx context.Context) error {
	objectives, err := a.service.ListObjectives(ctx)
	if err != nil {
		return fmt.Errorf("failed to list objectives: %w", err)
	}
	links, err := a.service.ListLinks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list causal links: %w", err)
	}

	if len(objectives) == 0 {
		fmt.Fprintln(a.out, "No objectives found")
		return nil
	}

	fmt.Fprintln(a.out)
	for _, p := range []causal.Perspective{
		causal.PerspectiveFinancial,
		causal.PerspectiveCustomer,
		causal.PerspectiveInternalProcess,
		causal.PerspectiveLearningGrowth,
	} {
		var rows []*primary.Objective
		for _, o := range objectives {
			if o.Perspective == string(p) {
				rows = append(rows, o)
			}
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintln(a.out, bold.Sprint(strings.ToUpper(strings.ReplaceAll(string(p), "_", " "))))
		for _, o := range rows {
			fmt.Fprintf(a.out, "  %-10s %s\n", o.ID, o.Name)
		}
	}

	fmt.Fprintf(a.out, "\n%-10s %-10s %-10s\n", "LINK", "FROM", "TO")
	fmt.Fprintln(a.out, rule)
	for _, l := range links.Links {
		fmt.Fprintf(a.out, "%-10s %-10s %-10s %s → %s\n", l.ID, l.FromID, l.ToID, l.FromName, l.ToName)
	}
	fmt.Fprintln(a.out)
	for _, s := range links.Skipped {
		warn(a.out, fmt.Sprintf("%s ignored: %s", s.LinkID, s.Reason))
	}
	return nil
}

// Reach prints the objectives reachable from an objective.
func (a *MapAdapter) Reach(ctx context.Context, objectiveID string, dir causal.Direction) error {
	reach, err := a.service.Reach(ctx, objectiveID, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s): %s\n", reach.Start, reach.Direction, strings.Join(reach.IDs, " → "))
	for _, c := range reach.Cycles {
		warn(a.out, c.Message)
	}
	return nil
}

// Cycles prints every cycle in the strategy map.
func (a *MapAdapter) Cycles(ctx context.Context) error {
	cycles, err := a.service.Cycles(ctx)
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		fmt.Fprintln(a.out, green.Sprint("✓ No causal cycles"))
		return nil
	}
	for _, c := range cycles {
		warn(a.out, c.Message)
	}
	return nil
}
