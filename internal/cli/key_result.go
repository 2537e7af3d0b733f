package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/wire"
)

var krCmd = &cobra.Command{
	Use:     "kr",
	Aliases: []string{"key-result"},
	Short:   "Manage key results",
}

var krSyncCmd = &cobra.Command{
	Use:   "sync [kr-id]",
	Short: "Recompute a kpi_based key result from its KPI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.KeyResultAdapter().Sync(cmd.Context(), args[0])
	},
}

var krUpdateCmd = &cobra.Command{
	Use:   "update [kr-id] [current-value]",
	Short: "Set the current value of a custom key result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		return wire.KeyResultAdapter().Update(cmd.Context(), args[0], current)
	},
}

var krAddCmd = &cobra.Command{
	Use:   "add [okr-id] [title]",
	Short: "Add a key result to an OKR",
	Long: `Add a key result to an OKR (at most 5 per OKR).

A kpi_based key result tracks a KPI between a baseline and a target and
starts at its baseline. A custom key result has its own target and is
updated by hand.

Examples:
  strata kr add OKR-001 "Process 500 applications" --kpi KPI-002 --baseline 400 --kpi-target 500
  strata kr add OKR-001 "Publish 100 guides" --target 100`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.AddKeyResultRequest{OKRID: args[0], Title: args[1], Type: "custom"}
		req.KPIID, _ = cmd.Flags().GetString("kpi")
		if req.KPIID != "" {
			req.Type = "kpi_based"
		}
		req.Baseline = floatFlag(cmd, "baseline")
		req.KPITarget = floatFlag(cmd, "kpi-target")
		req.Target = floatFlag(cmd, "target")

		return wire.KeyResultAdapter().Add(cmd.Context(), req)
	},
}

var okrCmd = &cobra.Command{
	Use:   "okr",
	Short: "Show OKRs",
}

var okrShowCmd = &cobra.Command{
	Use:   "show [okr-id]",
	Short: "Show an OKR with its key results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sync, _ := cmd.Flags().GetBool("sync")
		return wire.KeyResultAdapter().ShowOKR(cmd.Context(), args[0], sync)
	},
}

var okrSyncCmd = &cobra.Command{
	Use:   "sync [okr-id]",
	Short: "Sync every kpi_based key result of an OKR and show it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.KeyResultAdapter().ShowOKR(cmd.Context(), args[0], true)
	},
}

// floatFlag returns nil unless the flag was set.
func floatFlag(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

// KeyResultCmd returns the kr command
func KeyResultCmd() *cobra.Command {
	krAddCmd.Flags().String("kpi", "", "KPI to track (makes the key result kpi_based)")
	krAddCmd.Flags().Float64("baseline", 0, "KPI value at the start (kpi_based)")
	krAddCmd.Flags().Float64("kpi-target", 0, "KPI value that means done (kpi_based)")
	krAddCmd.Flags().Float64("target", 0, "Target value (custom)")

	krCmd.AddCommand(krSyncCmd)
	krCmd.AddCommand(krUpdateCmd)
	krCmd.AddCommand(krAddCmd)

	return krCmd
}

// OKRCmd returns the okr command
func OKRCmd() *cobra.Command {
	okrShowCmd.Flags().Bool("sync", false, "Sync kpi_based key results before showing")

	okrCmd.AddCommand(okrShowCmd)
	okrCmd.AddCommand(okrSyncCmd)

	return okrCmd
}
