package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/strata/internal/wire"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Trace work to strategy and back",
	Long: `Resolve traceability paths across the strategy hierarchy:
objective → KPI → initiative → OKR → key result → task.

--hops N keeps only the last N layers of the path (0 shows all). Without the
flag the trace.display_hops setting applies.`,
}

var traceUpCmd = &cobra.Command{
	Use:   "up [task-id]",
	Short: "Trace a task up to the objectives it serves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hops, err := hopsFlag(cmd)
		if err != nil {
			return err
		}
		return wire.TraceAdapter().Up(cmd.Context(), args[0], hops)
	},
}

var traceDownCmd = &cobra.Command{
	Use:   "down [kpi-id]",
	Short: "Trace a KPI down to the work beneath it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hops, err := hopsFlag(cmd)
		if err != nil {
			return err
		}
		return wire.TraceAdapter().Down(cmd.Context(), args[0], hops)
	},
}

var traceObjectiveCmd = &cobra.Command{
	Use:   "objective [objective-id]",
	Short: "Trace an objective through its drivers to the work beneath them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hops, err := hopsFlag(cmd)
		if err != nil {
			return err
		}
		return wire.TraceAdapter().Objective(cmd.Context(), args[0], hops)
	},
}

func hopsFlag(cmd *cobra.Command) (int, error) {
	if !cmd.Flags().Changed("hops") {
		return wire.Config().Trace.DisplayHops, nil
	}
	hops, _ := cmd.Flags().GetInt("hops")
	if hops < 0 {
		return 0, fmt.Errorf("--hops must not be negative, got %d", hops)
	}
	return hops, nil
}

// TraceCmd returns the trace command
func TraceCmd() *cobra.Command {
	for _, c := range []*cobra.Command{traceUpCmd, traceDownCmd, traceObjectiveCmd} {
		c.Flags().Int("hops", 0, "Show only the last N layers (0 shows all)")
		traceCmd.AddCommand(c)
	}
	return traceCmd
}
