package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/wire"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Evaluate and record KPIs",
	Long:  "Show KPI status against the active thresholds, record period values and flag exceptions",
}

var kpiStatusCmd = &cobra.Command{
	Use:   "status [kpi-id]",
	Short: "Show the latest status of a KPI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.KPIAdapter().Status(cmd.Context(), args[0])
	},
}

var kpiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every KPI with its status and the rollup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.KPIAdapter().List(cmd.Context())
	},
}

var kpiHistoryCmd = &cobra.Command{
	Use:   "history [kpi-id]",
	Short: "Show the status of every recorded period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.KPIAdapter().History(cmd.Context(), args[0])
	},
}

var kpiRecordCmd = &cobra.Command{
	Use:   "record [kpi-id] [period] [value]",
	Short: "Record a period value",
	Long: `Append a value for a period. A period can be recorded only once.

Examples:
  strata kpi record KPI-001 2024-04 87.5
  strata kpi record KPI-001 2024-04 87.5 --target 95`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[2], err)
		}
		target, _ := cmd.Flags().GetFloat64("target")

		return wire.KPIAdapter().Record(cmd.Context(), primary.RecordValueRequest{
			KPIID:       args[0],
			Period:      args[1],
			Value:       value,
			TargetValue: target,
		})
	},
}

var kpiExceptionCmd = &cobra.Command{
	Use:   "exception [kpi-id] [period]",
	Short: "Flag or clear a manual exception on a period",
	Long: `Flag a period as a manual exception so it is excluded from rollups and
key result syncs, or clear the flag with --clear.

Examples:
  strata kpi exception KPI-002 2024-02 --reason "portal outage"
  strata kpi exception KPI-002 2024-02 --clear`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		clearMark, _ := cmd.Flags().GetBool("clear")

		return wire.KPIAdapter().Exception(cmd.Context(), primary.SetExceptionRequest{
			KPIID:     args[0],
			Period:    args[1],
			Exception: !clearMark,
			Reason:    reason,
		})
	},
}

// KPICmd returns the kpi command
func KPICmd() *cobra.Command {
	kpiRecordCmd.Flags().Float64("target", 0, "Target for this period (default: the KPI target)")
	kpiExceptionCmd.Flags().StringP("reason", "r", "", "Why the period is an exception")
	kpiExceptionCmd.Flags().Bool("clear", false, "Clear the exception flag")

	kpiCmd.AddCommand(kpiStatusCmd)
	kpiCmd.AddCommand(kpiListCmd)
	kpiCmd.AddCommand(kpiHistoryCmd)
	kpiCmd.AddCommand(kpiRecordCmd)
	kpiCmd.AddCommand(kpiExceptionCmd)

	return kpiCmd
}
