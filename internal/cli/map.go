package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/wire"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Edit and inspect the strategy map",
	Long:  "Manage cause-effect links between BSC objectives",
}

var mapLinkCmd = &cobra.Command{
	Use:   "link [from-objective] [to-objective]",
	Short: "Link a driver objective to the objective it drives",
	Long: `Create a cause-effect link. Links that close a cycle are stored and
reported as a warning.

Examples:
  strata map link OBJ-004 OBJ-003`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.MapAdapter().Link(cmd.Context(), args[0], args[1])
	},
}

var mapUnlinkCmd = &cobra.Command{
	Use:   "unlink [link-id]",
	Short: "Delete a causal link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.MapAdapter().Unlink(cmd.Context(), args[0])
	},
}

var mapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List objectives by perspective and every causal link",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.MapAdapter().List(cmd.Context())
	},
}

var mapReachCmd = &cobra.Command{
	Use:   "reach [objective-id]",
	Short: "List the objectives an objective drives (or, with --backward, is driven by)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := causal.Forward
		if backward, _ := cmd.Flags().GetBool("backward"); backward {
			dir = causal.Backward
		}
		return wire.MapAdapter().Reach(cmd.Context(), args[0], dir)
	},
}

var mapCyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Report causal cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.MapAdapter().Cycles(cmd.Context())
	},
}

// MapCmd returns the map command
func MapCmd() *cobra.Command {
	mapReachCmd.Flags().BoolP("backward", "b", false, "Follow links from effect to cause")

	mapCmd.AddCommand(mapLinkCmd)
	mapCmd.AddCommand(mapUnlinkCmd)
	mapCmd.AddCommand(mapListCmd)
	mapCmd.AddCommand(mapReachCmd)
	mapCmd.AddCommand(mapCyclesCmd)

	return mapCmd
}
