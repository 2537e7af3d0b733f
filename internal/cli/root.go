package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/strata/internal/config"
	"github.com/example/strata/internal/version"
	"github.com/example/strata/internal/wire"
)

// flagKeys maps persistent flags to the config keys they override.
var flagKeys = map[string]string{
	"db":         config.KeyDBPath,
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
	"log-file":   config.KeyLogFile,
}

// RootCmd returns the strata root command with every subcommand attached.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "strata",
		Short:   "Strategy-to-execution traceability for Balanced Scorecard and OKR planning",
		Version: version.String(),
		Long: `strata links BSC objectives, KPIs, initiatives, OKRs, key results and tasks.
It evaluates KPI status against versioned thresholds, keeps kpi_based key
results in sync with their KPI, traces work up to strategy and reports RACI
workflow progress.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Initialize(); err != nil {
				return err
			}
			for name, key := range flagKeys {
				if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
					config.Set(key, f.Value.String())
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return wire.Close()
		},
	}

	root.PersistentFlags().String("db", "", "Database path (default ~/.strata/strata.db)")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "Log format (text, json)")
	root.PersistentFlags().String("log-file", "", "Write JSON logs to a rotating file")

	// Setup
	root.AddCommand(InitCmd())
	root.AddCommand(SeedCmd())
	root.AddCommand(ServeCmd())
	root.AddCommand(VersionCmd())

	// Scorecard
	root.AddCommand(KPICmd())
	root.AddCommand(MapCmd())

	// Execution
	root.AddCommand(KeyResultCmd())
	root.AddCommand(OKRCmd())
	root.AddCommand(TraceCmd())
	root.AddCommand(WorkflowCmd())

	return root
}
