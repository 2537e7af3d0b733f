package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/strata/internal/db"
	"github.com/example/strata/internal/version"
	"github.com/example/strata/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the strata database",
		Long:  `Create the strata database (default ~/.strata/strata.db) and bring its schema up to date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Init(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			conn, err := db.GetDB()
			if err != nil {
				return err
			}
			v, err := db.CurrentVersion(conn)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}

			fmt.Printf("✓ Database ready at %s (schema v%d)\n", db.GetDBPath(), v)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  strata seed")
			fmt.Println("  strata kpi list")
			return nil
		},
	}
}

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a dataset into the database",
		Long: `Load a YAML dataset into the database. Without --file the built-in
university fixtures are loaded. Times in the dataset are relative (days ago).

Examples:
  strata seed
  strata seed --file ./plans/2024.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			ds := db.DefaultDataset()
			if file != "" {
				loaded, err := db.LoadDataset(file)
				if err != nil {
					return err
				}
				ds = loaded
			}

			if err := wire.Init(); err != nil {
				return err
			}
			conn, err := db.GetDB()
			if err != nil {
				return err
			}
			if err := ds.Apply(cmd.Context(), conn, time.Now()); err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}

			source := "built-in fixtures"
			if file != "" {
				source = file
			}
			fmt.Printf("✓ Seeded %s from %s\n", db.GetDBPath(), source)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML dataset to load")
	return cmd
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reporting API",
		Long: `Serve the JSON reporting API and Prometheus metrics until interrupted.

Endpoints:
  GET  /api/trace/up/{taskID}
  GET  /api/trace/down/{kpiID}?hops=N
  GET  /api/trace/objective/{id}
  GET  /api/kpis/{id}/status
  POST /api/key-results/{id}/sync
  GET  /api/workflows/{id}/progress
  GET  /metrics
  GET  /healthz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = wire.Config().HTTPAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("strata serving on http://%s\n", addr)
			return wire.HTTPServer().ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from http.addr)")
	return cmd
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the strata version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}
