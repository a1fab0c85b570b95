package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/database/postgres"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the profile row database schema",
		Long:  "Apply or roll back the embedded PostgreSQL migrations of the database section.",
	}
	cmd.AddCommand(newMigrateUpCmd(), newMigrateDownCmd(), newMigrateStatusCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, _ []string) error {
			if err := postgres.MigrateUp(postgres.URL(cliCtx.Config.Database)); err != nil {
				return err
			}
			cliCtx.Logger.Info("migrations applied", logging.String("host", cliCtx.Config.Database.Host))
			PrintSuccess(cmd, "schema is up to date")
			return nil
		}),
	}
}

func newMigrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, _ []string) error {
			if err := postgres.MigrateDown(postgres.URL(cliCtx.Config.Database), steps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		}),
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the applied migration version",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, _ []string) error {
			version, dirty, err := postgres.MigrationStatus(postgres.URL(cliCtx.Config.Database))
			if err != nil {
				return err
			}
			return PrintResult(cmd, migrationStatus{Version: version, Dirty: dirty})
		}),
	}
}

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationStatus) String() string {
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)\n", s.Version)
	}
	return fmt.Sprintf("version %d\n", s.Version)
}

//Personal.AI order the ending
