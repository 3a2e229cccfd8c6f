package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/apexrecon/internal/config"
	"github.com/MrJamesThe3rd/apexrecon/internal/database"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reconctl",
		Short: "Operate the reconciliation ledgers from the command line",
		Long: `reconctl runs the maintenance jobs of the reconciliation service:
database migrations, overdue sweeps, outbox dispatch, ledger audits and reports.

Configuration comes from the environment (or a .env file), the same way as the API server.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("org", "", "Organization ID the command acts on")

	root.AddCommand(
		newMigrateCmd(),
		newOverdueCmd(),
		newDispatchCmd(),
		newAuditCmd(),
		newReportCmd(),
		newTokenCmd(),
	)

	return root
}

func open() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	return cfg, db, nil
}

func orgFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("org")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--org is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --org: %w", err)
	}

	return id, nil
}

func dateFlag(cmd *cobra.Command, name string, fallback time.Time) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return fallback, nil
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s, use YYYY-MM-DD: %w", name, err)
	}

	return t, nil
}
