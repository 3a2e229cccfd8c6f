package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/apexrecon/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Example: `  reconctl migrate
  reconctl migrate --down`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			if down, _ := cmd.Flags().GetBool("down"); down {
				if err := database.Rollback(db, cfg.DB.Name); err != nil {
					return err
				}

				slog.Info("rolled back last migration", "database", cfg.DB.Name)

				return nil
			}

			applied, err := database.Migrate(db, cfg.DB.Name)
			if err != nil {
				return err
			}

			if !applied {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
				return nil
			}

			slog.Info("migrations applied", "database", cfg.DB.Name)

			return nil
		},
	}

	cmd.Flags().Bool("down", false, "Revert the last applied migration instead")

	return cmd
}
