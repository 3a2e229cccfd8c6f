package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/apexrecon/internal/app"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

func newOverdueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "overdue",
		Short:   "Mark sent invoices past their due date as overdue",
		Example: `  reconctl overdue --org 0190f0c2-... --as-of 2024-06-30`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := orgFlag(cmd)
			if err != nil {
				return err
			}

			asOf, err := dateFlag(cmd, "as-of", clock.Today(clock.System{}))
			if err != nil {
				return err
			}

			_, db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			changed, err := app.New(db).Invoices.MarkOverdueBatch(cmd.Context(), orgID, asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, inv := range changed {
				fmt.Fprintf(out, "%s  due %s  %s €\n", inv.ID, inv.DueDate.Format(time.DateOnly), money.Format(inv.AmountDue()))
			}

			fmt.Fprintf(out, "%d invoice(s) marked overdue as of %s\n", len(changed), asOf.Format(time.DateOnly))

			return nil
		},
	}

	cmd.Flags().String("as-of", "", "Reference date (YYYY-MM-DD, default: today)")

	return cmd
}
