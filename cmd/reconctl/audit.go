package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/apexrecon/internal/app"
	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
	"github.com/MrJamesThe3rd/apexrecon/internal/reconciliation"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check a ledger balance against its allocations",
		Example: `  reconctl audit --org 0190f0c2-... --invoice 0190f0c3-...
  reconctl audit --org 0190f0c2-... --bank-transaction 0190f0c4-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := orgFlag(cmd)
			if err != nil {
				return err
			}

			invoiceRaw, _ := cmd.Flags().GetString("invoice")
			bankRaw, _ := cmd.Flags().GetString("bank-transaction")

			if (invoiceRaw == "") == (bankRaw == "") {
				return fmt.Errorf("exactly one of --invoice or --bank-transaction is required")
			}

			_, db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := app.New(db).Reconciliation

			var audit reconciliation.Audit

			if invoiceRaw != "" {
				id, perr := uuid.Parse(invoiceRaw)
				if perr != nil {
					return fmt.Errorf("invalid --invoice: %w", perr)
				}

				audit, err = svc.AuditInvoice(cmd.Context(), orgID, id)
			} else {
				id, perr := uuid.Parse(bankRaw)
				if perr != nil {
					return fmt.Errorf("invalid --bank-transaction: %w", perr)
				}

				audit, err = svc.AuditBankTransaction(cmd.Context(), orgID, id)
			}

			if err != nil && !errors.Is(err, apperrors.ErrInvariant) {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ledger %s: consumed %s, allocated %s across %d allocation(s)\n",
				audit.LedgerID, money.Format(audit.Consumed), money.Format(audit.Allocated), audit.Count)

			return err
		},
	}

	cmd.Flags().String("invoice", "", "Invoice ID to audit")
	cmd.Flags().String("bank-transaction", "", "Bank transaction ID to audit")
	cmd.MarkFlagsMutuallyExclusive("invoice", "bank-transaction")

	return cmd
}
