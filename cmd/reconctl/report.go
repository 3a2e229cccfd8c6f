package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/apexrecon/internal/app"
	"github.com/MrJamesThe3rd/apexrecon/internal/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the reconciliation report of an organization",
		Example: `  reconctl report --org 0190f0c2-...
  reconctl report --org 0190f0c2-... --format csv --out report.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := orgFlag(cmd)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			if format != "summary" && format != "csv" {
				return fmt.Errorf("--format must be summary or csv")
			}

			_, db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			rep, err := app.New(db).Reports.Build(cmd.Context(), orgID)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()

			if path, _ := cmd.Flags().GetString("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating %s: %w", path, err)
				}
				defer f.Close()

				out = f
			}

			if format == "csv" {
				return report.WriteCSV(out, rep)
			}

			_, err = io.WriteString(out, report.Summary(rep))

			return err
		},
	}

	cmd.Flags().String("format", "summary", "Output format: summary or csv")
	cmd.Flags().String("out", "", "Write to this file instead of stdout")

	return cmd
}
