package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/apexrecon/internal/config"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Issue an API token scoped to an organization",
		Example: `  reconctl token --org 0190f0c2-... --subject ops@example.com --ttl 1h`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := orgFlag(cmd)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			subject, _ := cmd.Flags().GetString("subject")

			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := auth.IssueToken([]byte(cfg.Auth.JWTSecret), orgID, subject, ttl, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().String("subject", "reconctl", "Subject recorded in the token")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (default: JWT_TTL)")

	return cmd
}
