package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/apexrecon/internal/app"
)

func newDispatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver pending outbox notifications",
		Long: `dispatch delivers the notifications recorded alongside state changes.
Allocation notifications update invoice status; all notifications are published
to RabbitMQ when AMQP_URL is set.`,
		Example: `  # drain one batch and exit
  reconctl dispatch --once

  # keep dispatching until interrupted
  reconctl dispatch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			dispatcher, closePublisher, err := app.New(db).Dispatcher(db, cfg)
			if err != nil {
				return err
			}
			defer closePublisher()

			if once, _ := cmd.Flags().GetBool("once"); once {
				res, err := dispatcher.DispatchOnce(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "claimed %d, published %d, failed %d\n", res.Claimed, res.Published, res.Failed)

				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return dispatcher.Run(ctx)
		},
	}

	cmd.Flags().Bool("once", false, "Dispatch a single batch and exit")

	return cmd
}
