package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/log"
)

var errAMQPDisabled = errors.New("AMQP_URL is not set; ledger events are not published")

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print ledger change events as they are published",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.AMQPEnabled() {
			return errAMQPDisabled
		}
		bc, err := backend.FromAppConfig(cfg)
		if err != nil {
			return err
		}
		res, err := backend.NewFactory(logger).CreateBackend(cmd.Context(), bc)
		if err != nil {
			return err
		}
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Cleanup failed", log.FieldError, err)
			}
		}()
		if res.Publisher == nil {
			return fmt.Errorf("connect to %s: broker unreachable", cfg.AMQPExchange)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching exchange %q, press Ctrl+C to stop\n", cfg.AMQPExchange)
		err = res.Publisher.ConsumeLedgerEvents(cmd.Context(), func(_ context.Context, ev *amqp.LedgerEvent) error {
			_, err := fmt.Fprintf(out, "%s  %-7s  %s  %s %s %s on %s\n",
				ev.OccurredAt.Local().Format("15:04:05"), ev.Action, ev.ID,
				ev.Type, ev.Category, ev.Amount, ev.Date)
			return err
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
