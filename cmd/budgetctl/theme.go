package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/services"
	"budget/internal/settings"
)

var themeCmd = &cobra.Command{
	Use:       "theme [toggle|light|dark]",
	Short:     "Show or change the display theme preference",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"toggle", string(settings.Light), string(settings.Dark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.LedgerService) error {
			var (
				t   settings.Theme
				err error
			)
			switch {
			case len(args) == 0:
				t, err = svc.Theme(ctx)
			case args[0] == "toggle":
				t, err = svc.ToggleTheme(ctx)
			default:
				t, err = settings.ParseTheme(args[0])
				if err == nil {
					err = svc.SetTheme(ctx, t)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		})
	},
}
