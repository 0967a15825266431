// Command budgetctl manages the ledger from the terminal. It shares the
// server's configuration, so both see the same data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/services"
)

var (
	envFile  string
	logLevel string

	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:           "budgetctl",
	Short:         "Personal budget ledger",
	Long:          `Record income and expenses and inspect monthly summaries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			cli.LoadEnvFile(envFile)
		} else {
			cli.LoadEnvFile()
		}

		var err error
		cfg, err = cli.LoadAndValidateConfig()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger = cli.SetupLogger(cfg, os.Stderr).WithComponent(log.ComponentCLI)
		return nil
	},
}

// withService opens the ledger for the duration of fn.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *services.LedgerService) error) error {
	ctx := cmd.Context()
	svc, err := cli.OpenService(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close ledger backend", log.FieldError, err)
		}
	}()
	return fn(ctx, svc)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file instead of .env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	rootCmd.AddCommand(addCmd, editCmd, deleteCmd, listCmd)
	rootCmd.AddCommand(overviewCmd, breakdownCmd, categoriesCmd)
	rootCmd.AddCommand(themeCmd, watchCmd)
}

func main() {
	ctx, cancel := cli.SignalContext(context.Background(), log.Discard())
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
