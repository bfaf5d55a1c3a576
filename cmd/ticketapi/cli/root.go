package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hogent/event-ticket-manager/app"
	"github.com/hogent/event-ticket-manager/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// set by PersistentPreRunE for every subcommand
	cfg    *config.Config
	logger *zap.Logger

	verbose bool

	rootCmd = &cobra.Command{
		Use:   "ticketapi",
		Short: "Event ticket manager API",
		Long: `ticketapi serves the event ticket manager HTTP API and provides
the operational commands around it: schema creation and account management.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.New(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if verbose {
				c.Log.Level = "debug"
			}

			l, err := app.NewLogger(c.Log)
			if err != nil {
				return err
			}

			cfg, logger = c, l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
)

// Execute adds all child commands to the root command and runs it. SIGINT
// and SIGTERM cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
