package cli

import (
	"context"
	"fmt"

	"github.com/hogent/event-ticket-manager/repositories/postgres"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance commands",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema",
	Long:  `Create every table and index that does not exist yet. Running it again is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runInitSchema(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

func runInitSchema(ctx context.Context) error {
	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
}
