package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty-crm/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long:  "Applies all pending schema migrations, including the visit columns added to older databases and the rename of visits.datetime to scheduled_datetime. Safe to run repeatedly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(database)

			path := flagDB
			if path == "" {
				path = cfg.DatabasePath
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Database %s is up to date.\n", path)
			return nil
		},
	}
}
