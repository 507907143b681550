// Package cli defines the cobra command tree for the CRM.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty-crm/internal/apiclient"
	"github.com/evcraddock/realty-crm/internal/config"
	"github.com/evcraddock/realty-crm/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "crm",
		Short: "Real-estate CRM server and client",
		Long: "Run the CRM API server, manage its database, and work with scheduled visits " +
			"from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: CRM_DATABASE_URL or ./crm.db)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newUserCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVisitsCmd(),
		newPropertiesCmd(),
		newClientsCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the database from the --db flag or the configured URL.
func openDB(cfg *config.Config) (*sql.DB, error) {
	path := flagDB
	if path == "" {
		path = cfg.DatabasePath
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the CRM API.
func newAPIClient() *apiclient.Client {
	return apiclient.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
