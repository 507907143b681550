package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty-crm/internal/clock"
	"github.com/evcraddock/realty-crm/internal/config"
	"github.com/evcraddock/realty-crm/internal/logging"
	"github.com/evcraddock/realty-crm/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP JSON API. Settings come from the environment and an optional .env file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logging.Setup(cfg.DevMode)

			database, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(database)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return web.NewServer(database, cfg, clock.System{}).ListenAndServe(ctx, cfg.Addr())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: CRM_PORT or 8000)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "env file to load instead of ./.env")

	return cmd
}
