package cmd

import (
	"github.com/spf13/cobra"

	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API exposing the registration endpoints. The listen
port comes from the PORT environment variable and defaults to 8080.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cfg, err := buildService()
		if err != nil {
			return err
		}

		logging.Info("starting http api", "user", cfg.Timesheet.DefaultUser)
		return server.Run(server.New(service, cfg).Router())
	},
}
