// Package cmd wires the command line interface of the timesheet tool.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/milymoreno/timesheet/internal/allocator"
	"github.com/milymoreno/timesheet/internal/azure"
	"github.com/milymoreno/timesheet/internal/config"
	"github.com/milymoreno/timesheet/internal/enabler"
	"github.com/milymoreno/timesheet/internal/registrar"
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Timesheet registers daily meetings as Azure DevOps tasks",
	Long: `Timesheet automates a personal timesheet against Azure DevOps: it loads
the day's calendar meetings, creates one Task work item per meeting under
the week's enabler, pads short days with a generic task, registers PR
review work, and closes the day's open tasks.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("user", "u", "", "display name tasks are assigned to (defaults to the configured user)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(backfillCmd)
}

// buildService loads the configuration and assembles the registrar
// service every command runs against.
func buildService() (*registrar.Service, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := azure.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	resolver := enabler.NewResolver(client, cfg.Timesheet.EnablerUsers)
	service := registrar.NewService(client, resolver, cfg.Timesheet, allocator.RandomTitle)
	return service, cfg, nil
}

// userOrDefault picks the --user flag over the configured default.
func userOrDefault(cmd *cobra.Command, cfg *config.Config) string {
	user, _ := cmd.Flags().GetString("user")
	if user != "" {
		return user
	}
	return cfg.Timesheet.DefaultUser
}
