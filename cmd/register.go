package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/milymoreno/timesheet/internal/config"
	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/internal/meetings"
	"github.com/milymoreno/timesheet/pkg/models"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register one day's meetings as tasks",
	Long: `Loads the meetings for a single date, creates one Task work item per
meeting under the week's enabler and closes the day's open tasks.

The meeting source defaults to the daily Excel export; --source gmail
fetches the emailed JSON instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cfg, err := buildService()
		if err != nil {
			return err
		}

		date, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		user := userOrDefault(cmd, cfg)
		enablerID, _ := cmd.Flags().GetInt("enabler")
		source, _ := cmd.Flags().GetString("source")

		var loaded []models.Meeting
		switch source {
		case "gmail":
			if err := config.ValidateGmailConfig(cfg); err != nil {
				return err
			}
			loaded, err = meetings.FetchFromGmail(cfg.Gmail.Account, cfg.Gmail.Password, date)
		case "excel":
			loaded, err = meetings.LoadExcel(cfg.Timesheet.ExcelDir, date)
		default:
			return fmt.Errorf("unknown meeting source: %q (want excel or gmail)", source)
		}
		if err != nil {
			return err
		}
		if len(loaded) == 0 {
			logging.Warn("no meetings found for date", "date", date.Format("2006-01-02"))
			return nil
		}

		report, err := service.RegisterMeetings(cmd.Context(), user, date, loaded, enablerID)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %.2f horas registradas, %.2f restantes, %s\n",
			report.Message, report.Registered, report.Remaining, report.ClosedMessage)
		for _, task := range report.Tasks {
			fmt.Printf("  #%d %s (%.2fh)\n", task.ID, task.Title, task.Hours)
		}
		return nil
	},
}

func init() {
	registerCmd.Flags().StringP("date", "d", "", "date to register, YYYY-MM-DD (defaults to today)")
	registerCmd.Flags().IntP("enabler", "e", 0, "weekly enabler work item id (defaults to automatic resolution)")
	registerCmd.Flags().StringP("source", "s", "excel", "meeting source: excel or gmail")
}

// dateFlag parses --date, defaulting to today.
func dateFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}

	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, errors.New("invalid --date, want YYYY-MM-DD")
	}
	return date, nil
}
