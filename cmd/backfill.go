package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/milymoreno/timesheet/internal/enabler"
	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/internal/meetings"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Register meetings for a range of past dates",
	Long: `Walks every date between --from and --to (inclusive), registering the
meetings of each day that has both a planning-calendar enabler and an
Excel export. Days without either are logged and skipped, so the range
can safely span holidays and gaps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cfg, err := buildService()
		if err != nil {
			return err
		}

		from, to, err := rangeFlags(cmd)
		if err != nil {
			return err
		}
		user := userOrDefault(cmd, cfg)

		var registered, skipped int
		for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
			day := date.Format("2006-01-02")

			enablerID := enabler.FromTable(date)
			if enablerID == enabler.NoEnabler {
				logging.Info("no enabler planned for date, skipping", "date", day)
				skipped++
				continue
			}

			loaded, err := meetings.LoadExcel(cfg.Timesheet.ExcelDir, date)
			if err != nil {
				if errors.Is(err, meetings.ErrFileNotFound) {
					logging.Info("no meetings export for date, skipping", "date", day)
					skipped++
					continue
				}
				return fmt.Errorf("loading meetings for %s: %w", day, err)
			}
			if len(loaded) == 0 {
				logging.Info("meetings export is empty, skipping", "date", day)
				skipped++
				continue
			}

			report, err := service.RegisterMeetings(cmd.Context(), user, date, loaded, enablerID)
			if err != nil {
				logging.Error("failed to register date", "date", day, "error", err)
				continue
			}

			fmt.Printf("%s: %s (%.2fh)\n", day, report.Message, report.Registered)
			registered++
		}

		fmt.Printf("backfill done: %d days registered, %d skipped\n", registered, skipped)
		return nil
	},
}

func init() {
	backfillCmd.Flags().String("from", "", "first date of the range, YYYY-MM-DD")
	backfillCmd.Flags().String("to", "", "last date of the range, YYYY-MM-DD")
	backfillCmd.MarkFlagRequired("from")
	backfillCmd.MarkFlagRequired("to")
}

// rangeFlags parses and validates the --from/--to pair.
func rangeFlags(cmd *cobra.Command) (time.Time, time.Time, error) {
	rawFrom, _ := cmd.Flags().GetString("from")
	rawTo, _ := cmd.Flags().GetString("to")

	from, err := time.ParseInLocation("2006-01-02", rawFrom, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid --from, want YYYY-MM-DD")
	}
	to, err := time.ParseInLocation("2006-01-02", rawTo, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid --to, want YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("--to is before --from")
	}
	return from, to, nil
}
