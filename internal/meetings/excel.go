package meetings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/pkg/models"
)

// LoadExcel reads the day's meetings from the Outlook spreadsheet
// export under dir. Returns ErrFileNotFound when no export exists for
// the date.
func LoadExcel(dir string, date time.Time) ([]models.Meeting, error) {
	path := filepath.Join(dir, ExcelFilename(date))
	logging.Info("reading meetings spreadsheet", "path", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var result []models.Meeting
	for i, row := range rows[1:] {
		m, err := meetingFromRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		result = append(result, m)
	}

	logging.Info("meetings loaded from spreadsheet", "count", len(result))
	return result, nil
}

// expected header columns of the export.
var requiredColumns = []string{"titulo", "horaInicio", "horaFin", "organizador"}

func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("spreadsheet missing column %q", name)
		}
	}
	return cols, nil
}

func meetingFromRow(row []string, cols map[string]int) (models.Meeting, error) {
	cell := func(name string) string {
		idx := cols[name]
		if idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	start, err := ParseTimestamp(cell("horaInicio"))
	if err != nil {
		return models.Meeting{}, fmt.Errorf("parsing horaInicio: %w", err)
	}
	end, err := ParseTimestamp(cell("horaFin"))
	if err != nil {
		return models.Meeting{}, fmt.Errorf("parsing horaFin: %w", err)
	}

	return newMeeting(cell("titulo"), start, end, cell("organizador")), nil
}
