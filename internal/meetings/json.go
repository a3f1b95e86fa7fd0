package meetings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/pkg/models"
)

// jsonMeeting is the raw shape of one meeting in the exported JSON;
// timestamps arrive as strings in a handful of layouts.
type jsonMeeting struct {
	Title     string `json:"titulo"`
	Start     string `json:"horaInicio"`
	End       string `json:"horaFin"`
	Organizer string `json:"organizador"`
}

// ParseJSON decodes an exported meetings document, deriving date and
// duration for each record.
func ParseJSON(data []byte) ([]models.Meeting, error) {
	var raw []jsonMeeting
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing meetings JSON: %w", err)
	}

	result := make([]models.Meeting, 0, len(raw))
	for i, r := range raw {
		start, err := ParseTimestamp(r.Start)
		if err != nil {
			return nil, fmt.Errorf("meeting %d: parsing horaInicio: %w", i, err)
		}
		end, err := ParseTimestamp(r.End)
		if err != nil {
			return nil, fmt.Errorf("meeting %d: parsing horaFin: %w", i, err)
		}
		result = append(result, newMeeting(r.Title, start, end, r.Organizer))
	}
	return result, nil
}

// LoadJSONFile reads an exported meetings document from disk. Returns
// ErrFileNotFound when the file does not exist.
func LoadJSONFile(path string) ([]models.Meeting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading meetings file: %w", err)
	}

	result, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}

	logging.Info("meetings loaded from JSON file", "path", path, "count", len(result))
	return result, nil
}
