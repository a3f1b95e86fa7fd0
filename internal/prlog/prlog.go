// Package prlog loads the local tracking files recording which pull
// requests were reviewed on a given day.
package prlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/milymoreno/timesheet/internal/logging"
)

// ErrTrackingNotFound reports that no tracking file exists for the
// requested date.
var ErrTrackingNotFound = errors.New("PR tracking file not found")

// StateApproved marks a reviewed-and-approved pull request.
const StateApproved = "aprobado"

// Review is one reviewed pull request entry.
type Review struct {
	State      string `json:"estado"`
	Repository string `json:"repositorio"`
}

// TrackingFilename is the date-stamped name of a day's tracking file.
func TrackingFilename(date time.Time) string {
	return fmt.Sprintf("pr_tracking_%s.json", date.Format("02_01_2006"))
}

// Load reads the reviewed-PR tracking file for the date from dir,
// keyed by pull request id.
func Load(dir string, date time.Time) (map[string]Review, error) {
	path := filepath.Join(dir, TrackingFilename(date))
	logging.Info("loading PR tracking file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTrackingNotFound, path)
		}
		return nil, fmt.Errorf("reading tracking file: %w", err)
	}

	var reviews map[string]Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("parsing tracking file: %w", err)
	}

	logging.Info("PR tracking loaded", "total", len(reviews))
	return reviews, nil
}

// Approved filters the reviews down to the approved ones.
func Approved(reviews map[string]Review) []Review {
	var approved []Review
	for _, r := range reviews {
		if r.State == StateApproved {
			approved = append(approved, r)
		}
	}
	return approved
}

// Summary builds the task description listing the distinct repositories
// touched by the approved reviews, sorted for stable output.
func Summary(approved []Review) string {
	seen := make(map[string]bool)
	var repos []string
	for _, r := range approved {
		if r.Repository == "" || seen[r.Repository] {
			continue
		}
		seen[r.Repository] = true
		repos = append(repos, r.Repository)
	}
	sort.Strings(repos)

	return "Se revisaron y aprobaron PRs correspondientes a los siguientes repositorios: " +
		strings.Join(repos, ", ") + "."
}

// EstimateHours converts an approved-PR count into a task duration:
// ten minutes per PR, rounded to the nearest half hour, clamped to
// [0.5, 2.5].
func EstimateHours(count int) float64 {
	minutes := float64(count * 10)
	hours := math.Round(minutes/60*2) / 2
	return math.Min(math.Max(0.5, hours), 2.5)
}
