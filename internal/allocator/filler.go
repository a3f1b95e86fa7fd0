package allocator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/milymoreno/timesheet/pkg/models"
)

// GenericTitles is the catalog of catch-all task titles used to pad a
// day up to the quota.
var GenericTitles = []string{
	"Revisión de Logs y Azure Portal",
	"Apoyo a QA y Validaciones",
	"Tareas generales de Base de Datos",
	"Apoyo a despliegues y configuración",
	"Investigación técnica interna",
}

// Filler tasks finish at a fixed time of day.
const (
	fillerFinishHour   = 17
	fillerFinishMinute = 10
)

// TitlePicker selects an index into a catalog of n titles. Production
// code uses RandomTitle; tests inject a deterministic picker.
type TitlePicker func(n int) int

// RandomTitle is the default title selection strategy.
func RandomTitle(n int) int {
	return rand.IntN(n)
}

// FillerResult is the outcome of the filler-task decision.
type FillerResult struct {
	// Needed is false when the day already meets the quota.
	Needed bool

	// Shortfall is the hours missing to reach the quota (when Needed).
	Shortfall float64

	// Overage is the hours logged beyond the quota (when not Needed).
	Overage float64

	// Request is the synthesized task covering the shortfall.
	Request models.TaskRequest
}

// SelectFiller decides whether a generic task is required to complete
// the day and synthesizes it. logged comes from a fresh query of the
// ticket store, not from allocation bookkeeping.
func SelectFiller(logged float64, date time.Time, assignee string, enablerID int, pick TitlePicker) FillerResult {
	if logged >= DailyCapHours {
		return FillerResult{
			Overage: math.Round((logged-DailyCapHours)*100) / 100,
		}
	}

	if pick == nil {
		pick = RandomTitle
	}

	shortfall := math.Round((DailyCapHours-logged)*100) / 100
	finish := time.Date(date.Year(), date.Month(), date.Day(),
		fillerFinishHour, fillerFinishMinute, 0, 0, time.Local)

	return FillerResult{
		Needed:    true,
		Shortfall: shortfall,
		Request: models.TaskRequest{
			Title:      GenericTitles[pick(len(GenericTitles))],
			Assignee:   assignee,
			Hours:      shortfall,
			TargetDate: finish,
			FinishTime: finish,
			EnablerID:  enablerID,
		},
	}
}
