// Package allocator implements the daily-hour allocation that turns a
// day's meetings into task creation requests under a 9-hour cap.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/milymoreno/timesheet/internal/azure"
	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/pkg/models"
)

// DailyCapHours is the fixed daily quota of loggable hours.
const DailyCapHours = 9.0

// ConsolidatedTitle labels the single task that absorbs all meetings
// organized by the timesheet owner.
const ConsolidatedTitle = "Reuniones varias y con equipo"

// consolidatedHeader opens the consolidated task description; the
// source meeting titles follow one per line.
const consolidatedHeader = "Reuniones organizadas por Mildred:"

// TaskCreator is the narrow gateway contract the allocator depends on.
type TaskCreator interface {
	CreateTask(ctx context.Context, req models.TaskRequest) (*models.CreatedTask, error)
}

// Params is the input for one allocation run over a single day.
type Params struct {
	// Meetings for exactly one calendar date, in source order.
	Meetings []models.Meeting

	// Budget is the remaining loggable hours (cap minus hours already
	// logged). Negative values mean the day is over quota and are
	// treated as zero.
	Budget float64

	// OwnerEmail classifies meetings into own vs. other by organizer.
	OwnerEmail string

	// Assignee is the display name the created tasks are assigned to.
	Assignee string

	// EnablerID is the parent weekly enabler for every created task.
	EnablerID int
}

// Result summarizes one allocation run.
type Result struct {
	// Created holds the successfully registered tasks, in creation order.
	Created []models.CreatedTask

	// Remaining is the budget left after the run.
	Remaining float64

	// Registered is the sum of hours across Created. Budget is only
	// spent once the gateway confirms a creation, so a failed call
	// never shrinks capacity for later meetings.
	Registered float64
}

// Partition splits meetings into the owner's own group and everything
// else, comparing organizers trimmed and lower-cased.
func Partition(meetings []models.Meeting, ownerEmail string) (own, other []models.Meeting) {
	owner := strings.ToLower(strings.TrimSpace(ownerEmail))
	for _, m := range meetings {
		if strings.ToLower(strings.TrimSpace(m.Organizer)) == owner {
			own = append(own, m)
		} else {
			other = append(other, m)
		}
	}
	return own, other
}

// Allocate processes one day's meetings against the remaining budget.
// "Other" meetings are handled first in source order: a meeting that
// fits is allocated in full, one that exceeds a positive budget is
// truncated to it, and once the budget is exhausted the rest are
// omitted. The owner's own meetings are then consolidated into a single
// task, created only if the whole group fits. Every allocation is
// submitted immediately; a gateway failure is logged and skipped.
func Allocate(ctx context.Context, gw TaskCreator, p Params) Result {
	budget := p.Budget
	if budget < 0 {
		budget = 0
	}

	result := Result{Remaining: budget}
	own, other := Partition(p.Meetings, p.OwnerEmail)

	for _, meeting := range other {
		hours := meeting.Hours
		end := meeting.End

		switch {
		case hours <= result.Remaining:
			// fits in full
		case result.Remaining > 0:
			hours = result.Remaining
			end = meeting.Start.Add(hoursToDuration(hours))
			logging.Warn("meeting truncated to remaining budget",
				"title", meeting.Title,
				"hours", hours)
		default:
			logging.Warn("budget exhausted, meeting omitted", "title", meeting.Title)
			continue
		}

		req := models.TaskRequest{
			Title:       meeting.Title,
			Description: "",
			Assignee:    p.Assignee,
			Hours:       hours,
			TargetDate:  meeting.Start,
			FinishTime:  end,
			EnablerID:   p.EnablerID,
		}

		created, err := gw.CreateTask(ctx, req)
		if err != nil {
			logCreateFailure("failed to create task", meeting.Title, err)
			continue
		}

		result.Created = append(result.Created, *created)
		result.Remaining -= hours
		result.Registered += hours
		logging.Info("task created", "title", created.Title, "id", created.ID, "hours", hours)
	}

	if len(own) > 0 {
		consolidateOwn(ctx, gw, own, p, &result)
	}

	return result
}

// consolidateOwn merges the owner's meetings into one task covering
// their combined duration. The group is all-or-nothing: when it exceeds
// the remaining budget no partial credit is given.
func consolidateOwn(ctx context.Context, gw TaskCreator, own []models.Meeting, p Params, result *Result) {
	var total float64
	for _, m := range own {
		total += m.Hours
	}

	if total > result.Remaining {
		logging.Warn("own meetings exceed remaining budget, group omitted",
			"total_hours", total,
			"remaining", result.Remaining)
		return
	}

	lines := make([]string, len(own))
	start := own[0].Start
	for i, m := range own {
		lines[i] = "- " + m.Title
		if m.Start.Before(start) {
			start = m.Start
		}
	}

	req := models.TaskRequest{
		Title:       ConsolidatedTitle,
		Description: consolidatedHeader + "\n" + strings.Join(lines, "\n"),
		Assignee:    p.Assignee,
		Hours:       total,
		TargetDate:  start,
		FinishTime:  start.Add(hoursToDuration(total)),
		EnablerID:   p.EnablerID,
	}

	created, err := gw.CreateTask(ctx, req)
	if err != nil {
		logCreateFailure("failed to create consolidated task", ConsolidatedTitle, err)
		return
	}

	result.Created = append(result.Created, *created)
	result.Remaining -= total
	result.Registered += total
	logging.Info("consolidated task created",
		"id", created.ID,
		"meetings", len(own),
		"hours", total)
}

func logCreateFailure(msg, title string, err error) {
	var statusErr *azure.StatusError
	if errors.As(err, &statusErr) {
		logging.Error(msg,
			"title", title,
			"status", statusErr.StatusCode,
			"body", statusErr.Body)
		return
	}
	logging.Error(msg, "title", title, "error", err)
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// FilterByDate keeps only the meetings falling on the given calendar
// date, logging the ones skipped.
func FilterByDate(meetings []models.Meeting, date time.Time) []models.Meeting {
	day := date.Format("2006-01-02")
	var kept []models.Meeting
	for _, m := range meetings {
		if m.Date != day {
			logging.Info("ignoring meeting outside target date",
				"title", m.Title,
				"date", m.Date)
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// String implements a compact run summary for logs.
func (r Result) String() string {
	return fmt.Sprintf("%d tasks, %.2fh registered, %.2fh remaining",
		len(r.Created), r.Registered, r.Remaining)
}
