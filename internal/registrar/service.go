// Package registrar orchestrates one user's daily timesheet: it turns
// meetings, reviewed PRs and quota shortfalls into tracker tasks and
// sweeps the day's open tasks closed.
package registrar

import (
	"context"
	"fmt"
	"time"

	"github.com/milymoreno/timesheet/internal/allocator"
	"github.com/milymoreno/timesheet/internal/config"
	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/internal/prlog"
	"github.com/milymoreno/timesheet/pkg/models"
)

// Gateway is the ticket store contract the registrar depends on.
type Gateway interface {
	CreateTask(ctx context.Context, req models.TaskRequest) (*models.CreatedTask, error)
	LoggedHours(ctx context.Context, user string, date time.Time) (models.DayHours, error)
	OpenTasks(ctx context.Context, user string, date time.Time) ([]models.WorkItem, error)
	SetState(ctx context.Context, id int, state string) error
	EnablerHours(ctx context.Context, user string, date time.Time, enablerID int) (models.EnablerHours, error)
}

// EnablerResolver yields the weekly enabler a day's tasks link under.
type EnablerResolver interface {
	Resolve(ctx context.Context, date time.Time, requested int) (int, error)
}

// Service wires the gateway, the enabler resolution and the owner's
// identity into the registration operations exposed over CLI and HTTP.
type Service struct {
	gw       Gateway
	resolver EnablerResolver
	owner    config.TimesheetConfig
	pick     allocator.TitlePicker
}

// NewService builds the registrar. pick selects filler titles and may
// be nil for the default random strategy.
func NewService(gw Gateway, resolver EnablerResolver, owner config.TimesheetConfig, pick allocator.TitlePicker) *Service {
	return &Service{gw: gw, resolver: resolver, owner: owner, pick: pick}
}

// ResolveEnabler exposes the weekly-enabler resolution on its own, for
// callers that only need the id.
func (s *Service) ResolveEnabler(ctx context.Context, date time.Time, requested int) (int, error) {
	return s.resolver.Resolve(ctx, date, requested)
}

// MeetingsReport is the outcome of registering one day's meetings.
type MeetingsReport struct {
	Message       string               `json:"mensaje"`
	Registered    float64              `json:"horas_registradas"`
	Remaining     float64              `json:"horas_restantes"`
	Tasks         []models.CreatedTask `json:"tareas"`
	ClosedMessage string               `json:"mensaje_cerradas"`
	ClosedIDs     []int                `json:"ids_cerrados"`
}

// RegisterMeetings allocates the day's meetings into tasks under the
// weekly enabler and then closes the day's open tasks.
func (s *Service) RegisterMeetings(ctx context.Context, user string, date time.Time, meetings []models.Meeting, requestedEnabler int) (*MeetingsReport, error) {
	enablerID, err := s.resolver.Resolve(ctx, date, requestedEnabler)
	if err != nil {
		return nil, fmt.Errorf("resolving weekly enabler: %w", err)
	}

	logged, err := s.gw.LoggedHours(ctx, user, date)
	if err != nil {
		return nil, fmt.Errorf("querying logged hours: %w", err)
	}

	budget := allocator.DailyCapHours - logged.Total
	logging.Info("starting allocation",
		"user", user,
		"date", date.Format("2006-01-02"),
		"logged", logged.Total,
		"budget", budget,
		"enabler", enablerID)

	result := allocator.Allocate(ctx, s.gw, allocator.Params{
		Meetings:   allocator.FilterByDate(meetings, date),
		Budget:     budget,
		OwnerEmail: s.owner.OwnerEmail,
		Assignee:   user,
		EnablerID:  enablerID,
	})

	closed := s.CloseDay(ctx, user, date)

	tasks := result.Created
	if tasks == nil {
		tasks = []models.CreatedTask{}
	}
	if closed == nil {
		closed = []int{}
	}

	return &MeetingsReport{
		Message:       fmt.Sprintf("%d reuniones registradas exitosamente", len(result.Created)),
		Registered:    result.Registered,
		Remaining:     result.Remaining,
		Tasks:         tasks,
		ClosedMessage: fmt.Sprintf("%d tareas cerradas", len(closed)),
		ClosedIDs:     closed,
	}, nil
}

// FillerReport is the outcome of the generic-task decision.
type FillerReport struct {
	Message   string              `json:"mensaje"`
	Task      *models.CreatedTask `json:"tarea,omitempty"`
	Overage   float64             `json:"horas_excedidas,omitempty"`
	ClosedIDs []int               `json:"tareas_cerradas,omitempty"`
}

// RegisterFiller pads the day up to the quota with one generic task,
// then closes the day's open tasks. When the quota is already met no
// task is created and the report says so.
func (s *Service) RegisterFiller(ctx context.Context, user string, date time.Time, requestedEnabler int) (*FillerReport, error) {
	logged, err := s.gw.LoggedHours(ctx, user, date)
	if err != nil {
		return nil, fmt.Errorf("querying logged hours: %w", err)
	}

	selection := allocator.SelectFiller(logged.Total, date, user, 0, s.pick)
	if !selection.Needed {
		logging.Info("daily quota already met, no filler task",
			"user", user,
			"logged", logged.Total)
		return &FillerReport{
			Message: "No se requiere tarea adicional. Ya se cumplieron las 9 horas.",
			Overage: selection.Overage,
		}, nil
	}

	enablerID, err := s.resolver.Resolve(ctx, date, requestedEnabler)
	if err != nil {
		return nil, fmt.Errorf("resolving weekly enabler: %w", err)
	}
	selection.Request.EnablerID = enablerID

	created, err := s.gw.CreateTask(ctx, selection.Request)
	if err != nil {
		return nil, fmt.Errorf("creating filler task: %w", err)
	}
	logging.Info("filler task created",
		"id", created.ID,
		"title", created.Title,
		"hours", selection.Shortfall)

	closed := s.CloseDay(ctx, user, date)

	return &FillerReport{
		Message:   "Tarea genérica registrada",
		Task:      created,
		ClosedIDs: closed,
	}, nil
}

// PRReviewReport is the outcome of registering a day's PR review work.
type PRReviewReport struct {
	Message   string              `json:"mensaje"`
	Task      *models.CreatedTask `json:"tarea,omitempty"`
	ClosedIDs []int               `json:"tareas_cerradas,omitempty"`
}

// prReviewTitle labels the task covering a day's PR review work.
const prReviewTitle = "Revisión y Aprobación de PRs"

// RegisterPRReview turns the day's approved PR reviews into one task
// whose duration grows with the review count, capped by the remaining
// budget, then closes the day's open tasks.
func (s *Service) RegisterPRReview(ctx context.Context, user string, date time.Time, requestedEnabler int) (*PRReviewReport, error) {
	enablerID, err := s.resolver.Resolve(ctx, date, requestedEnabler)
	if err != nil {
		return nil, fmt.Errorf("resolving weekly enabler: %w", err)
	}

	reviews, err := prlog.Load(s.owner.TrackingDir, date)
	if err != nil {
		return nil, err
	}

	approved := prlog.Approved(reviews)
	if len(approved) == 0 {
		logging.Warn("no approved PRs for date", "date", date.Format("2006-01-02"))
		return &PRReviewReport{Message: "No hay PRs aprobados para registrar."}, nil
	}

	hours := prlog.EstimateHours(len(approved))

	logged, err := s.gw.LoggedHours(ctx, user, date)
	if err != nil {
		return nil, fmt.Errorf("querying logged hours: %w", err)
	}
	available := allocator.DailyCapHours - logged.Total
	if available < 0 {
		available = 0
	}
	if hours > available {
		logging.Info("PR review duration capped by remaining budget",
			"estimated", hours,
			"available", available)
		hours = available
	}

	finish := time.Date(date.Year(), date.Month(), date.Day(), 17, 10, 0, 0, time.Local)
	created, err := s.gw.CreateTask(ctx, models.TaskRequest{
		Title:       prReviewTitle,
		Description: prlog.Summary(approved),
		Assignee:    user,
		Hours:       hours,
		TargetDate:  finish,
		FinishTime:  finish,
		EnablerID:   enablerID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating PR review task: %w", err)
	}
	logging.Info("PR review task created", "id", created.ID, "hours", hours)

	closed := s.CloseDay(ctx, user, date)

	return &PRReviewReport{
		Message:   "Actividad registrada con éxito.",
		Task:      created,
		ClosedIDs: closed,
	}, nil
}

// CloseDay transitions every still-open task of the user's day to
// Closed and returns the ids that made it. Per-task failures are logged
// and skipped; items already closed are skipped defensively.
func (s *Service) CloseDay(ctx context.Context, user string, date time.Time) []int {
	closed := []int{}

	items, err := s.gw.OpenTasks(ctx, user, date)
	if err != nil {
		logging.Error("failed to query open tasks", "error", err)
		return closed
	}
	if len(items) == 0 {
		logging.Info("no open tasks to close", "user", user, "date", date.Format("2006-01-02"))
		return closed
	}

	for _, item := range items {
		if item.State == "Closed" {
			continue
		}

		if err := s.gw.SetState(ctx, item.ID, "Closed"); err != nil {
			logging.Error("failed to close task", "id", item.ID, "error", err)
			continue
		}

		closed = append(closed, item.ID)
		logging.Info("task closed", "id", item.ID)
	}

	return closed
}

// DayStatus reports the user's logged hours for the date with a
// human-readable completion message.
func (s *Service) DayStatus(ctx context.Context, user string, date time.Time) (models.DayHours, string, error) {
	logged, err := s.gw.LoggedHours(ctx, user, date)
	if err != nil {
		return models.DayHours{}, "", err
	}

	var status string
	switch {
	case logged.Total == allocator.DailyCapHours:
		status = "¡Día completado!"
	case logged.Total > allocator.DailyCapHours:
		status = fmt.Sprintf("¡Sobrepasaste las 9 horas por %.2f horas!", logged.Total-allocator.DailyCapHours)
	default:
		status = fmt.Sprintf("Aún faltan %.2f horas para completar el día.", allocator.DailyCapHours-logged.Total)
	}

	return logged, status, nil
}

// EnablerStatus reports the hours registered under one weekly enabler
// for the date.
func (s *Service) EnablerStatus(ctx context.Context, user string, date time.Time, enablerID int) (models.EnablerHours, error) {
	return s.gw.EnablerHours(ctx, user, date, enablerID)
}
