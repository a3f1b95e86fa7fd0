package registrar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milymoreno/timesheet/internal/config"
	"github.com/milymoreno/timesheet/internal/prlog"
	"github.com/milymoreno/timesheet/pkg/models"
)

// MockGateway implements Gateway for testing.
type MockGateway struct {
	CreateTaskFunc   func(ctx context.Context, req models.TaskRequest) (*models.CreatedTask, error)
	LoggedHoursFunc  func(ctx context.Context, user string, date time.Time) (models.DayHours, error)
	OpenTasksFunc    func(ctx context.Context, user string, date time.Time) ([]models.WorkItem, error)
	SetStateFunc     func(ctx context.Context, id int, state string) error
	EnablerHoursFunc func(ctx context.Context, user string, date time.Time, enablerID int) (models.EnablerHours, error)

	CreatedRequests []models.TaskRequest
	ClosedIDs       []int
}

func (m *MockGateway) CreateTask(ctx context.Context, req models.TaskRequest) (*models.CreatedTask, error) {
	m.CreatedRequests = append(m.CreatedRequests, req)
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, req)
	}
	return &models.CreatedTask{Title: req.Title, Hours: req.Hours, ID: 500 + len(m.CreatedRequests)}, nil
}

func (m *MockGateway) LoggedHours(ctx context.Context, user string, date time.Time) (models.DayHours, error) {
	if m.LoggedHoursFunc != nil {
		return m.LoggedHoursFunc(ctx, user, date)
	}
	return models.DayHours{}, nil
}

func (m *MockGateway) OpenTasks(ctx context.Context, user string, date time.Time) ([]models.WorkItem, error) {
	if m.OpenTasksFunc != nil {
		return m.OpenTasksFunc(ctx, user, date)
	}
	return nil, nil
}

func (m *MockGateway) SetState(ctx context.Context, id int, state string) error {
	if m.SetStateFunc != nil {
		if err := m.SetStateFunc(ctx, id, state); err != nil {
			return err
		}
	}
	m.ClosedIDs = append(m.ClosedIDs, id)
	return nil
}

func (m *MockGateway) EnablerHours(ctx context.Context, user string, date time.Time, enablerID int) (models.EnablerHours, error) {
	if m.EnablerHoursFunc != nil {
		return m.EnablerHoursFunc(ctx, user, date, enablerID)
	}
	return models.EnablerHours{}, nil
}

// MockResolver implements EnablerResolver for testing.
type MockResolver struct {
	ResolveFunc func(ctx context.Context, date time.Time, requested int) (int, error)
}

func (m *MockResolver) Resolve(ctx context.Context, date time.Time, requested int) (int, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, date, requested)
	}
	return 16345, nil
}

var testOwner = config.TimesheetConfig{
	DefaultUser: "Mildred Moreno",
	OwnerEmail:  "mildred.moreno@innovacionypagos.com.pa",
}

func testDate() time.Time {
	return time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local)
}

func testMeeting(title string, hour int, hours float64, organizer string) models.Meeting {
	start := time.Date(2025, 3, 5, hour, 0, 0, 0, time.Local)
	return models.Meeting{
		Title:     title,
		Start:     start,
		End:       start.Add(time.Duration(hours * float64(time.Hour))),
		Organizer: organizer,
		Date:      "2025-03-05",
		Hours:     hours,
	}
}

func TestRegisterMeetings(t *testing.T) {
	gw := &MockGateway{
		LoggedHoursFunc: func(ctx context.Context, user string, date time.Time) (models.DayHours, error) {
			return models.DayHours{Total: 2.0}, nil
		},
	}
	svc := NewService(gw, &MockResolver{}, testOwner, nil)

	meetings := []models.Meeting{
		testMeeting("comite", 9, 3.0, "lead@example.com"),
	}

	report, err := svc.RegisterMeetings(context.Background(), "Mildred Moreno", testDate(), meetings, 0)
	require.NoError(t, err)

	assert.Equal(t, "1 reuniones registradas exitosamente", report.Message)
	assert.InDelta(t, 3.0, report.Registered, 1e-9)
	assert.InDelta(t, 4.0, report.Remaining, 1e-9)
	require.Len(t, gw.CreatedRequests, 1)
	assert.Equal(t, 16345, gw.CreatedRequests[0].EnablerID)
	assert.NotNil(t, report.Tasks)
	assert.NotNil(t, report.ClosedIDs)
}

func TestRegisterMeetingsResolverFailure(t *testing.T) {
	wantErr := errors.New("no enabler")
	resolver := &MockResolver{
		ResolveFunc: func(ctx context.Context, date time.Time, requested int) (int, error) {
			return 0, wantErr
		},
	}
	gw := &MockGateway{}
	svc := NewService(gw, resolver, testOwner, nil)

	_, err := svc.RegisterMeetings(context.Background(), "Mildred Moreno", testDate(), nil, 0)
	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, gw.CreatedRequests)
}

func TestRegisterFillerQuotaMet(t *testing.T) {
	gw := &MockGateway{
		LoggedHoursFunc: func(ctx context.Context, user string, date time.Time) (models.DayHours, error) {
			return models.DayHours{Total: 9.5}, nil
		},
	}
	resolverCalled := false
	resolver := &MockResolver{
		ResolveFunc: func(ctx context.Context, date time.Time, requested int) (int, error) {
			resolverCalled = true
			return 16345, nil
		},
	}
	svc := NewService(gw, resolver, testOwner, nil)

	report, err := svc.RegisterFiller(context.Background(), "Mildred Moreno", testDate(), 0)
	require.NoError(t, err)

	assert.Equal(t, "No se requiere tarea adicional. Ya se cumplieron las 9 horas.", report.Message)
	assert.InDelta(t, 0.5, report.Overage, 1e-9)
	assert.Nil(t, report.Task)
	assert.Empty(t, gw.CreatedRequests)
	// no enabler lookup when there is nothing to create
	assert.False(t, resolverCalled)
}

func TestRegisterFillerCreatesTask(t *testing.T) {
	gw := &MockGateway{
		LoggedHoursFunc: func(ctx context.Context, user string, date time.Time) (models.DayHours, error) {
			return models.DayHours{Total: 6.0}, nil
		},
	}
	svc := NewService(gw, &MockResolver{}, testOwner, func(n int) int { return 0 })

	report, err := svc.RegisterFiller(context.Background(), "Mildred Moreno", testDate(), 0)
	require.NoError(t, err)

	assert.Equal(t, "Tarea genérica registrada", report.Message)
	require.NotNil(t, report.Task)
	require.Len(t, gw.CreatedRequests, 1)
	assert.InDelta(t, 3.0, gw.CreatedRequests[0].Hours, 1e-9)
	assert.Equal(t, 16345, gw.CreatedRequests[0].EnablerID)
}

func TestRegisterPRReview(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"1": {"estado": "aprobado", "repositorio": "payments-api"},
		"2": {"estado": "aprobado", "repositorio": "core-ledger"},
		"3": {"estado": "pendiente", "repositorio": "core-ledger"}
	}`
	path := filepath.Join(dir, prlog.TrackingFilename(testDate()))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	owner := testOwner
	owner.TrackingDir = dir

	gw := &MockGateway{
		LoggedHoursFunc: func(ctx context.Context, user string, date time.Time) (models.DayHours, error) {
			return models.DayHours{Total: 8.8}, nil
		},
	}
	svc := NewService(gw, &MockResolver{}, owner, nil)

	report, err := svc.RegisterPRReview(context.Background(), "Mildred Moreno", testDate(), 0)
	require.NoError(t, err)

	assert.Equal(t, "Actividad registrada con éxito.", report.Message)
	require.Len(t, gw.CreatedRequests, 1)
	req := gw.CreatedRequests[0]
	assert.Equal(t, "Revisión y Aprobación de PRs", req.Title)
	// 2 approved PRs estimate 0.5h, capped to the 0.2h still available
	assert.InDelta(t, 0.2, req.Hours, 1e-9)
	assert.Contains(t, req.Description, "core-ledger, payments-api")
}

func TestRegisterPRReviewNoApproved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, prlog.TrackingFilename(testDate()))
	require.NoError(t, os.WriteFile(path, []byte(`{"1": {"estado": "pendiente"}}`), 0o644))

	owner := testOwner
	owner.TrackingDir = dir

	gw := &MockGateway{}
	svc := NewService(gw, &MockResolver{}, owner, nil)

	report, err := svc.RegisterPRReview(context.Background(), "Mildred Moreno", testDate(), 0)
	require.NoError(t, err)

	assert.Equal(t, "No hay PRs aprobados para registrar.", report.Message)
	assert.Empty(t, gw.CreatedRequests)
}

func TestRegisterPRReviewMissingTracking(t *testing.T) {
	owner := testOwner
	owner.TrackingDir = t.TempDir()

	svc := NewService(&MockGateway{}, &MockResolver{}, owner, nil)

	_, err := svc.RegisterPRReview(context.Background(), "Mildred Moreno", testDate(), 0)
	assert.ErrorIs(t, err, prlog.ErrTrackingNotFound)
}

func TestCloseDay(t *testing.T) {
	gw := &MockGateway{
		OpenTasksFunc: func(ctx context.Context, user string, date time.Time) ([]models.WorkItem, error) {
			return []models.WorkItem{
				{ID: 1, State: "New"},
				{ID: 2, State: "Closed"},
				{ID: 3, State: "New"},
			}, nil
		},
		SetStateFunc: func(ctx context.Context, id int, state string) error {
			assert.Equal(t, "Closed", state)
			if id == 3 {
				return errors.New("transition rejected")
			}
			return nil
		},
	}
	svc := NewService(gw, &MockResolver{}, testOwner, nil)

	closed := svc.CloseDay(context.Background(), "Mildred Moreno", testDate())

	// already-closed items are skipped, failures are logged and skipped
	assert.Equal(t, []int{1}, closed)
}

func TestCloseDayIdempotent(t *testing.T) {
	open := []models.WorkItem{{ID: 1, State: "New"}, {ID: 2, State: "New"}}
	gw := &MockGateway{}
	gw.OpenTasksFunc = func(ctx context.Context, user string, date time.Time) ([]models.WorkItem, error) {
		var remaining []models.WorkItem
		for _, item := range open {
			closed := false
			for _, id := range gw.ClosedIDs {
				if id == item.ID {
					closed = true
					break
				}
			}
			if !closed {
				remaining = append(remaining, item)
			}
		}
		return remaining, nil
	}
	svc := NewService(gw, &MockResolver{}, testOwner, nil)

	first := svc.CloseDay(context.Background(), "Mildred Moreno", testDate())
	assert.Equal(t, []int{1, 2}, first)

	second := svc.CloseDay(context.Background(), "Mildred Moreno", testDate())
	assert.Empty(t, second)
}

func TestCloseDayQueryFailure(t *testing.T) {
	gw := &MockGateway{
		OpenTasksFunc: func(ctx context.Context, user string, date time.Time) ([]models.WorkItem, error) {
			return nil, errors.New("wiql down")
		},
	}
	svc := NewService(gw, &MockResolver{}, testOwner, nil)

	closed := svc.CloseDay(context.Background(), "Mildred Moreno", testDate())
	assert.Empty(t, closed)
}

func TestDayStatus(t *testing.T) {
	tests := []struct {
		name   string
		logged float64
		want   string
	}{
		{"complete", 9.0, "¡Día completado!"},
		{"over", 10.5, "¡Sobrepasaste las 9 horas por 1.50 horas!"},
		{"under", 7.0, "Aún faltan 2.00 horas para completar el día."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &MockGateway{
				LoggedHoursFunc: func(ctx context.Context, user string, date time.Time) (models.DayHours, error) {
					return models.DayHours{Total: tt.logged}, nil
				},
			}
			svc := NewService(gw, &MockResolver{}, testOwner, nil)

			logged, status, err := svc.DayStatus(context.Background(), "Mildred Moreno", testDate())
			require.NoError(t, err)
			assert.InDelta(t, tt.logged, logged.Total, 1e-9)
			assert.Equal(t, tt.want, status)
		})
	}
}
