package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/internal/meetings"
	"github.com/milymoreno/timesheet/internal/prlog"
	"github.com/milymoreno/timesheet/pkg/models"
)

const dateLayout = "2006-01-02"

// parseDate reads the fecha query parameter; on failure it writes the
// 400 response and reports false.
func parseDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("fecha")
	date, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato de fecha inválido. Usa YYYY-MM-DD."})
		return time.Time{}, false
	}
	return date, true
}

// userParam reads the usuario query parameter, falling back to the
// configured default user.
func (s *Server) userParam(c *gin.Context) string {
	if user := c.Query("usuario"); user != "" {
		return user
	}
	return s.cfg.Timesheet.DefaultUser
}

// enablerParam reads the optional habilitador_id query parameter;
// absent or unparsable values resolve to zero, which triggers automatic
// resolution downstream.
func enablerParam(c *gin.Context) int {
	raw := c.Query("habilitador_id")
	if raw == "" {
		return 0
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return id
}

// GET /
func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mensaje": "API de Registro de Reuniones en Azure DevOps funcionando"})
}

// GET /obtener-habilitador-semanal?fecha=
func (s *Server) weeklyEnablerHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	id, err := s.service.ResolveEnabler(c.Request.Context(), date, 0)
	if err != nil {
		logging.Error("weekly enabler lookup failed", "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// POST /registrar-reuniones?usuario=&fecha=&habilitador_id=&origen=
//
// origen selects the meeting source: "excel" (default) reads the daily
// spreadsheet export, "gmail" fetches the emailed JSON.
func (s *Server) registerMeetingsHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}
	user := s.userParam(c)

	var (
		loaded []models.Meeting
		err    error
	)
	source := c.DefaultQuery("origen", "excel")
	switch source {
	case "gmail":
		loaded, err = meetings.FetchFromGmail(s.cfg.Gmail.Account, s.cfg.Gmail.Password, date)
	default:
		loaded, err = meetings.LoadExcel(s.cfg.Timesheet.ExcelDir, date)
	}
	if err != nil {
		if errors.Is(err, meetings.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(loaded) == 0 {
		c.JSON(http.StatusOK, gin.H{"mensaje": "No hay reuniones en el archivo."})
		return
	}

	report, err := s.service.RegisterMeetings(c.Request.Context(), user, date, loaded, enablerParam(c))
	if err != nil {
		logging.Error("meeting registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"archivo":           meetings.ExcelFilename(date),
		"mensaje":           report.Message,
		"horas_registradas": report.Registered,
		"horas_restantes":   report.Remaining,
		"tareas":            report.Tasks,
		"mensaje_cerradas":  report.ClosedMessage,
		"ids_cerrados":      report.ClosedIDs,
	})
}

// POST /registrar-tarea-generica?usuario=&fecha=&habilitador_id=
func (s *Server) registerFillerHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	report, err := s.service.RegisterFiller(c.Request.Context(), s.userParam(c), date, enablerParam(c))
	if err != nil {
		logging.Error("filler registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// POST /registrar-revision-prs?usuario=&fecha=&habilitador_id=
func (s *Server) registerPRReviewHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	report, err := s.service.RegisterPRReview(c.Request.Context(), s.userParam(c), date, enablerParam(c))
	if err != nil {
		if errors.Is(err, prlog.ErrTrackingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logging.Error("PR review registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GET /total-horas-dia?usuario=&fecha=
func (s *Server) dayHoursHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}
	user := s.userParam(c)

	logged, status, err := s.service.DayStatus(c.Request.Context(), user, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"usuario":          user,
		"fecha":            date.Format(dateLayout),
		"horas_trabajadas": logged.Total,
		"mensaje":          status,
		"detalle":          logged.Items,
	})
}

// POST /cerrar-tareas-dia?usuario=&fecha=
func (s *Server) closeDayHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	closed := s.service.CloseDay(c.Request.Context(), s.userParam(c), date)

	c.JSON(http.StatusOK, gin.H{
		"mensaje":      strconv.Itoa(len(closed)) + " tareas cerradas",
		"ids_cerrados": closed,
	})
}

// GET /estado-horas-habilitador?usuario=&fecha=&habilitador_id=
func (s *Server) enablerStatusHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	enablerID := enablerParam(c)
	if enablerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "habilitador_id es requerido"})
		return
	}

	status, err := s.service.EnablerStatus(c.Request.Context(), s.userParam(c), date, enablerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}
