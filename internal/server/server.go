// Package server exposes the registrar operations over HTTP.
package server

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/milymoreno/timesheet/internal/config"
	"github.com/milymoreno/timesheet/internal/registrar"
)

// Server binds the registrar service to the HTTP surface.
type Server struct {
	service *registrar.Service
	cfg     *config.Config
}

// New builds the HTTP server around the registrar service.
func New(service *registrar.Service, cfg *config.Config) *Server {
	return &Server{service: service, cfg: cfg}
}

// Router assembles the gin engine with every endpoint registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	router.GET("/", s.rootHandler)
	router.GET("/obtener-habilitador-semanal", s.weeklyEnablerHandler)
	router.POST("/registrar-reuniones", s.registerMeetingsHandler)
	router.POST("/registrar-tarea-generica", s.registerFillerHandler)
	router.POST("/registrar-revision-prs", s.registerPRReviewHandler)
	router.GET("/total-horas-dia", s.dayHoursHandler)
	router.POST("/cerrar-tareas-dia", s.closeDayHandler)
	router.GET("/estado-horas-habilitador", s.enablerStatusHandler)

	return router
}

// Run serves the router on PORT, defaulting to 8080.
func Run(router *gin.Engine) error {
	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := router.Run(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
