package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"oneday/internal/app"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the JSON API over the planner and reminder services.
func NewRouter(planner *app.PlannerService, reminders *app.ReminderService, baseLogger *logrus.Entry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(baseLogger))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	h := &handlers{planner: planner, reminders: reminders, logger: baseLogger}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/calendar/:month", h.getCalendar)

	api.GET("/categories", h.listCategories)
	api.POST("/categories", h.createCategory)
	api.PUT("/categories/:id", h.renameCategory)
	api.DELETE("/categories/:id", h.deleteCategory)
	api.GET("/categories/:id/tasks", h.listTasks)
	api.POST("/categories/:id/tasks", h.createTask)

	api.PUT("/tasks/:id", h.renameTask)
	api.DELETE("/tasks/:id", h.deleteTask)
	api.POST("/tasks/:id/toggle", h.toggleTask)

	api.GET("/reminders", h.listReminders)
	api.POST("/reminders", h.createReminder)
	api.POST("/reminders/check", h.checkReminder)
	api.POST("/reminders/sweep", h.sweepReminders)
	api.GET("/reminders.ics", h.remindersICS)
	api.PUT("/reminders/:id", h.updateReminder)
	api.DELETE("/reminders/:id", h.deleteReminder)

	return r
}

func requestLogger(baseLogger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := baseLogger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("HTTP request failed")
			return
		}
		entry.Debug("HTTP request served")
	}
}

// Server runs the router until Shutdown.
type Server struct {
	srv    *http.Server
	logger *logrus.Entry
}

func NewServer(addr string, handler http.Handler, logger *logrus.Entry) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.srv.Addr).Info("HTTP API listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
