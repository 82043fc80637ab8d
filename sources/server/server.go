package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/metrics"
	"fitcoach/sources/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

const (
	scopeAnswers = "answers"
	scopePlans   = "plans"
)

type Dependencies struct {
	Answers   Answerer
	Plans     Planner
	Health    HealthChecker
	Throttler Throttler
	Metrics   *metrics.MetricsService
}

// NewRouter assembles the public API. Every /api/v1 route requires a bearer token.
func NewRouter(config *configuration.Config, deps Dependencies, log *tracing.Logger) *gin.Engine {
	gin.SetMode(config.Server.Mode)

	h := &handlers{answers: deps.Answers, plans: deps.Plans, health: deps.Health, log: log}
	auth := NewAuthenticator(config)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log, deps.Metrics))
	if len(config.Server.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  config.Server.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/health", h.healthcheck)

	api := router.Group("/api/v1")
	api.Use(auth.middleware())

	api.POST("/answers", throttle(deps.Throttler, scopeAnswers), h.answer)
	api.POST("/plans/nutrition", throttle(deps.Throttler, scopePlans), h.generatePlan)
	api.POST("/plans/workout", throttle(deps.Throttler, scopePlans), h.generateWorkoutPlan)
	api.GET("/plans", h.listPlans)

	return router
}

type Server struct {
	http *http.Server
	log  *tracing.Logger
}

func NewServer(lc fx.Lifecycle, config *configuration.Config, deps Dependencies, log *tracing.Logger) *Server {
	s := &Server{
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Server.Port),
			Handler:      NewRouter(config, deps, log),
			ReadTimeout:  config.Server.ReadTimeout,
			WriteTimeout: config.Server.WriteTimeout,
		},
		log: log,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", s.http.Addr)
			if err != nil {
				log.E("Failed to bind API server", tracing.InnerError, err, "addr", s.http.Addr)
				return err
			}
			log.I("API server is starting", "addr", s.http.Addr)
			go s.serve(listener)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.I("Stopping API server")
			return s.http.Shutdown(ctx)
		},
	})

	return s
}

func (s *Server) serve(listener net.Listener) {
	if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.F("API server stopped unexpectedly", tracing.InnerError, err)
	}
}
