package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"fitcoach/sources/answering"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"github.com/gin-gonic/gin"
)

type (
	Answerer interface {
		Answer(ctx context.Context, userID string, question string) (answering.Result, error)
	}

	Planner interface {
		GeneratePlan(ctx context.Context, userID string, parameters entities.PlanParameters) (*entities.Plan, error)
		GenerateWorkoutPlan(ctx context.Context, userID string, parameters entities.PlanParameters) (*entities.Plan, error)
		ListPlans(ctx context.Context, userID string, limit int) ([]entities.Plan, error)
	}

	HealthChecker interface {
		CheckDatabaseHealth(ctx context.Context, logger *tracing.Logger) error
		CheckRedisHealth(ctx context.Context, logger *tracing.Logger) error
	}
)

type answerRequest struct {
	Question string `json:"question"`
}

type planRequest struct {
	RequestParameters entities.PlanParameters `json:"requestParameters"`
}

type planResponse struct {
	Success bool           `json:"success"`
	Plan    *entities.Plan `json:"plan"`
}

type handlers struct {
	answers Answerer
	plans   Planner
	health  HealthChecker
	log     *tracing.Logger
}

func (h *handlers) answer(c *gin.Context) {
	var request answerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, fmt.Errorf("%w: malformed body: %w", platform.ErrInvalidRequest, err))
		return
	}

	result, err := h.answers.Answer(c.Request.Context(), userID(c), request.Question)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *handlers) generatePlan(c *gin.Context) {
	h.respondPlan(c, h.plans.GeneratePlan)
}

func (h *handlers) generateWorkoutPlan(c *gin.Context) {
	h.respondPlan(c, h.plans.GenerateWorkoutPlan)
}

func (h *handlers) respondPlan(c *gin.Context, generate func(ctx context.Context, userID string, parameters entities.PlanParameters) (*entities.Plan, error)) {
	var request planRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			respondError(c, fmt.Errorf("%w: malformed body: %w", platform.ErrInvalidRequest, err))
			return
		}
	}

	plan, err := generate(c.Request.Context(), userID(c), request.RequestParameters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, planResponse{Success: true, Plan: plan})
}

func (h *handlers) listPlans(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, fmt.Errorf("%w: limit must be a non-negative integer", platform.ErrInvalidRequest))
			return
		}
		limit = parsed
	}

	plans, err := h.plans.ListPlans(c.Request.Context(), userID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if plans == nil {
		plans = []entities.Plan{}
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *handlers) healthcheck(c *gin.Context) {
	ctx := c.Request.Context()
	database, cache := "ok", "ok"
	status := http.StatusOK

	if err := h.health.CheckDatabaseHealth(ctx, h.log); err != nil {
		database, status = "unavailable", http.StatusServiceUnavailable
	}
	if err := h.health.CheckRedisHealth(ctx, h.log); err != nil {
		cache, status = "unavailable", http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"service":  "fitcoach",
		"version":  platform.GetAppVersion(),
		"database": database,
		"redis":    cache,
	})
}
