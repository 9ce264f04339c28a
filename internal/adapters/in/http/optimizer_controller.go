package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/infusioncare/appointment-optimizer/internal/config"
	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
	"github.com/infusioncare/appointment-optimizer/internal/core/json_types"
	"github.com/infusioncare/appointment-optimizer/internal/core/ports/in"
	"github.com/infusioncare/appointment-optimizer/pkg/metrics"
)

type OptimizerController struct {
	useCase in.OptimizerUseCase
	cfg     *config.Config
}

func NewOptimizerController(useCase in.OptimizerUseCase, cfg *config.Config) *OptimizerController {
	return &OptimizerController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *OptimizerController) RegisterRoutes(router *gin.Engine) {
	router.Use(requestID())

	router.GET("/health", c.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/locations", c.getLocations)
		api.POST("/slots/find", c.findSlots)
		api.GET("/slots/export", c.exportSlots)
		api.POST("/rebalance", c.rebalance)
	}
}

type FindSlotsRequest struct {
	Location        string `json:"location" binding:"required"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,min=1"`
	ChairID         string `json:"chairId"`
}

type RebalanceRequest struct {
	Location string `json:"location" binding:"required"`
	Days     int    `json:"days" binding:"omitempty,min=1"`
}

type SlotResponse struct {
	Location         string          `json:"location"`
	ChairID          string          `json:"chairId,omitempty"`
	Date             json_types.Date `json:"date"`
	NextAvailable    json_types.Time `json:"nextAvailable"`
	RemainingMinutes int             `json:"remainingMinutes"`
	UtilizationPct   float64         `json:"utilizationPct"`
}

type ReassignmentResponse struct {
	AppointmentID int             `json:"appointmentId"`
	OriginalDate  json_types.Date `json:"originalDate"`
	AssignedDate  json_types.Date `json:"assignedDate"`
	DaysMoved     int             `json:"daysMoved"`
}

type RebalanceDayResponse struct {
	Date             json_types.Date `json:"date"`
	RemainingBefore  int             `json:"remainingBefore"`
	AssignedMinutes  int             `json:"assignedMinutes"`
	OverflowReceiver bool            `json:"overflowReceiver"`
}

func toSlotResponses(slots []domain.Slot) []SlotResponse {
	responses := make([]SlotResponse, 0, len(slots))
	for _, slot := range slots {
		responses = append(responses, SlotResponse{
			Location:         slot.Location,
			ChairID:          slot.ChairID,
			Date:             json_types.Date{Date: slot.Date},
			NextAvailable:    json_types.Time{Time: slot.NextAvailable},
			RemainingMinutes: slot.RemainingMinutes,
			UtilizationPct:   slot.UtilizationPct,
		})
	}
	return responses
}

func (c *OptimizerController) getLocations(ctx *gin.Context) {
	locations, err := c.useCase.GetLocations(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"locations": locations})
}

func (c *OptimizerController) findSlots(ctx *gin.Context) {
	var req FindSlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DurationMinutes > c.cfg.Optimizer.DailyCapacityMinutes {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "durationMinutes exceeds daily capacity"})
		return
	}

	ranked, err := c.useCase.FindSlots(ctx.Request.Context(), domain.SlotQuery{
		Location:        req.Location,
		ChairID:         req.ChairID,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"slots":      toSlotResponses(ranked.Slots),
		"noCapacity": ranked.NoCapacity,
	})
}

func (c *OptimizerController) rebalance(ctx *gin.Context) {
	var req RebalanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := c.useCase.RebalanceDays(ctx.Request.Context(), domain.RebalanceQuery{
		Location: req.Location,
		Days:     req.Days,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	assignments := make([]ReassignmentResponse, 0, len(plan.Assignments))
	for _, a := range plan.Assignments {
		assignments = append(assignments, ReassignmentResponse{
			AppointmentID: a.AppointmentID,
			OriginalDate:  json_types.Date{Date: a.OriginalDate},
			AssignedDate:  json_types.Date{Date: a.AssignedDate},
			DaysMoved:     a.DaysMoved,
		})
	}

	days := make([]RebalanceDayResponse, 0, len(plan.Days))
	for _, d := range plan.Days {
		days = append(days, RebalanceDayResponse{
			Date:             json_types.Date{Date: d.Date},
			RemainingBefore:  d.RemainingBefore,
			AssignedMinutes:  d.AssignedMinutes,
			OverflowReceiver: d.OverflowReceiver,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"assignments": assignments,
		"days":        days,
	})
}

func (c *OptimizerController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": c.cfg.App.Version,
	})
}

// respondError maps domain errors onto HTTP statuses: schema problems in
// upstream data are 422, upstream transport failures 502, the rest 500.
func (c *OptimizerController) respondError(ctx *gin.Context, err error) {
	var schemaErr domain.SchemaError
	if errors.As(err, &schemaErr) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": schemaErr.Error()})
		return
	}

	var upstreamErr *domain.UpstreamError
	if errors.As(err, &upstreamErr) {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (c *OptimizerController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}

// requestID echoes the caller's X-Request-Id or mints one, so log
// lines and responses can be matched up.
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Header("X-Request-Id", id)
		ctx.Next()
	}
}
