package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Planner interface {
	Plan(ctx context.Context, req models.TripRequest) (*models.TripPlan, error)
	GetLastPlanTime() time.Time
	GetStats() map[string]interface{}
}

type WarmScheduler interface {
	GetStatus() map[string]interface{}
	ForceRun()
	UpdateCities(cities []string)
}

type CacheFlusher interface {
	Flush()
}

type Settings struct {
	DefaultDays int
	MaxDays     int
	// PlanTimeout bounds one POST / including every upstream call
	PlanTimeout time.Duration
}

type Handler struct {
	planner   Planner
	scheduler WarmScheduler
	cache     CacheFlusher
	form      Settings
	logger    *zap.Logger
	startTime time.Time
}

// NewHandler wires the page handlers. scheduler and cache may be nil.
func NewHandler(planner Planner, scheduler WarmScheduler, cache CacheFlusher, form Settings, logger *zap.Logger) *Handler {
	return &Handler{
		planner:   planner,
		scheduler: scheduler,
		cache:     cache,
		form:      form,
		logger:    logger,
		startTime: time.Now(),
	}
}

func (h *Handler) page(city string, days int, message string, plan *models.TripPlan) fiber.Map {
	return fiber.Map{
		"City":    city,
		"Days":    days,
		"MaxDays": h.form.MaxDays,
		"Message": message,
		"Plan":    plan,
	}
}

// ShowForm handles GET /
func (h *Handler) ShowForm(c *fiber.Ctx) error {
	return c.Render("index", h.page("", h.form.DefaultDays, "", nil))
}

// PlanTrip handles POST /
func (h *Handler) PlanTrip(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.FormValue("city"))
	daysStr := strings.TrimSpace(c.FormValue("days"))

	if city == "" {
		return c.Status(fiber.StatusBadRequest).Render("index",
			h.page("", h.form.DefaultDays, "Please enter a valid city name.", nil))
	}

	days := h.form.DefaultDays
	if daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).Render("index",
				h.page(city, h.form.DefaultDays, h.daysMessage(), nil))
		}
		days = parsed
	}

	h.logger.Info("Planning trip",
		zap.String("city", city),
		zap.Int("days", days))

	ctx := c.UserContext()
	if h.form.PlanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.form.PlanTimeout)
		defer cancel()
	}

	plan, err := h.planner.Plan(ctx, models.TripRequest{City: city, Days: days})
	if err != nil {
		status, message := h.describe(err, city)
		if status >= fiber.StatusInternalServerError {
			h.logger.Error("Failed to plan trip",
				zap.String("city", city),
				zap.Int("days", days),
				zap.Error(err))
		}
		return c.Status(status).Render("index", h.page(city, days, message, nil))
	}

	return c.Render("index", h.page(city, days, "", plan))
}

func (h *Handler) describe(err error, city string) (int, string) {
	switch {
	case errors.Is(err, services.ErrEmptyCity):
		return fiber.StatusBadRequest, "Please enter a valid city name."
	case errors.Is(err, services.ErrInvalidDays):
		return fiber.StatusBadRequest, h.daysMessage()
	case errors.Is(err, services.ErrNoAttractions):
		return fiber.StatusNotFound, fmt.Sprintf("Could not find attractions for %s.", city)
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "Planning took too long. Please try again."
	default:
		return fiber.StatusInternalServerError, "Something went wrong while planning your trip. Please try again."
	}
}

func (h *Handler) daysMessage() string {
	return fmt.Sprintf("Please enter a number of days between 1 and %d.", h.form.MaxDays)
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"last_plan": h.planner.GetLastPlanTime(),
		"uptime":    time.Since(h.startTime).String(),
		"stats":     h.planner.GetStats(),
	}
	if h.scheduler != nil {
		body["scheduler"] = h.scheduler.GetStatus()
	}
	return c.JSON(body)
}

type warmRequest struct {
	Cities []string `json:"cities"`
}

// WarmCache handles POST /api/v1/cache/warm. An optional JSON body
// {"cities": [...]} replaces the warm list before the run is triggered.
func (h *Handler) WarmCache(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "cache warmer is not running")
	}

	var req warmRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	var cities []string
	for _, city := range req.Cities {
		if city = strings.TrimSpace(city); city != "" {
			cities = append(cities, city)
		}
	}
	if len(cities) > 0 {
		h.scheduler.UpdateCities(cities)
	}
	h.scheduler.ForceRun()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":   true,
		"scheduler": h.scheduler.GetStatus(),
	})
}

// FlushCache handles DELETE /api/v1/cache
func (h *Handler) FlushCache(c *fiber.Ctx) error {
	if h.cache == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "cache is not configured")
	}

	h.cache.Flush()
	h.logger.Info("Geocode cache flushed")

	return c.JSON(fiber.Map{"success": true})
}
