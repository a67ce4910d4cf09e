package api

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed views/*.html
var viewsFS embed.FS

// NewViewEngine returns the HTML engine backed by the embedded templates.
func NewViewEngine() *html.Engine {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("inc", func(i int) int { return i + 1 })
	return engine
}

// NewErrorHandler logs unhandled errors and answers with JSON.
func NewErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log.Error("HTTP error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))

		// Default to 500 status code
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		return c.Status(code).JSON(fiber.Map{
			"error":   err.Error(),
			"success": false,
		})
	}
}

func SetupRoutes(app *fiber.App, handler *Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
		Output:     zap.NewStdLog(log).Writer(),
	}))

	// Trip planner page
	app.Get("/", handler.ShowForm)
	app.Post("/", handler.PlanTrip)

	// API v1 routes
	api := app.Group("/api/v1", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,POST,DELETE",
	}))

	// Health check
	api.Get("/health", handler.GetHealth)

	// Geocode cache
	api.Post("/cache/warm", handler.WarmCache)
	api.Delete("/cache", handler.FlushCache)

	// Metrics
	api.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})
}
