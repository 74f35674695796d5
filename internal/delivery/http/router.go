// Package http exposes the assessment pipeline over a fiber API.
package http

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pelorus-nav/searisk/internal/models"
	"github.com/pelorus-nav/searisk/internal/ports"
	"github.com/pelorus-nav/searisk/internal/routing"
	"github.com/pelorus-nav/searisk/internal/service"
)

// NewApp builds the fiber application with middleware, error mapping and all
// API routes. The caller owns the listen/shutdown lifecycle.
func NewApp(log *slog.Logger, handler *Handler) *fiber.App {
	const rwTimeout = 30 * time.Second

	app := fiber.New(fiber.Config{
		AppName:      "searisk API v1",
		ReadTimeout:  rwTimeout,
		WriteTimeout: rwTimeout,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	api := app.Group("/api/v1")
	{
		api.Post("/routes/assess", handler.AssessRoute)
		api.Post("/routes/alternatives", handler.CompareAlternatives)
		api.Get("/ports/resolve", handler.ResolvePort)
		api.Post("/incidents/reload", handler.ReloadIncidents)
		api.Get("/incidents/stats", handler.IncidentStats)
	}

	return app
}

// errorHandler translates fiber and typed domain errors into JSON bodies.
// Domain errors keep their message; anything unmapped stays a generic 500.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.Is(err, models.ErrInvalidCoordinate),
		errors.Is(err, models.ErrRouteTooShort),
		errors.Is(err, service.ErrInvalidEndpoint),
		errors.Is(err, service.ErrNoDestinations):
		code = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ports.ErrPortNotFound),
		errors.Is(err, routing.ErrNoRouteFound):
		code = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, routing.ErrProviderUnavailable):
		code = fiber.StatusBadGateway
		message = err.Error()
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
