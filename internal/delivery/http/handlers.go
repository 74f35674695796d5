package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/pelorus-nav/searisk/internal/incidents"
	"github.com/pelorus-nav/searisk/internal/ports"
	"github.com/pelorus-nav/searisk/internal/service"
)

// Assessor runs the assessment pipeline.
type Assessor interface {
	Assess(ctx context.Context, req service.AssessRequest) (*service.RouteAssessment, error)
	CompareAlternatives(ctx context.Context, req service.AlternativesRequest) (*service.AlternativesResult, error)
}

// PortResolver resolves free-text port names.
type PortResolver interface {
	Resolve(ctx context.Context, name string) (*ports.Port, error)
}

// IncidentAdmin is the dataset lifecycle surface of the incident store.
type IncidentAdmin interface {
	Reload(ctx context.Context) error
	Stats() incidents.Stats
}

// Handler contains all HTTP handlers.
type Handler struct {
	log             *slog.Logger
	assessor        Assessor
	resolver        PortResolver
	incidents       IncidentAdmin
	maxAlternatives int
}

// NewHandler creates a new handler.
func NewHandler(
	log *slog.Logger,
	assessor Assessor,
	resolver PortResolver,
	admin IncidentAdmin,
	maxAlternatives int,
) *Handler {
	return &Handler{
		log:             log,
		assessor:        assessor,
		resolver:        resolver,
		incidents:       admin,
		maxAlternatives: maxAlternatives,
	}
}

// AssessRoute assesses one origin/destination pair. `?format=geojson`
// returns the map-rendering export instead of the JSON assessment.
func (h *Handler) AssessRoute(c *fiber.Ctx) error {
	var req service.AssessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.assessor.Assess(c.Context(), req)
	if err != nil {
		return err
	}

	if c.Query("format") == "geojson" {
		return c.JSON(service.ToGeoJSON(assessment))
	}

	return c.JSON(assessment)
}

// CompareAlternatives ranks candidate destinations against one origin.
func (h *Handler) CompareAlternatives(c *fiber.Ctx) error {
	var req service.AlternativesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Destinations) > h.maxAlternatives {
		return fiber.NewError(fiber.StatusBadRequest, "too many candidate destinations")
	}

	result, err := h.assessor.CompareAlternatives(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// ResolvePort resolves a free-text port name to coordinates.
func (h *Handler) ResolvePort(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'name' is required")
	}

	port, err := h.resolver.Resolve(c.Context(), name)
	if err != nil {
		return err
	}

	return c.JSON(port)
}

// ReloadIncidents triggers a full dataset reload. A failed reload keeps the
// previous index, so the error is reported alongside the surviving stats.
func (h *Handler) ReloadIncidents(c *fiber.Ctx) error {
	if err := h.incidents.Reload(c.Context()); err != nil {
		h.log.ErrorContext(c.Context(), "Incident reload failed", "error", err)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"stats": h.incidents.Stats(),
		})
	}

	return c.JSON(fiber.Map{"status": "ok", "stats": h.incidents.Stats()})
}

// IncidentStats reports the active dataset statistics.
func (h *Handler) IncidentStats(c *fiber.Ctx) error {
	return c.JSON(h.incidents.Stats())
}
