package handler

import (
	"errors"
	"fmt"
	"strings"

	"jobscout/internal/coordinator"
	"jobscout/internal/delivery/http/dto"
	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/pkg/response"
	"jobscout/internal/scraper"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const defaultSessionsLimit = 20

type ScrapeHandler struct {
	uc usecase.ScrapeUsecase
}

func NewScrapeHandler(uc usecase.ScrapeUsecase) *ScrapeHandler {
	return &ScrapeHandler{uc: uc}
}

func (h *ScrapeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/run", h.Run)
	r.Get("/sessions", h.ListSessions)
	r.Get("/sessions/:id", h.GetSession)
}

func (h *ScrapeHandler) Run(c fiber.Ctx) error {
	var req dto.ScrapeRunRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
	}

	focus, err := normalizeFocus(req.FocusAreas)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, nil)
	}

	params := coordinator.RunParams{FocusAreas: focus, PriorityOnly: req.PriorityOnly}
	if err := h.uc.Trigger(c.Context(), params); err != nil {
		if errors.Is(err, usecase.ErrScrapeInProgress) {
			return middleware.NewAppError(fiber.StatusConflict, "A scrape run is already in progress", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusAccepted, "scrape run started", map[string]any{
		"focus_areas":   focus,
		"priority_only": req.PriorityOnly,
	})
}

func (h *ScrapeHandler) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, nil)
	}

	s, err := h.uc.GetSession(c.Context(), id)
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromSession(s))
}

func (h *ScrapeHandler) ListSessions(c fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit", defaultSessionsLimit)
	if err != nil || limit <= 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	items, err := h.uc.ListSessions(c.Context(), limit)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromSessions(items))
}

// normalizeFocus lowercases and trims each requested tag, drops empties and
// rejects unknown ones. A nil result means "everything".
func normalizeFocus(areas []string) ([]string, error) {
	var out []string
	for _, area := range areas {
		focus := strings.ToLower(strings.TrimSpace(area))
		switch focus {
		case "":
		case scraper.FocusAll, scraper.FocusInternship, scraper.FocusNewGrad, scraper.FocusH1B, scraper.FocusRemote:
			out = append(out, focus)
		default:
			return nil, fmt.Errorf("unknown focus area %q", area)
		}
	}
	return out, nil
}
