package handler

import (
	"time"

	"jobscout/internal/delivery/http/dto"
	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/pkg/response"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type RankHandler struct {
	uc usecase.RankUsecase
}

func NewRankHandler(uc usecase.RankUsecase) *RankHandler {
	return &RankHandler{uc: uc}
}

func (h *RankHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Rank)
}

func (h *RankHandler) Rank(c fiber.Ctx) error {
	var req dto.RankRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
	}

	out, err := h.uc.RankJobs(c.Context(), usecase.RankParams{
		Preferences: req.Preferences(),
		Filter:      req.JobFilter(time.Now()),
	})
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
