package handler

import (
	"errors"
	"strconv"
	"time"

	"jobscout/internal/delivery/http/dto"
	"jobscout/internal/domain/job"
	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/pkg/response"
	"jobscout/internal/repository"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	defaultJobsLimit = 50
	maxJobsLimit     = 200
)

type JobsHandler struct {
	uc usecase.JobUsecase
}

func NewJobsHandler(uc usecase.JobUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/:id", h.Get)
}

func (h *JobsHandler) List(c fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit", defaultJobsLimit)
	if err != nil || limit < 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if limit == 0 || limit > maxJobsLimit {
		limit = maxJobsLimit
	}
	offset, err := parseQueryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	f := repository.JobFilter{
		Company:    c.Query("company"),
		SourceName: c.Query("source"),
		JobType:    c.Query("job_type"),
		RemoteOnly: c.Query("remote") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	if days, err := parseQueryInt(c, "posted_within_days", 0); err == nil && days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		f.PostedAfter = &cutoff
	} else if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	items, err := h.uc.List(c.Context(), f)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromPostings(items))
}

func (h *JobsHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job id", nil, err)
	}

	posting, err := h.uc.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromPosting(posting))
}

func parseQueryInt(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}
