package usecase

import (
	"context"

	"jobscout/internal/domain/job"
	"jobscout/internal/repository"

	"github.com/google/uuid"
)

type JobUsecase interface {
	List(ctx context.Context, f repository.JobFilter) ([]job.Posting, error)
	Get(ctx context.Context, id uuid.UUID) (job.Posting, error)
}

type Jobs struct {
	repo repository.JobRepository
}

func NewJobUsecase(repo repository.JobRepository) *Jobs {
	return &Jobs{repo: repo}
}

func (u *Jobs) List(ctx context.Context, f repository.JobFilter) ([]job.Posting, error) {
	return u.repo.ListActive(ctx, f)
}

func (u *Jobs) Get(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	return u.repo.GetByID(ctx, id)
}
