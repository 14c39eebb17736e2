package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"jobscout/internal/coordinator"
	"jobscout/internal/domain/scrape"
	"jobscout/internal/repository"

	"github.com/google/uuid"
)

var ErrScrapeInProgress = errors.New("a scrape run is already in progress")

const scrapeLockKey = "scrape:run:lock"

// SessionRunner runs one full scraping session.
type SessionRunner interface {
	Run(ctx context.Context, params coordinator.RunParams) (scrape.Session, error)
}

// RunLocker is the slice of the cache the scrape trigger needs: a
// best-effort cross-process lock and ranking invalidation.
type RunLocker interface {
	SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	InvalidateRankings(ctx context.Context) error
}

type ScrapeUsecase interface {
	// Trigger starts a session in the background and returns immediately.
	Trigger(ctx context.Context, params coordinator.RunParams) error
	GetSession(ctx context.Context, id string) (scrape.Session, error)
	ListSessions(ctx context.Context, limit int) ([]scrape.Session, error)
}

type Scrape struct {
	runner   SessionRunner
	sessions repository.SessionRepository
	locker   RunLocker
	logger   *log.Logger

	runTimeout time.Duration
	lockTTL    time.Duration
}

func NewScrapeUsecase(runner SessionRunner, sessions repository.SessionRepository, locker RunLocker, logger *log.Logger) *Scrape {
	return &Scrape{
		runner:     runner,
		sessions:   sessions,
		locker:     locker,
		logger:     logger,
		runTimeout: 30 * time.Minute,
		lockTTL:    35 * time.Minute,
	}
}

func (u *Scrape) Trigger(ctx context.Context, params coordinator.RunParams) error {
	token := uuid.NewString()
	ok, err := u.locker.SetIfNotExists(ctx, scrapeLockKey, token, u.lockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrScrapeInProgress
	}

	// The run outlives the HTTP request that triggered it.
	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), u.runTimeout)
		defer cancel()
		defer func() {
			if err := u.locker.Delete(runCtx, scrapeLockKey); err != nil {
				u.logger.Printf("scrape lock release failed err=%v", err)
			}
		}()

		session, err := u.runner.Run(runCtx, params)
		if err != nil {
			u.logger.Printf("scrape run ended early id=%s err=%v", session.ID, err)
		}
		if session.TotalSaved > 0 {
			if err := u.locker.InvalidateRankings(runCtx); err != nil {
				u.logger.Printf("rank cache invalidation failed err=%v", err)
			}
		}
	}()

	return nil
}

func (u *Scrape) GetSession(ctx context.Context, id string) (scrape.Session, error) {
	return u.sessions.Get(ctx, id)
}

func (u *Scrape) ListSessions(ctx context.Context, limit int) ([]scrape.Session, error) {
	return u.sessions.ListRecent(ctx, limit)
}
