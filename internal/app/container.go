package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"jobscout/internal/config"
	"jobscout/internal/coordinator"
	"jobscout/internal/database"
	"jobscout/internal/database/migration"
	dbpostgres "jobscout/internal/database/postgres"
	"jobscout/internal/domain/preferences"
	"jobscout/internal/infrastructure/cache"
	"jobscout/internal/pkg/jwt"
	"jobscout/internal/ranking"
	"jobscout/internal/repository"
	"jobscout/internal/scraper"
	"jobscout/internal/usecase"
	"jobscout/internal/ws"
)

// Container wires every layer together. It owns the shared resources and
// closes them in reverse construction order.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis

	Hub         *ws.Hub
	Coordinator *coordinator.Coordinator

	JWT jwt.Service

	AuthUC   usecase.AuthUsecase
	JobsUC   usecase.JobUsecase
	RankUC   usecase.RankUsecase
	ScrapeUC usecase.ScrapeUsecase
}

func NewContainer(cfg config.Config) (*Container, error) {
	logger := log.New(os.Stdout, "[jobscout] ", log.LstdFlags|log.Lmsgprefix)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	redisCache := cache.NewRedis(cfg.Redis, logger)

	jobRepo := repository.NewPostgresJobRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	userRepo := repository.NewPostgresUserRepository(db)

	jwtSvc := jwt.NewHMACService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	hub := ws.NewHub(logger)
	go hub.Run()

	notifier := ws.NewSessionNotifier(hub)
	coord := buildCoordinator(cfg, logger, db, jobRepo, sessionRepo, notifier)

	ranker := ranking.NewRanker(defaultPreferences(cfg.Ranking))

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Cache:       redisCache,
		Hub:         hub,
		Coordinator: coord,
		JWT:         jwtSvc,
	}

	c.AuthUC = usecase.NewAuthUsecase(userRepo, jwtSvc, cfg.Auth.AdminUser, cfg.Auth.AdminPassword)
	c.JobsUC = usecase.NewJobUsecase(jobRepo)
	c.RankUC = usecase.NewRankUsecase(jobRepo, ranker, redisCache, notifier, logger,
		cfg.Ranking.HighMatchThreshold, cfg.Ranking.MediumMatchThreshold)
	c.ScrapeUC = usecase.NewScrapeUsecase(coord, sessionRepo, redisCache, logger)

	return c, nil
}

// Migrate applies pending SQL migrations. Both binaries call it before
// serving traffic so either one can bring a fresh database up.
func (c *Container) Migrate(ctx context.Context) error {
	return migration.Runner{Dir: "migrations"}.Run(ctx, c.DB.SQLDB())
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func buildCoordinator(
	cfg config.Config,
	logger *log.Logger,
	db database.DB,
	jobRepo repository.JobRepository,
	sessionRepo repository.SessionRepository,
	notifier coordinator.Notifier,
) *coordinator.Coordinator {
	sc := cfg.Scraping

	var gate scraper.Gate = scraper.BypassGate{}
	if sc.RespectRobots {
		client := &http.Client{Timeout: sc.RequestTimeout}
		gate = scraper.NewPoliteGate(client, scraper.UserAgent, sc.DelayMin, sc.DelayMax)
	}

	coord := coordinator.New(db, jobRepo, sessionRepo, logger, notifier, coordinator.Options{
		CompanyDelay:     sc.DelayMin,
		MaxJobsPerSource: sc.MaxJobsPerSource,
	})

	coord.Register(scraper.NewGitHubScraper(gate, logger, sc.GitHubToken, scraper.DefaultGitHubRepos))
	coord.Register(scraper.NewInternListScraper(gate, logger))
	coord.Register(scraper.NewBoardAPIScraper(gate, logger, sc.RateLimitRequests, sc.RateLimitWindow))

	var headless scraper.HeadlessFetcher
	if sc.UseHeadless {
		headless = scraper.NewChromeFetcher()
	}
	for _, target := range scraper.CompanyTargets {
		switch target.ATS {
		case scraper.ATSGreenhouse, scraper.ATSLever:
			coord.Register(scraper.NewATSScraper(gate, logger, target))
		default:
			coord.Register(scraper.NewCompanyScraper(gate, logger, target, headless))
		}
	}

	return coord
}

// defaultPreferences is the ranking profile used when a request carries no
// preferences of its own. Factor weights come from configuration; the
// keyword lists from the full-time preset.
func defaultPreferences(rc config.RankingConfig) *preferences.Preferences {
	p := preferences.FullTime()
	p.RankingWeights = map[string]float64{
		preferences.FactorKeywords:   rc.KeywordWeight,
		preferences.FactorLocation:   rc.LocationWeight,
		preferences.FactorSalary:     rc.SalaryWeight,
		preferences.FactorExperience: rc.ExperienceWeight,
		preferences.FactorCompany:    rc.CompanyWeight,
		preferences.FactorFreshness:  rc.FreshnessWeight,
	}
	return &p
}
