package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Scraping ScrapingConfig
	Ranking  RankingConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUser     string
	AdminPassword string
}

type ScrapingConfig struct {
	DelayMin          time.Duration
	DelayMax          time.Duration
	RequestTimeout    time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	MaxJobsPerSource  int
	Workers           int
	GitHubToken       string
	UseHeadless       bool
	RespectRobots     bool
}

type RankingConfig struct {
	KeywordWeight    float64
	LocationWeight   float64
	SalaryWeight     float64
	ExperienceWeight float64
	CompanyWeight    float64
	FreshnessWeight  float64

	HighMatchThreshold   float64
	MediumMatchThreshold float64
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads configuration from the environment, consulting a .env file
// first when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     opt("APP_NAME", "jobscout"),
		Environment: opt("APP_ENV", "development"),
		HTTPPort:    opt("HTTP_PORT", "8080"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST", "localhost"),
		DBPort:     opt("DB_PORT", "5432"),
		DBName:     opt("DB_NAME", "jobscout"),
		DBUser:     opt("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE", "disable"),

		ConnectTimeout:        envDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(envInt("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(envInt("DB_POOL_MIN_CONNS", 2)),
		PoolMaxConnLifetime:   envDuration("DB_POOL_MAX_CONN_LIFETIME", 30*time.Minute),
		PoolMaxConnIdleTime:   envDuration("DB_POOL_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PoolHealthCheckPeriod: envDuration("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
	}

	cfg.Redis = RedisConfig{
		Addr:     opt("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	}

	cfg.Auth = AuthConfig{
		JWTSecret:     req("JWT_SECRET"),
		TokenTTL:      envDuration("JWT_TOKEN_TTL", 24*time.Hour),
		AdminUser:     opt("ADMIN_USER", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	cfg.Scraping = ScrapingConfig{
		DelayMin:          envDuration("SCRAPE_DELAY_MIN", 2*time.Second),
		DelayMax:          envDuration("SCRAPE_DELAY_MAX", 5*time.Second),
		RequestTimeout:    envDuration("SCRAPE_REQUEST_TIMEOUT", 30*time.Second),
		RateLimitRequests: envInt("SCRAPE_RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:   envDuration("SCRAPE_RATE_LIMIT_WINDOW", time.Minute),
		MaxJobsPerSource:  envInt("SCRAPE_MAX_JOBS_PER_SOURCE", 100),
		Workers:           envInt("SCRAPE_WORKERS", 4),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		UseHeadless:       envBool("SCRAPE_USE_HEADLESS", false),
		RespectRobots:     envBool("SCRAPE_RESPECT_ROBOTS", true),
	}

	cfg.Ranking = RankingConfig{
		KeywordWeight:    envFloat("RANK_WEIGHT_KEYWORDS", 0.35),
		LocationWeight:   envFloat("RANK_WEIGHT_LOCATION", 0.20),
		SalaryWeight:     envFloat("RANK_WEIGHT_SALARY", 0.15),
		ExperienceWeight: envFloat("RANK_WEIGHT_EXPERIENCE", 0.15),
		CompanyWeight:    envFloat("RANK_WEIGHT_COMPANY", 0.10),
		FreshnessWeight:  envFloat("RANK_WEIGHT_FRESHNESS", 0.05),

		HighMatchThreshold:   envFloat("RANK_HIGH_MATCH_THRESHOLD", 0.8),
		MediumMatchThreshold: envFloat("RANK_MEDIUM_MATCH_THRESHOLD", 0.6),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
