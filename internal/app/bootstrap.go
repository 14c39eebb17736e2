package app

import (
	"fmt"
	"strings"

	"jobscout/internal/delivery/http/handler"
	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/delivery/http/routes"
	"jobscout/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New assembles the fiber app around an already-built container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	f.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
	f.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())

	reg := &routes.Registry{
		Health: handler.NewHealthHandler(c.DB, c.Cache),
		Auth:   handler.NewAuthHandler(c.AuthUC),
		Jobs:   handler.NewJobsHandler(c.JobsUC),
		Rank:   handler.NewRankHandler(c.RankUC),
		Scrape: handler.NewScrapeHandler(c.ScrapeUC),
		WS:     ws.NewHandler(c.Hub, c.Logger),
		AuthMw: middleware.NewAuthMiddleware(c.JWT),
	}
	reg.Register(f)

	return &App{Fiber: f, Container: c}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
