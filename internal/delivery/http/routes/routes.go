package routes

import (
	"jobscout/internal/delivery/http/handler"
	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/metrics"
	"jobscout/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every handler the HTTP surface exposes. The container
// builds it once and hands it to the fiber app.
type Registry struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Jobs   *handler.JobsHandler
	Rank   *handler.RankHandler
	Scrape *handler.ScrapeHandler
	WS     *ws.Handler

	AuthMw *middleware.AuthMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.Health.RegisterRoutes(app)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(
		metrics.Registry(),
		promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError},
	)))

	app.Get("/ws/matches", r.WS.HandleMatches)

	api := app.Group("/api")
	r.registerV1(api.Group("/v1"))
}

func (r *Registry) registerV1(v1 fiber.Router) {
	r.Auth.RegisterRoutes(v1.Group("/auth"))

	r.Jobs.RegisterRoutes(v1.Group("/jobs"))
	r.Rank.RegisterRoutes(v1.Group("/rank"))

	// Triggering and inspecting runs requires a token; browsing jobs does
	// not.
	protected := v1.Group("", r.AuthMw.Middleware())
	r.Scrape.RegisterRoutes(protected.Group("/scrape"))
}
