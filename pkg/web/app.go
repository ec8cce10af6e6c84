package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewApp mounts every API route on a new fiber app. Metrics are served from
// gatherer when it is not nil.
func NewApp(h *APIHandlers, gatherer prometheus.Gatherer) *fiber.App {
	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			_, ok := h.workflows.HealthCheck(c.Context())

			return ok
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowdeck API")
	})

	app.Get("/health", h.HealthCheck)

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	w := app.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Put("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Post("/:id/executions", h.StartExecution)

	e := app.Group("/executions")
	e.Get("/", h.GetExecutions)
	e.Get("/running", h.GetRunningExecutions)
	e.Get("/stats", h.GetExecutionStats)
	e.Get("/:id", h.GetExecution)
	e.Post("/:id/stop", h.StopExecution)
	e.Delete("/:id", h.DeleteExecution)

	s := app.Group("/snapshots")
	s.Get("/", h.GetSnapshots)
	s.Get("/stats", h.GetSnapshotStats)
	s.Post("/cleanup", h.CleanupSnapshots)
	s.Get("/:id", h.GetSnapshot)
	s.Delete("/:id", h.DeleteSnapshot)
	s.Post("/:id/recompress", h.RecompressSnapshot)
	s.Get("/:id/timeline", h.GetSnapshotTimeline)
	s.Get("/:id/nodes/:nodeId", h.GetSnapshotNode)

	return app
}
