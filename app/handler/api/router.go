package handler

import (
	"inventory-automation/app/middleware"
	"inventory-automation/config"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Job            *JobHandler
	Velocity       *VelocityHandler
	Recommendation *RecommendationHandler
	Reorder        *ReorderHandler
	DeadStock      *DeadStockHandler
	Overview       *OverviewHandler
}

func SetupRouter(app *fiber.App, h Handlers, cfg *config.Config) {

	api := app.Group("/inventory-automation").Use(middleware.Auth(cfg.Jwt.SecretKey, cfg.Jwt.AdminRole))

	api.Get("/overview", h.Overview.Get)

	api.Post("/jobs", h.Job.Enqueue)
	api.Get("/jobs", h.Job.GetAll)
	api.Delete("/jobs/completed", h.Job.ClearCompleted)
	api.Get("/jobs/:id", h.Job.GetStatus)

	api.Get("/velocities/top", h.Velocity.GetTop)
	api.Get("/products/:product_id/velocity", h.Velocity.GetByProductID)
	api.Post("/products/:product_id/velocity", h.Velocity.Recalculate)

	api.Get("/recommendations", h.Recommendation.GetList)
	api.Get("/recommendations/top", h.Recommendation.GetTop)
	api.Get("/products/:product_id/recommendation", h.Recommendation.GetByProductID)
	api.Post("/products/:product_id/recommendation", h.Recommendation.Generate)
	api.Post("/products/:product_id/recommendation/apply", h.Recommendation.Apply)

	api.Get("/reorders", h.Reorder.GetList)
	api.Get("/reorders/stats", h.Reorder.GetStats)
	api.Patch("/reorders/:id/status", h.Reorder.UpdateStatus)
	api.Get("/products/:product_id/reorder", h.Reorder.Check)
	api.Post("/products/:product_id/reorders", h.Reorder.Trigger)

	api.Get("/dead-stock/alerts", h.DeadStock.GetAlerts)
	api.Get("/dead-stock/stats", h.DeadStock.GetStats)
	api.Get("/dead-stock/clearance", h.DeadStock.GetClearanceCandidates)
	api.Post("/dead-stock/detect", h.DeadStock.Detect)
	api.Post("/dead-stock/archive", h.DeadStock.Archive)
	api.Post("/dead-stock/alerts/:id/action", h.DeadStock.ApplyAction)
	api.Post("/dead-stock/alerts/:id/delist", h.DeadStock.Delist)

	internal := app.Group("/internal/inventory-automation").Use(middleware.AuthInternal(cfg))
	internal.Post("/jobs", h.Job.Enqueue)
	internal.Get("/jobs/:id", h.Job.GetStatus)
}
