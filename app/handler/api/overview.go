package handler

import (
	"log/slog"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/app/handler/api/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const overviewTopLimit = 8

type Overview struct {
	Reorder             domain.ReorderStats          `json:"reorder"`
	DeadStock           domain.DeadStockStats        `json:"dead_stock"`
	VelocityLeaderboard []domain.SalesVelocity       `json:"velocity_leaderboard"`
	Recommendations     []domain.StockRecommendation `json:"recommendations"`
	Jobs                map[domain.JobStatus]int     `json:"jobs"`
	Timestamp           time.Time                    `json:"timestamp"`
}

type OverviewHandler struct {
	velocityUsecase       domain.SalesVelocityUsecase
	recommendationUsecase domain.StockRecommendationUsecase
	reorderUsecase        domain.AutoReorderUsecase
	deadStockUsecase      domain.DeadStockUsecase
	queue                 domain.JobQueue
}

func NewOverviewHandler(
	velocityUsecase domain.SalesVelocityUsecase,
	recommendationUsecase domain.StockRecommendationUsecase,
	reorderUsecase domain.AutoReorderUsecase,
	deadStockUsecase domain.DeadStockUsecase,
	queue domain.JobQueue,
) *OverviewHandler {
	return &OverviewHandler{
		velocityUsecase:       velocityUsecase,
		recommendationUsecase: recommendationUsecase,
		reorderUsecase:        reorderUsecase,
		deadStockUsecase:      deadStockUsecase,
		queue:                 queue,
	}
}

func (h *OverviewHandler) Get(c *fiber.Ctx) error {
	var overview Overview
	g, ctx := errgroup.WithContext(c.Context())

	g.Go(func() (err error) {
		overview.Reorder, err = h.reorderUsecase.GetReorderStats(ctx)
		return err
	})
	g.Go(func() (err error) {
		overview.DeadStock, err = h.deadStockUsecase.GetStats(ctx)
		return err
	})
	g.Go(func() (err error) {
		overview.VelocityLeaderboard, err = h.velocityUsecase.GetTopVelocities(ctx, overviewTopLimit)
		return err
	})
	g.Go(func() (err error) {
		overview.Recommendations, err = h.recommendationUsecase.GetTopRecommendations(ctx, overviewTopLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(c.Context(), "[overviewHandler] Get", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	overview.Jobs = make(map[domain.JobStatus]int)
	for _, job := range h.queue.GetAll() {
		overview.Jobs[job.Status]++
	}
	overview.Timestamp = time.Now()

	return c.Status(fiber.StatusOK).JSON(response.Success(overview))
}
