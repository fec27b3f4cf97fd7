package usecase

import (
	"context"

	"inventory-automation/app/domain"
)

// JobHandlers maps every job type to the sweep it runs.
func JobHandlers(velocity domain.SalesVelocityUsecase, recommendation domain.StockRecommendationUsecase,
	reorder domain.AutoReorderUsecase, deadStock domain.DeadStockUsecase) map[domain.JobType]domain.JobHandler {
	return map[domain.JobType]domain.JobHandler{
		domain.JobTypeSalesVelocity: func(ctx context.Context) (any, error) {
			return velocity.UpdateAllVelocities(ctx)
		},
		domain.JobTypeStockRecommendations: func(ctx context.Context) (any, error) {
			return recommendation.GenerateAllRecommendations(ctx)
		},
		domain.JobTypeAutoReorder: func(ctx context.Context) (any, error) {
			return reorder.CheckAllProductsForReorder(ctx)
		},
		domain.JobTypeDeadStockDetection: func(ctx context.Context) (any, error) {
			return deadStock.CreateOrUpdateAlerts(ctx)
		},
	}
}
