package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/config"
	"inventory-automation/pkg/forecast"
)

const defaultRecommendationConfidence = 0.5

type stockRecommendationUsecase struct {
	productRepo        domain.ProductRepository
	supplierRepo       domain.SupplierRepository
	velocityRepo       domain.SalesVelocityRepository
	recommendationRepo domain.StockRecommendationRepository
	velocityUsecase    domain.SalesVelocityUsecase
	cfg                *config.Config
}

func NewStockRecommendationUsecase(productRepo domain.ProductRepository, supplierRepo domain.SupplierRepository,
	velocityRepo domain.SalesVelocityRepository, recommendationRepo domain.StockRecommendationRepository,
	velocityUsecase domain.SalesVelocityUsecase, cfg *config.Config) domain.StockRecommendationUsecase {
	return &stockRecommendationUsecase{productRepo, supplierRepo, velocityRepo, recommendationRepo, velocityUsecase, cfg}
}

func (u *stockRecommendationUsecase) GenerateRecommendation(ctx context.Context, productID int64) (domain.StockRecommendation, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] GenerateRecommendation", "getProduct", err)
		return domain.StockRecommendation{}, err
	}

	velocity, err := u.velocityRepo.GetByProductID(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		velocity, err = u.velocityUsecase.UpdateVelocity(ctx, productID)
	}
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] GenerateRecommendation", "getVelocity", err)
		return domain.StockRecommendation{}, err
	}

	if velocity.Daily <= 0 {
		return defaultRecommendation(product), nil
	}

	leadTime, err := u.bestLeadTime(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] GenerateRecommendation", "getSuppliers", err)
		return domain.StockRecommendation{}, err
	}

	automation := u.cfg.Automation
	levels := forecast.StockLevels(velocity.Daily, velocity.VarianceDailyDemand, float64(leadTime), 0, forecast.Params{
		ServiceLevel:       automation.ServiceLevel,
		ReorderCost:        automation.ReorderCost,
		HoldingCostPercent: automation.HoldingCostPercent,
	})

	forecasted := velocity.Daily
	previous, err := u.recommendationRepo.GetByProductID(ctx, productID)
	switch {
	case err == nil:
		forecasted = forecast.ForecastDemand(velocity.Daily, previous.ForecastedVelocity, automation.SmoothingAlpha)
	case !errors.Is(err, domain.ErrNotFound):
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] GenerateRecommendation", "getPrevious", err)
		return domain.StockRecommendation{}, err
	}

	rec := domain.StockRecommendation{
		ProductID:          productID,
		MinStock:           levels.MinStock,
		MaxStock:           levels.MaxStock,
		SafetyStock:        levels.SafetyStock,
		ReorderPoint:       levels.ReorderPoint,
		ForecastedVelocity: forecasted,
		Confidence:         u.confidence(velocity.DataPoints),
		LeadTimeDays:       leadTime,
	}

	if _, err := u.recommendationRepo.Upsert(ctx, &rec); err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] GenerateRecommendation", "upsert", err)
		return domain.StockRecommendation{}, err
	}

	return rec, nil
}

// confidence scales the default confidence linearly with data sufficiency.
func (u *stockRecommendationUsecase) confidence(dataPoints int64) float64 {
	automation := u.cfg.Automation
	sufficiency := math.Min(1, float64(max(dataPoints, 0))/float64(automation.MinDataPoints))
	return automation.DefaultConfidence * sufficiency
}

// bestLeadTime is the shortest lead time among the product's suppliers, or
// the configured default when it has none.
func (u *stockRecommendationUsecase) bestLeadTime(ctx context.Context, productID int64) (int64, error) {
	links, err := u.supplierRepo.GetProductSuppliers(ctx, productID)
	if err != nil {
		return 0, err
	}

	fallback := u.cfg.Automation.DefaultLeadTimeDays
	if len(links) == 0 {
		return fallback, nil
	}

	best := links[0].EffectiveLeadTime(fallback)
	for _, link := range links[1:] {
		best = min(best, link.EffectiveLeadTime(fallback))
	}
	return best, nil
}

// defaultRecommendation is the conservative fallback for products that have
// not sold during the lookback window. It is not stored.
func defaultRecommendation(product domain.Product) domain.StockRecommendation {
	stock := float64(max(product.Stock, 0))
	minStock := max(10, int64(math.Ceil(stock*0.2)))
	safetyStock := int64(math.Ceil(stock * 0.25))
	reorderPoint := minStock + safetyStock
	maxStock := max(int64(math.Ceil(stock*1.5)), reorderPoint)

	return domain.StockRecommendation{
		ProductID:    product.ID,
		MinStock:     minStock,
		MaxStock:     maxStock,
		SafetyStock:  safetyStock,
		ReorderPoint: reorderPoint,
		Confidence:   defaultRecommendationConfidence,
		IsDefault:    true,
	}
}

func (u *stockRecommendationUsecase) GenerateAllRecommendations(ctx context.Context) (domain.RecommendationSweepResult, error) {
	var result domain.RecommendationSweepResult

	products, err := u.productRepo.GetList(ctx, domain.ProductFilter{ActiveOnly: true})
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] GenerateAllRecommendations", "getProducts", err)
		return result, err
	}

	for _, product := range products {
		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "[stockRecommendationUsecase] GenerateAllRecommendations", "interrupted", err)
			return result, err
		}
		_, existsErr := u.recommendationRepo.GetByProductID(ctx, product.ID)
		if existsErr != nil && !errors.Is(existsErr, domain.ErrNotFound) {
			slog.WarnContext(ctx, "[stockRecommendationUsecase] GenerateAllRecommendations", "productID", product.ID, "error", existsErr)
			result.Failed++
			continue
		}

		rec, err := u.GenerateRecommendation(ctx, product.ID)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "[stockRecommendationUsecase] GenerateAllRecommendations", "productID", product.ID, "error", err)
			result.Failed++
		case rec.IsDefault:
			result.Defaulted++
		case existsErr == nil:
			result.Updated++
		default:
			result.Generated++
		}
	}

	slog.InfoContext(ctx, "[stockRecommendationUsecase] GenerateAllRecommendations", "result", result)
	return result, nil
}

// ApplyRecommendation marks the stored recommendation as the basis for
// reorder decisions. It does not touch product stock.
func (u *stockRecommendationUsecase) ApplyRecommendation(ctx context.Context, productID int64) (domain.StockRecommendation, error) {
	if err := u.recommendationRepo.MarkApplied(ctx, productID, time.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] ApplyRecommendation", "markApplied", err)
		return domain.StockRecommendation{}, err
	}

	rec, err := u.recommendationRepo.GetByProductID(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] ApplyRecommendation", "getRecommendation", err)
		return domain.StockRecommendation{}, err
	}

	slog.InfoContext(ctx, "[stockRecommendationUsecase] ApplyRecommendation", "productID", productID, "reorderPoint", rec.ReorderPoint)
	return rec, nil
}

func (u *stockRecommendationUsecase) GetRecommendation(ctx context.Context, productID int64) (domain.StockRecommendation, error) {
	rec, err := u.recommendationRepo.GetByProductID(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] GetRecommendation", "getRecommendation", err)
		return domain.StockRecommendation{}, err
	}
	return rec, nil
}

func (u *stockRecommendationUsecase) ListRecommendations(ctx context.Context, filter domain.RecommendationFilter) ([]domain.StockRecommendation, error) {
	recs, err := u.recommendationRepo.GetList(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] ListRecommendations", "getList", err)
		return nil, err
	}
	return recs, nil
}

func (u *stockRecommendationUsecase) GetTopRecommendations(ctx context.Context, limit int64) ([]domain.StockRecommendation, error) {
	recs, err := u.recommendationRepo.GetTop(ctx, limit)
	if err != nil {
		slog.ErrorContext(ctx, "[stockRecommendationUsecase] GetTopRecommendations", "getTop", err)
		return nil, err
	}
	return recs, nil
}
