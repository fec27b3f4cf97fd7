package usecase

import (
	"context"
	"log/slog"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/config"
	"inventory-automation/pkg/forecast"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

type salesVelocityUsecase struct {
	productRepo   domain.ProductRepository
	orderLineRepo domain.OrderLineRepository
	velocityRepo  domain.SalesVelocityRepository
	cfg           *config.Config
}

func NewSalesVelocityUsecase(productRepo domain.ProductRepository, orderLineRepo domain.OrderLineRepository,
	velocityRepo domain.SalesVelocityRepository, cfg *config.Config) domain.SalesVelocityUsecase {
	return &salesVelocityUsecase{productRepo, orderLineRepo, velocityRepo, cfg}
}

// UpdateVelocity recomputes the velocity of one product from its order lines
// and replaces the stored row in a single write.
func (u *salesVelocityUsecase) UpdateVelocity(ctx context.Context, productID int64) (domain.SalesVelocity, error) {
	if _, err := u.productRepo.GetByID(ctx, productID); err != nil {
		slog.ErrorContext(ctx, "[salesVelocityUsecase] UpdateVelocity", "getProduct", err)
		return domain.SalesVelocity{}, err
	}

	now := time.Now().UTC()
	lookback := u.cfg.Automation.LookbackDays
	since := now.Add(-time.Duration(lookback) * day)

	lines, err := u.orderLineRepo.GetByProductIDSince(ctx, productID, since)
	if err != nil {
		slog.ErrorContext(ctx, "[salesVelocityUsecase] UpdateVelocity", "getOrderLines", err)
		return domain.SalesVelocity{}, err
	}

	velocity := computeVelocity(productID, lines, since, lookback)
	velocity.UpdatedAt = now

	if err := u.velocityRepo.Upsert(ctx, &velocity); err != nil {
		slog.ErrorContext(ctx, "[salesVelocityUsecase] UpdateVelocity", "upsertVelocity", err)
		return domain.SalesVelocity{}, err
	}

	return velocity, nil
}

// computeVelocity buckets order lines into lookbackDays daily buckets
// starting at since. Days without sales count as zero demand.
func computeVelocity(productID int64, lines []domain.OrderLine, since time.Time, lookbackDays int64) domain.SalesVelocity {
	buckets := make([]float64, lookbackDays)
	var total float64
	for _, line := range lines {
		if line.Quantity <= 0 || line.CreatedAt.Before(since) {
			continue
		}
		idx := int64(line.CreatedAt.Sub(since) / day)
		if idx >= lookbackDays {
			idx = lookbackDays - 1
		}
		buckets[idx] += float64(line.Quantity)
		total += float64(line.Quantity)
	}

	var dataPoints int64
	for _, b := range buckets {
		if b > 0 {
			dataPoints++
		}
	}

	daily := total / float64(lookbackDays)
	return domain.SalesVelocity{
		ProductID:           productID,
		Daily:               daily,
		Weekly:              daily * 7,
		Monthly:             daily * 30,
		VarianceDailyDemand: forecast.DemandStdDev(buckets),
		DataPoints:          dataPoints,
	}
}

func (u *salesVelocityUsecase) UpdateAllVelocities(ctx context.Context) (domain.VelocitySweepResult, error) {
	var result domain.VelocitySweepResult

	products, err := u.productRepo.GetList(ctx, domain.ProductFilter{ActiveOnly: true})
	if err != nil {
		slog.ErrorContext(ctx, "[salesVelocityUsecase] UpdateAllVelocities", "getProducts", err)
		return result, err
	}

	for _, product := range products {
		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "[salesVelocityUsecase] UpdateAllVelocities", "interrupted", err)
			return result, err
		}
		result.Processed++
		if _, err := u.UpdateVelocity(ctx, product.ID); err != nil {
			slog.WarnContext(ctx, "[salesVelocityUsecase] UpdateAllVelocities", "productID", product.ID, "error", err)
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	slog.InfoContext(ctx, "[salesVelocityUsecase] UpdateAllVelocities", "result", result)
	return result, nil
}

func (u *salesVelocityUsecase) GetVelocity(ctx context.Context, productID int64) (domain.SalesVelocityDetail, error) {
	velocity, err := u.velocityRepo.GetByProductID(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[salesVelocityUsecase] GetVelocity", "getVelocity", err)
		return domain.SalesVelocityDetail{}, err
	}

	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[salesVelocityUsecase] GetVelocity", "getProduct", err)
		return domain.SalesVelocityDetail{}, err
	}

	return domain.SalesVelocityDetail{
		SalesVelocity:           velocity,
		ForecastedDailyDemand:   velocity.Daily,
		EstimatedMonthlyRevenue: product.Price.Mul(decimal.NewFromFloat(velocity.Monthly)).Round(2),
	}, nil
}

func (u *salesVelocityUsecase) GetTopVelocities(ctx context.Context, limit int64) ([]domain.SalesVelocity, error) {
	velocities, err := u.velocityRepo.GetTop(ctx, limit)
	if err != nil {
		slog.ErrorContext(ctx, "[salesVelocityUsecase] GetTopVelocities", "getTop", err)
		return nil, err
	}
	return velocities, nil
}
