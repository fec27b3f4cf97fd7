package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/config"
	"inventory-automation/pkg/forecast"

	"github.com/shopspring/decimal"
)

type deadStockUsecase struct {
	productRepo      domain.ProductRepository
	orderLineRepo    domain.OrderLineRepository
	alertRepo        domain.DeadStockAlertRepository
	inventoryLogRepo domain.InventoryLogRepository
	publisher        domain.BrokerPublisher
	cfg              *config.Config
}

func NewDeadStockUsecase(productRepo domain.ProductRepository, orderLineRepo domain.OrderLineRepository,
	alertRepo domain.DeadStockAlertRepository, inventoryLogRepo domain.InventoryLogRepository,
	publisher domain.BrokerPublisher, cfg *config.Config) domain.DeadStockUsecase {
	return &deadStockUsecase{productRepo, orderLineRepo, alertRepo, inventoryLogRepo, publisher, cfg}
}

// DetectDeadStock lists active products whose last sale is older than the
// dead stock threshold, or that never sold. Nothing is persisted.
func (u *deadStockUsecase) DetectDeadStock(ctx context.Context, productID *int64) ([]domain.DeadStockCandidate, error) {
	var products []domain.Product
	if productID != nil {
		product, err := u.productRepo.GetByID(ctx, *productID)
		if err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] DetectDeadStock", "getProduct", err)
			return nil, err
		}
		if product.Active {
			products = append(products, product)
		}
	} else {
		var err error
		products, err = u.productRepo.GetList(ctx, domain.ProductFilter{ActiveOnly: true})
		if err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] DetectDeadStock", "getProducts", err)
			return nil, err
		}
	}

	now := time.Now().UTC()
	cutoff := now.Add(-time.Duration(u.cfg.Automation.DeadStockDays) * day)

	candidates := make([]domain.DeadStockCandidate, 0)
	for _, product := range products {
		lastSale, err := u.orderLineRepo.GetLastSaleDate(ctx, product.ID)
		if err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] DetectDeadStock", "getLastSaleDate", err)
			return nil, err
		}
		if lastSale != nil && !lastSale.Before(cutoff) {
			continue
		}

		candidates = append(candidates, u.candidate(product, lastSale, now))
	}

	return candidates, nil
}

func (u *deadStockUsecase) candidate(product domain.Product, lastSale *time.Time, now time.Time) domain.DeadStockCandidate {
	since := product.CreatedAt
	if lastSale != nil {
		since = *lastSale
	}
	days := max(int64(now.Sub(since)/day), 0)

	unitCost, _ := product.Price.Mul(decimal.NewFromFloat(u.cfg.Automation.CostRatio)).Float64()
	value, rate := forecast.EstimateDeadStockValue(float64(product.Stock), unitCost, days)

	return domain.DeadStockCandidate{
		ProductID:        product.ID,
		Name:             product.Name,
		DaysWithoutSale:  days,
		LastSaleDate:     lastSale,
		CurrentStock:     product.Stock,
		EstimatedValue:   decimal.NewFromFloat(value).Round(2),
		DepreciationRate: rate,
	}
}

// CreateOrUpdateAlerts persists one alert per detected product. Alerts that
// already left ACTIVE are not reopened.
func (u *deadStockUsecase) CreateOrUpdateAlerts(ctx context.Context) (domain.AlertSweepResult, error) {
	var result domain.AlertSweepResult

	candidates, err := u.DetectDeadStock(ctx, nil)
	if err != nil {
		return result, err
	}
	result.TotalAlerts = int64(len(candidates))

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "[deadStockUsecase] CreateOrUpdateAlerts", "interrupted", err)
			return result, err
		}
		var created, skipped bool
		err := u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			alert, err := u.alertRepo.LockByProductID(ctx, candidate.ProductID, tx)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				created = true
				return u.alertRepo.Create(ctx, &domain.DeadStockAlert{
					ProductID:       candidate.ProductID,
					DaysWithoutSale: candidate.DaysWithoutSale,
					LastSaleDate:    candidate.LastSaleDate,
					CurrentStock:    candidate.CurrentStock,
					EstimatedValue:  candidate.EstimatedValue,
					Status:          domain.DeadStockStatusActive,
				}, tx)
			case err != nil:
				return err
			}

			if alert.Status != domain.DeadStockStatusActive {
				skipped = true
				return nil
			}

			alert.DaysWithoutSale = candidate.DaysWithoutSale
			alert.LastSaleDate = candidate.LastSaleDate
			alert.CurrentStock = candidate.CurrentStock
			alert.EstimatedValue = candidate.EstimatedValue
			return u.alertRepo.UpdateDetection(ctx, alert, tx)
		})

		switch {
		case err != nil:
			slog.WarnContext(ctx, "[deadStockUsecase] CreateOrUpdateAlerts", "productID", candidate.ProductID, "error", err)
			result.Failed++
		case skipped:
			result.Skipped++
		case created:
			result.Created++
		default:
			result.Updated++
		}
	}

	slog.InfoContext(ctx, "[deadStockUsecase] CreateOrUpdateAlerts", "result", result)
	return result, nil
}

// ApplyAction records a disposition on the alert and moves it to REVIEWED.
// DISCOUNT and CLEARANCE also reprice the product.
func (u *deadStockUsecase) ApplyAction(ctx context.Context, alertID int64, req domain.DeadStockActionRequest) (domain.DeadStockAlert, error) {
	if !req.Action.Valid() {
		return domain.DeadStockAlert{}, fmt.Errorf("%w: unknown action %q", domain.ErrValidation, req.Action)
	}

	var (
		alert    domain.DeadStockAlert
		stockMsg *domain.StockMessage
	)
	if err := u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		alert, err = u.alertRepo.LockForUpdate(ctx, alertID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] ApplyAction", "lockAlert", err)
			return err
		}
		if alert.Status == domain.DeadStockStatusDelisted {
			return fmt.Errorf("%w: alert %d is %s", domain.ErrInvalidTransition, alert.ID, alert.Status)
		}

		now := time.Now().UTC()
		action := req.Action
		alert.Action = &action
		alert.ActionAt = &now
		alert.Status = domain.DeadStockStatusReviewed
		alert.Notes = req.Notes
		if alert.Notes == "" {
			alert.Notes = fmt.Sprintf("Applied %s action", action)
		}

		if factor, ok := u.priceFactor(action); ok {
			product, err := u.productRepo.LockForUpdate(ctx, alert.ProductID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[deadStockUsecase] ApplyAction", "lockProduct", err)
				return err
			}

			price := product.Price.Mul(decimal.NewFromFloat(factor)).Round(2)
			if err = u.productRepo.UpdatePricing(ctx, product.ID, price, true, tx); err != nil {
				slog.ErrorContext(ctx, "[deadStockUsecase] ApplyAction", "updatePricing", err)
				return err
			}

			reason := fmt.Sprintf("Dead stock %s - price %s -> %s", action, product.Price.StringFixed(2), price.StringFixed(2))
			if err = u.inventoryLogRepo.Create(ctx, &domain.InventoryLog{
				ProductID:     product.ID,
				PreviousStock: product.Stock,
				NewStock:      product.Stock,
				Reason:        reason,
			}, tx); err != nil {
				slog.ErrorContext(ctx, "[deadStockUsecase] ApplyAction", "createInventoryLog", err)
				return err
			}

			stockMsg = &domain.StockMessage{
				ProductID:     product.ID,
				PreviousStock: product.Stock,
				NewStock:      product.Stock,
				InStock:       product.InStock,
				Active:        product.Active,
				Reason:        reason,
			}
		}

		if err = u.alertRepo.UpdateReview(ctx, alert, tx); err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] ApplyAction", "updateAlert", err)
			return err
		}
		return nil
	}); err != nil {
		return domain.DeadStockAlert{}, err
	}

	if stockMsg != nil {
		u.publishStock(ctx, *stockMsg)
	}

	slog.InfoContext(ctx, "[deadStockUsecase] ApplyAction", "alertID", alert.ID, "action", req.Action)
	return alert, nil
}

func (u *deadStockUsecase) priceFactor(action domain.DeadStockAction) (float64, bool) {
	switch action {
	case domain.DeadStockActionDiscount:
		return u.cfg.Automation.DiscountFactor, true
	case domain.DeadStockActionClearance:
		return u.cfg.Automation.ClearanceFactor, true
	}
	return 0, false
}

// DelistProduct deactivates the product behind the alert. DELISTED is final.
func (u *deadStockUsecase) DelistProduct(ctx context.Context, alertID int64) (domain.DeadStockAlert, error) {
	var (
		alert    domain.DeadStockAlert
		stockMsg domain.StockMessage
	)
	if err := u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		alert, err = u.alertRepo.LockForUpdate(ctx, alertID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] DelistProduct", "lockAlert", err)
			return err
		}
		if alert.Status == domain.DeadStockStatusDelisted {
			return fmt.Errorf("%w: alert %d is already %s", domain.ErrInvalidTransition, alert.ID, alert.Status)
		}

		product, err := u.productRepo.LockForUpdate(ctx, alert.ProductID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] DelistProduct", "lockProduct", err)
			return err
		}

		if err = u.productRepo.Deactivate(ctx, product.ID, tx); err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] DelistProduct", "deactivate", err)
			return err
		}

		reason := fmt.Sprintf("Delisted as dead stock - Alert %d", alert.ID)
		if err = u.inventoryLogRepo.Create(ctx, &domain.InventoryLog{
			ProductID:     product.ID,
			PreviousStock: product.Stock,
			NewStock:      product.Stock,
			Reason:        reason,
		}, tx); err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] DelistProduct", "createInventoryLog", err)
			return err
		}

		now := time.Now().UTC()
		alert.Status = domain.DeadStockStatusDelisted
		alert.ActionAt = &now
		if alert.Notes == "" {
			alert.Notes = "Product delisted"
		}
		if err = u.alertRepo.UpdateReview(ctx, alert, tx); err != nil {
			slog.ErrorContext(ctx, "[deadStockUsecase] DelistProduct", "updateAlert", err)
			return err
		}

		stockMsg = domain.StockMessage{
			ProductID:     product.ID,
			PreviousStock: product.Stock,
			NewStock:      product.Stock,
			Reason:        reason,
		}
		return nil
	}); err != nil {
		return domain.DeadStockAlert{}, err
	}

	u.publishStock(ctx, stockMsg)
	slog.InfoContext(ctx, "[deadStockUsecase] DelistProduct", "alertID", alert.ID, "productID", alert.ProductID)
	return alert, nil
}

func (u *deadStockUsecase) publishStock(ctx context.Context, msg domain.StockMessage) {
	if err := u.publisher.PublishStockChanged(ctx, msg); err != nil {
		slog.WarnContext(ctx, "[deadStockUsecase] publishStock", "publishStockChanged", err)
	}
}

func (u *deadStockUsecase) ArchiveReviewed(ctx context.Context) (int64, error) {
	n, err := u.alertRepo.ArchiveReviewed(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockUsecase] ArchiveReviewed", "archive", err)
		return 0, err
	}
	return n, nil
}

func (u *deadStockUsecase) GetClearanceCandidates(ctx context.Context) ([]domain.DeadStockAlert, error) {
	automation := u.cfg.Automation
	alerts, err := u.alertRepo.GetList(ctx, domain.DeadStockFilter{
		Status:             string(domain.DeadStockStatusActive),
		MinDaysWithoutSale: automation.ClearanceMinDays,
	})
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockUsecase] GetClearanceCandidates", "getList", err)
		return nil, err
	}

	candidates := make([]domain.DeadStockAlert, 0, len(alerts))
	for _, alert := range alerts {
		if alert.CurrentStock > automation.ClearanceMinStock {
			candidates = append(candidates, alert)
		}
	}
	return candidates, nil
}

func (u *deadStockUsecase) GetAlerts(ctx context.Context, filter domain.DeadStockFilter) ([]domain.DeadStockAlert, error) {
	alerts, err := u.alertRepo.GetList(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockUsecase] GetAlerts", "getList", err)
		return nil, err
	}
	return alerts, nil
}

func (u *deadStockUsecase) GetStats(ctx context.Context) (domain.DeadStockStats, error) {
	stats, err := u.alertRepo.GetStats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[deadStockUsecase] GetStats", "getStats", err)
		return domain.DeadStockStats{}, err
	}
	return stats, nil
}
