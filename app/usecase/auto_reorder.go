package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/config"

	"github.com/shopspring/decimal"
)

type autoReorderUsecase struct {
	productRepo        domain.ProductRepository
	supplierRepo       domain.SupplierRepository
	recommendationRepo domain.StockRecommendationRepository
	reorderRepo        domain.ReorderTaskRepository
	inventoryLogRepo   domain.InventoryLogRepository
	publisher          domain.BrokerPublisher
	cfg                *config.Config
}

func NewAutoReorderUsecase(productRepo domain.ProductRepository, supplierRepo domain.SupplierRepository,
	recommendationRepo domain.StockRecommendationRepository, reorderRepo domain.ReorderTaskRepository,
	inventoryLogRepo domain.InventoryLogRepository, publisher domain.BrokerPublisher, cfg *config.Config) domain.AutoReorderUsecase {
	return &autoReorderUsecase{productRepo, supplierRepo, recommendationRepo, reorderRepo, inventoryLogRepo, publisher, cfg}
}

func (u *autoReorderUsecase) ShouldReorder(ctx context.Context, productID int64) (bool, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] ShouldReorder", "getProduct", err)
		return false, err
	}

	rec, err := u.latestRecommendation(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] ShouldReorder", "getRecommendation", err)
		return false, err
	}

	open, err := u.reorderRepo.HasOpenTask(ctx, productID, nil)
	if err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] ShouldReorder", "hasOpenTask", err)
		return false, err
	}
	if open {
		return false, nil
	}

	return product.Stock <= u.reorderPoint(product.Stock, rec), nil
}

// TriggerReorder opens a PENDING task for the product. The open-task check
// and the insert run in one transaction with the product row locked.
func (u *autoReorderUsecase) TriggerReorder(ctx context.Context, productID int64, reason domain.ReorderReason) (domain.ReorderTask, error) {
	if reason == "" {
		reason = domain.ReorderReasonManual
	}
	switch reason {
	case domain.ReorderReasonLowStock, domain.ReorderReasonScheduled, domain.ReorderReasonManual:
	default:
		return domain.ReorderTask{}, fmt.Errorf("%w: unknown reorder reason %q", domain.ErrValidation, reason)
	}

	if _, err := u.productRepo.GetByID(ctx, productID); err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] TriggerReorder", "getProduct", err)
		return domain.ReorderTask{}, err
	}

	rec, err := u.latestRecommendation(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] TriggerReorder", "getRecommendation", err)
		return domain.ReorderTask{}, err
	}

	links, err := u.supplierRepo.GetProductSuppliers(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] TriggerReorder", "getSuppliers", err)
		return domain.ReorderTask{}, err
	}
	link := selectSupplier(links)

	var task domain.ReorderTask
	if err = u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		product, err := u.productRepo.LockForUpdate(ctx, productID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[autoReorderUsecase] TriggerReorder", "lockProduct", err)
			return err
		}

		open, err := u.reorderRepo.HasOpenTask(ctx, productID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[autoReorderUsecase] TriggerReorder", "hasOpenTask", err)
			return err
		}
		if open {
			return domain.ErrReorderInFlight
		}

		task = u.buildTask(product, rec, link, reason)
		if err = u.reorderRepo.Create(ctx, &task, tx); err != nil {
			slog.ErrorContext(ctx, "[autoReorderUsecase] TriggerReorder", "createTask", err)
			return err
		}
		return nil
	}); err != nil {
		return domain.ReorderTask{}, err
	}

	u.publishTask(ctx, task)
	slog.InfoContext(ctx, "[autoReorderUsecase] TriggerReorder", "taskID", task.ID, "productID", productID, "quantity", task.Quantity)
	return task, nil
}

func (u *autoReorderUsecase) buildTask(product domain.Product, rec *domain.StockRecommendation, link *domain.ProductSupplier, reason domain.ReorderReason) domain.ReorderTask {
	automation := u.cfg.Automation

	quantity := automation.FallbackOrderQuantity
	if rec != nil {
		quantity = int64(math.Ceil(math.Max(float64(rec.MaxStock-product.Stock), float64(rec.ReorderPoint)*0.5)))
	}
	quantity = max(quantity, 1)

	leadTime := automation.DefaultLeadTimeDays
	task := domain.ReorderTask{
		ProductID:    product.ID,
		Quantity:     quantity,
		Status:       domain.ReorderStatusPending,
		Reason:       reason,
		ReorderPoint: u.reorderPoint(product.Stock, rec),
	}
	if link != nil {
		supplierID := link.SupplierID
		task.SupplierID = &supplierID
		leadTime = link.EffectiveLeadTime(leadTime)
		task.Cost = decimal.NewNullDecimal(link.Cost.Mul(decimal.NewFromInt(quantity)))
	}
	task.ExpectedAt = time.Now().UTC().Add(time.Duration(leadTime) * day)

	return task
}

// selectSupplier prefers the preferred link, then the first one.
func selectSupplier(links []domain.ProductSupplier) *domain.ProductSupplier {
	for i := range links {
		if links[i].Preferred {
			return &links[i]
		}
	}
	if len(links) > 0 {
		return &links[0]
	}
	return nil
}

func (u *autoReorderUsecase) reorderPoint(stock int64, rec *domain.StockRecommendation) int64 {
	if rec != nil {
		return rec.ReorderPoint
	}
	return int64(math.Ceil(float64(stock) * u.cfg.Automation.ReorderPointStockRatio))
}

func (u *autoReorderUsecase) latestRecommendation(ctx context.Context, productID int64) (*domain.StockRecommendation, error) {
	rec, err := u.recommendationRepo.GetByProductID(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (u *autoReorderUsecase) CheckAllProductsForReorder(ctx context.Context) (domain.ReorderSweepResult, error) {
	var result domain.ReorderSweepResult

	products, err := u.productRepo.GetList(ctx, domain.ProductFilter{ActiveOnly: true, InStockOnly: true})
	if err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] CheckAllProductsForReorder", "getProducts", err)
		return result, err
	}

	for _, product := range products {
		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "[autoReorderUsecase] CheckAllProductsForReorder", "interrupted", err)
			return result, err
		}
		result.Checked++

		should, err := u.ShouldReorder(ctx, product.ID)
		if err != nil {
			slog.WarnContext(ctx, "[autoReorderUsecase] CheckAllProductsForReorder", "productID", product.ID, "error", err)
			result.Failed++
			continue
		}
		if !should {
			continue
		}

		_, err = u.TriggerReorder(ctx, product.ID, domain.ReorderReasonLowStock)
		switch {
		case errors.Is(err, domain.ErrReorderInFlight):
			slog.InfoContext(ctx, "[autoReorderUsecase] CheckAllProductsForReorder", "productID", product.ID, "skipped", err)
		case err != nil:
			slog.WarnContext(ctx, "[autoReorderUsecase] CheckAllProductsForReorder", "productID", product.ID, "error", err)
			result.Failed++
		default:
			result.Reordered++
		}
	}

	slog.InfoContext(ctx, "[autoReorderUsecase] CheckAllProductsForReorder", "result", result)
	return result, nil
}

// UpdateReorderStatus advances a task. Terminal tasks reject every
// transition, so a second receipt never adds stock twice.
func (u *autoReorderUsecase) UpdateReorderStatus(ctx context.Context, taskID int64, req domain.ReorderStatusUpdateRequest) (domain.ReorderTask, error) {
	if !req.Status.Valid() {
		return domain.ReorderTask{}, fmt.Errorf("%w: unknown reorder status %q", domain.ErrValidation, req.Status)
	}

	var (
		task     domain.ReorderTask
		stockMsg *domain.StockMessage
	)
	if err := u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		task, err = u.reorderRepo.LockForUpdate(ctx, taskID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[autoReorderUsecase] UpdateReorderStatus", "lockTask", err)
			return err
		}

		if task.Status.Terminal() {
			return fmt.Errorf("%w: task %d is %s", domain.ErrInvalidTransition, task.ID, task.Status)
		}

		now := time.Now().UTC()
		switch req.Status {
		case domain.ReorderStatusOrdered:
			if task.OrderedAt == nil {
				task.OrderedAt = &now
			}

		case domain.ReorderStatusReceived:
			task.ReceivedAt = &now

			product, err := u.productRepo.LockForUpdate(ctx, task.ProductID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[autoReorderUsecase] UpdateReorderStatus", "lockProduct", err)
				return err
			}

			newStock := product.Stock + task.Quantity
			if err = u.productRepo.UpdateStock(ctx, product.ID, newStock, tx); err != nil {
				slog.ErrorContext(ctx, "[autoReorderUsecase] UpdateReorderStatus", "updateStock", err)
				return err
			}

			reason := fmt.Sprintf("Reorder received - Task %d", task.ID)
			if err = u.inventoryLogRepo.Create(ctx, &domain.InventoryLog{
				ProductID:     product.ID,
				PreviousStock: product.Stock,
				NewStock:      newStock,
				Change:        task.Quantity,
				Reason:        reason,
			}, tx); err != nil {
				slog.ErrorContext(ctx, "[autoReorderUsecase] UpdateReorderStatus", "createInventoryLog", err)
				return err
			}

			stockMsg = &domain.StockMessage{
				ProductID:     product.ID,
				PreviousStock: product.Stock,
				NewStock:      newStock,
				InStock:       newStock > 0,
				Active:        product.Active,
				Reason:        reason,
			}
		}

		task.Status = req.Status
		if req.Notes != "" {
			task.Notes = req.Notes
		}

		if err = u.reorderRepo.Update(ctx, task, tx); err != nil {
			slog.ErrorContext(ctx, "[autoReorderUsecase] UpdateReorderStatus", "updateTask", err)
			return err
		}
		return nil
	}); err != nil {
		return domain.ReorderTask{}, err
	}

	u.publishTask(ctx, task)
	if stockMsg != nil {
		if err := u.publisher.PublishStockChanged(ctx, *stockMsg); err != nil {
			slog.WarnContext(ctx, "[autoReorderUsecase] UpdateReorderStatus", "publishStockChanged", err)
		}
	}

	return task, nil
}

func (u *autoReorderUsecase) publishTask(ctx context.Context, task domain.ReorderTask) {
	if err := u.publisher.PublishReorderTask(ctx, domain.ReorderTaskMessage{
		TaskID:     task.ID,
		ProductID:  task.ProductID,
		SupplierID: task.SupplierID,
		Quantity:   task.Quantity,
		Status:     task.Status,
		Reason:     task.Reason,
	}); err != nil {
		slog.WarnContext(ctx, "[autoReorderUsecase] publishTask", "publishReorderTask", err)
	}
}

func (u *autoReorderUsecase) GetReorderTasks(ctx context.Context, filter domain.ReorderTaskFilter) ([]domain.ReorderTask, error) {
	tasks, err := u.reorderRepo.GetList(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] GetReorderTasks", "getList", err)
		return nil, err
	}
	return tasks, nil
}

func (u *autoReorderUsecase) GetReorderStats(ctx context.Context) (domain.ReorderStats, error) {
	stats, err := u.reorderRepo.GetStats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[autoReorderUsecase] GetReorderStats", "getStats", err)
		return domain.ReorderStats{}, err
	}
	return stats, nil
}
