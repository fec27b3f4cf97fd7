package usecase_test

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/config"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

func testConfig() *config.Config {
	return &config.Config{Automation: config.DefaultAutomation()}
}

// memStore backs every fake repository with plain maps.
type memStore struct {
	mu sync.Mutex

	products   map[int64]domain.Product
	lines      map[int64][]domain.OrderLine
	suppliers  map[int64][]domain.ProductSupplier
	logs       []domain.InventoryLog
	velocities map[int64]domain.SalesVelocity
	recs       map[int64]domain.StockRecommendation
	tasks      map[int64]domain.ReorderTask
	alerts     map[int64]domain.DeadStockAlert
	nextID     int64

	linesErr       map[int64]error
	velocityUpsert int
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]domain.Product{},
		lines:      map[int64][]domain.OrderLine{},
		suppliers:  map[int64][]domain.ProductSupplier{},
		velocities: map[int64]domain.SalesVelocity{},
		recs:       map[int64]domain.StockRecommendation{},
		tasks:      map[int64]domain.ReorderTask{},
		alerts:     map[int64]domain.DeadStockAlert{},
		linesErr:   map[int64]error{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addProduct(p domain.Product) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Add(-365 * day)
	}
	p.InStock = p.Stock > 0
	s.products[p.ID] = p
}

func (s *memStore) addSale(productID, quantity int64, at time.Time) {
	s.lines[productID] = append(s.lines[productID], domain.OrderLine{
		ID: s.id(), ProductID: productID, Quantity: quantity, CreatedAt: at,
	})
}

func sortedValues[T any](m map[int64]T) []T {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

type productRepo struct{ s *memStore }

func (r productRepo) GetByID(_ context.Context, id int64) (domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (r productRepo) GetList(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Product
	for _, p := range sortedValues(r.s.products) {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r productRepo) LockForUpdate(ctx context.Context, id int64, _ *sql.Tx) (domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r productRepo) UpdateStock(_ context.Context, id, stock int64, _ *sql.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	p.InStock = stock > 0
	r.s.products[id] = p
	return nil
}

func (r productRepo) UpdatePricing(_ context.Context, id int64, price decimal.Decimal, onSale bool, _ *sql.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Price = price
	p.OnSale = onSale
	r.s.products[id] = p
	return nil
}

func (r productRepo) Deactivate(_ context.Context, id int64, _ *sql.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	p.InStock = false
	r.s.products[id] = p
	return nil
}

func (r productRepo) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	return fn(ctx, nil)
}

type orderLineRepo struct{ s *memStore }

func (r orderLineRepo) GetByProductIDSince(_ context.Context, productID int64, since time.Time) ([]domain.OrderLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.linesErr[productID]; err != nil {
		return nil, err
	}
	var out []domain.OrderLine
	for _, l := range r.s.lines[productID] {
		if !l.CreatedAt.Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r orderLineRepo) GetLastSaleDate(_ context.Context, productID int64) (*time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var last *time.Time
	for _, l := range r.s.lines[productID] {
		if last == nil || l.CreatedAt.After(*last) {
			at := l.CreatedAt
			last = &at
		}
	}
	return last, nil
}

type supplierRepo struct{ s *memStore }

func (r supplierRepo) GetProductSuppliers(_ context.Context, productID int64) ([]domain.ProductSupplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.suppliers[productID], nil
}

type inventoryLogRepo struct{ s *memStore }

func (r inventoryLogRepo) Create(_ context.Context, log *domain.InventoryLog, _ *sql.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = r.s.id()
	log.CreatedAt = time.Now().UTC()
	r.s.logs = append(r.s.logs, *log)
	return nil
}

type velocityRepo struct{ s *memStore }

func (r velocityRepo) Upsert(_ context.Context, v *domain.SalesVelocity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.velocityUpsert++
	r.s.velocities[v.ProductID] = *v
	return nil
}

func (r velocityRepo) GetByProductID(_ context.Context, productID int64) (domain.SalesVelocity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.velocities[productID]
	if !ok {
		return domain.SalesVelocity{}, domain.ErrNotFound
	}
	return v, nil
}

func (r velocityRepo) GetTop(_ context.Context, limit int64) ([]domain.SalesVelocity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sortedValues(r.s.velocities)
	slices.SortFunc(out, func(a, b domain.SalesVelocity) int { return cmp.Compare(b.Daily, a.Daily) })
	return out[:min(int64(len(out)), limit)], nil
}

type recommendationRepo struct{ s *memStore }

func (r recommendationRepo) Upsert(_ context.Context, rec *domain.StockRecommendation) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	prev, exists := r.s.recs[rec.ProductID]
	rec.UpdatedAt = now
	rec.CreatedAt = now
	if exists {
		rec.CreatedAt = prev.CreatedAt
		rec.AppliedAt = prev.AppliedAt
	}
	r.s.recs[rec.ProductID] = *rec
	return !exists, nil
}

func (r recommendationRepo) GetByProductID(_ context.Context, productID int64) (domain.StockRecommendation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.recs[productID]
	if !ok {
		return domain.StockRecommendation{}, domain.ErrNotFound
	}
	return rec, nil
}

func (r recommendationRepo) MarkApplied(_ context.Context, productID int64, appliedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.recs[productID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.AppliedAt = &appliedAt
	r.s.recs[productID] = rec
	return nil
}

func (r recommendationRepo) GetList(_ context.Context, filter domain.RecommendationFilter) ([]domain.StockRecommendation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.StockRecommendation
	for _, rec := range sortedValues(r.s.recs) {
		if filter.AppliedOnly && rec.AppliedAt == nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r recommendationRepo) GetTop(_ context.Context, limit int64) ([]domain.StockRecommendation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sortedValues(r.s.recs)
	return out[:min(int64(len(out)), limit)], nil
}

type reorderRepo struct{ s *memStore }

func (r reorderRepo) Create(_ context.Context, task *domain.ReorderTask, _ *sql.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task.ID = r.s.id()
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	r.s.tasks[task.ID] = *task
	return nil
}

func (r reorderRepo) GetByID(_ context.Context, id int64) (domain.ReorderTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return domain.ReorderTask{}, domain.ErrNotFound
	}
	return task, nil
}

func (r reorderRepo) LockForUpdate(ctx context.Context, id int64, _ *sql.Tx) (domain.ReorderTask, error) {
	return r.GetByID(ctx, id)
}

func (r reorderRepo) HasOpenTask(_ context.Context, productID int64, _ *sql.Tx) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, task := range r.s.tasks {
		if task.ProductID == productID && !task.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r reorderRepo) Update(_ context.Context, task domain.ReorderTask, _ *sql.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[task.ID]; !ok {
		return domain.ErrNotFound
	}
	task.UpdatedAt = time.Now().UTC()
	r.s.tasks[task.ID] = task
	return nil
}

func (r reorderRepo) GetList(_ context.Context, filter domain.ReorderTaskFilter) ([]domain.ReorderTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ReorderTask
	for _, task := range sortedValues(r.s.tasks) {
		if filter.Status != "" && string(task.Status) != filter.Status {
			continue
		}
		if filter.ProductID != 0 && task.ProductID != filter.ProductID {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (r reorderRepo) GetStats(_ context.Context) (domain.ReorderStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats domain.ReorderStats
	for _, task := range r.s.tasks {
		stats.Total++
		switch task.Status {
		case domain.ReorderStatusPending:
			stats.Pending++
			stats.TotalPendingCost = stats.TotalPendingCost.Add(task.Cost.Decimal)
		case domain.ReorderStatusOrdered:
			stats.Ordered++
			stats.TotalPendingCost = stats.TotalPendingCost.Add(task.Cost.Decimal)
		case domain.ReorderStatusReceived:
			stats.Received++
		case domain.ReorderStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

type alertRepo struct{ s *memStore }

func (r alertRepo) Create(_ context.Context, alert *domain.DeadStockAlert, _ *sql.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	alert.ID = r.s.id()
	alert.CreatedAt = time.Now().UTC()
	alert.UpdatedAt = alert.CreatedAt
	r.s.alerts[alert.ID] = *alert
	return nil
}

func (r alertRepo) GetByID(_ context.Context, id int64) (domain.DeadStockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	alert, ok := r.s.alerts[id]
	if !ok {
		return domain.DeadStockAlert{}, domain.ErrNotFound
	}
	return alert, nil
}

func (r alertRepo) LockForUpdate(ctx context.Context, id int64, _ *sql.Tx) (domain.DeadStockAlert, error) {
	return r.GetByID(ctx, id)
}

func (r alertRepo) LockByProductID(_ context.Context, productID int64, _ *sql.Tx) (domain.DeadStockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, alert := range r.s.alerts {
		if alert.ProductID == productID {
			return alert, nil
		}
	}
	return domain.DeadStockAlert{}, domain.ErrNotFound
}

func (r alertRepo) UpdateDetection(_ context.Context, alert domain.DeadStockAlert, _ *sql.Tx) error {
	return r.put(alert)
}

func (r alertRepo) UpdateReview(_ context.Context, alert domain.DeadStockAlert, _ *sql.Tx) error {
	return r.put(alert)
}

func (r alertRepo) put(alert domain.DeadStockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[alert.ID]; !ok {
		return domain.ErrNotFound
	}
	alert.UpdatedAt = time.Now().UTC()
	r.s.alerts[alert.ID] = alert
	return nil
}

func (r alertRepo) ArchiveReviewed(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, alert := range r.s.alerts {
		if alert.Status == domain.DeadStockStatusReviewed {
			alert.Status = domain.DeadStockStatusArchived
			r.s.alerts[id] = alert
			n++
		}
	}
	return n, nil
}

func (r alertRepo) GetList(_ context.Context, filter domain.DeadStockFilter) ([]domain.DeadStockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	minValue := decimal.NewFromFloat(filter.MinEstimatedValue)
	var out []domain.DeadStockAlert
	for _, alert := range sortedValues(r.s.alerts) {
		if filter.Status != "" && string(alert.Status) != filter.Status {
			continue
		}
		if alert.DaysWithoutSale < filter.MinDaysWithoutSale ||
			alert.CurrentStock < filter.MinCurrentStock ||
			alert.EstimatedValue.LessThan(minValue) {
			continue
		}
		out = append(out, alert)
	}
	return out, nil
}

func (r alertRepo) GetStats(_ context.Context) (domain.DeadStockStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats domain.DeadStockStats
	for _, alert := range r.s.alerts {
		stats.Total++
		stats.TotalEstimatedValue = stats.TotalEstimatedValue.Add(alert.EstimatedValue)
		switch alert.Status {
		case domain.DeadStockStatusActive:
			stats.Active++
		case domain.DeadStockStatusReviewed:
			stats.Reviewed++
		case domain.DeadStockStatusArchived:
			stats.Archived++
		case domain.DeadStockStatusDelisted:
			stats.Delisted++
		}
	}
	return stats, nil
}

type mockPublisher struct {
	mu       sync.Mutex
	stock    []domain.StockMessage
	tasks    []domain.ReorderTaskMessage
	jobs     []domain.JobMessage
	publishE error
}

func (m *mockPublisher) PublishStockChanged(_ context.Context, data domain.StockMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock = append(m.stock, data)
	return m.publishE
}

func (m *mockPublisher) PublishReorderTask(_ context.Context, data domain.ReorderTaskMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, data)
	return m.publishE
}

func (m *mockPublisher) PublishJobFinished(_ context.Context, data domain.JobMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, data)
	return m.publishE
}
