package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog row the automation reads and, through the
// documented operations only, mutates.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Stock     int64           `json:"stock"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
	InStock   bool            `json:"in_stock"`
	OnSale    bool            `json:"on_sale"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type OrderLine struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

type Supplier struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LeadTime int64  `json:"lead_time"`
}

// ProductSupplier links a product to a supplier. LeadTime 0 means the
// supplier's default applies.
type ProductSupplier struct {
	ProductID  int64           `json:"product_id"`
	SupplierID int64           `json:"supplier_id"`
	LeadTime   int64           `json:"lead_time"`
	Cost       decimal.Decimal `json:"cost"`
	Preferred  bool            `json:"preferred"`
	Supplier   Supplier        `json:"supplier"`
}

// EffectiveLeadTime resolves the link lead time, then the supplier default,
// then fallback.
func (ps ProductSupplier) EffectiveLeadTime(fallback int64) int64 {
	if ps.LeadTime > 0 {
		return ps.LeadTime
	}
	if ps.Supplier.LeadTime > 0 {
		return ps.Supplier.LeadTime
	}
	return fallback
}

// InventoryLog is the audit entry written alongside every product mutation.
type InventoryLog struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	PreviousStock int64     `json:"previous_stock"`
	NewStock      int64     `json:"new_stock"`
	Change        int64     `json:"change"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProductFilter struct {
	ActiveOnly  bool
	InStockOnly bool
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (Product, error)
	GetList(ctx context.Context, filter ProductFilter) ([]Product, error)
	LockForUpdate(ctx context.Context, id int64, tx *sql.Tx) (Product, error)
	UpdateStock(ctx context.Context, id, stock int64, tx *sql.Tx) error
	UpdatePricing(ctx context.Context, id int64, price decimal.Decimal, onSale bool, tx *sql.Tx) error
	Deactivate(ctx context.Context, id int64, tx *sql.Tx) error

	WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error
}

type OrderLineRepository interface {
	GetByProductIDSince(ctx context.Context, productID int64, since time.Time) ([]OrderLine, error)
	GetLastSaleDate(ctx context.Context, productID int64) (*time.Time, error)
}

type SupplierRepository interface {
	GetProductSuppliers(ctx context.Context, productID int64) ([]ProductSupplier, error)
}

type InventoryLogRepository interface {
	Create(ctx context.Context, log *InventoryLog, tx *sql.Tx) error
}
