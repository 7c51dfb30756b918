package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pos/internal/cart"
	"pos/internal/model"
)

// ErrSaleNotFound is returned when a sale id does not exist.
var ErrSaleNotFound = errors.New("sale not found")

// ErrEmptyCart is returned when checkout is attempted with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// totalEpsilon 对账阈值：记录总额与逐行重算差异超过 0.01 视为不一致。
var totalEpsilon = decimal.NewFromFloat(0.01)

type SalesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// SaleSummary is one row of the sales listing.
type SaleSummary struct {
	ID        string          `json:"id"`
	Date      time.Time       `json:"date"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// SaleItemView is one line of the sale detail view. Name is the live product
// name when the product still exists, otherwise the snapshot captured at
// checkout. ProductID is nil when the product has been deleted.
type SaleItemView struct {
	ID        uint            `json:"id"`
	ProductID *uint           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Checkout materializes the cart into a sale in one transaction: a
// collision-checked random sale id, one sale_items row per line with the
// captured name and price, and a stock decrement per referenced product.
// Stock is decremented by the captured quantity without re-reading current
// stock, so concurrent checkouts are not serialized against each other.
// Any failure rolls the whole unit back and the caller keeps the cart.
func (r *SalesRepository) Checkout(lines []cart.Line, now time.Time) (model.Sale, error) {
	if len(lines) == 0 {
		return model.Sale{}, ErrEmptyCart
	}

	var sale model.Sale
	err := r.db.Transaction(func(tx *gorm.DB) error {
		saleID, err := newSaleID(tx)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, ln := range lines {
			total = total.Add(ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		}

		sale = model.Sale{ID: saleID, Date: now, Total: total}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		for _, ln := range lines {
			productID := ln.ProductID
			item := model.SaleItem{
				SaleID:      saleID,
				ProductID:   &productID,
				ProductName: ln.Name,
				Quantity:    ln.Quantity,
				Price:       ln.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Product{}).
				Where("id = ?", ln.ProductID).
				Update("stock", gorm.Expr("stock - ?", ln.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.Sale{}, err
	}
	return sale, nil
}

// newSaleID generates a random sale id, regenerating on the (vanishingly
// rare) collision with an existing sale.
func newSaleID(tx *gorm.DB) (string, error) {
	for {
		id := uuid.New().String()
		var count int64
		if err := tx.Model(&model.Sale{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return id, nil
		}
	}
}

// List returns all sales newest first with per-sale item counts.
func (r *SalesRepository) List() ([]SaleSummary, error) {
	var out []SaleSummary
	err := r.db.Model(&model.Sale{}).
		Select("sales.id, sales.date, sales.total, COUNT(sale_items.id) AS item_count").
		Joins("LEFT JOIN sale_items ON sale_items.sale_id = sales.id").
		Group("sales.id").
		Order("sales.date DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InconsistentIDs scans for sales whose recorded total deviates from the
// recomputed item sum by more than the epsilon. Read-only reconciliation,
// decoupled from the write path.
func (r *SalesRepository) InconsistentIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&model.Sale{}).
		Joins("LEFT JOIN sale_items ON sale_items.sale_id = sales.id").
		Group("sales.id").
		Having("ABS(sales.total - SUM(sale_items.price * sale_items.quantity)) > ?", 0.01).
		Pluck("sales.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Get fetches one sale by id.
func (r *SalesRepository) Get(saleID string) (model.Sale, error) {
	var sale model.Sale
	if err := r.db.First(&sale, "id = ?", saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Sale{}, ErrSaleNotFound
		}
		return model.Sale{}, err
	}
	return sale, nil
}

// Items returns the sale's lines joined to current products, preferring the
// live name and falling back to the snapshot for deleted products.
func (r *SalesRepository) Items(saleID string) ([]SaleItemView, error) {
	var items []SaleItemView
	err := r.db.Model(&model.SaleItem{}).
		Select(`sale_items.id, sale_items.product_id, sale_items.quantity, sale_items.price,
			CASE WHEN products.name IS NULL THEN sale_items.product_name ELSE products.name END AS name`).
		Joins("LEFT JOIN products ON products.id = sale_items.product_id").
		Where("sale_items.sale_id = ?", saleID).
		Order("sale_items.id").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CalculatedTotal recomputes the item sum for one sale. A sale without items
// calculates to zero, matching the listing scan.
func (r *SalesRepository) CalculatedTotal(saleID string) (decimal.Decimal, error) {
	var sum sql.NullFloat64
	err := r.db.Model(&model.SaleItem{}).
		Select("SUM(price * quantity)").
		Where("sale_id = ?", saleID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(sum.Float64), nil
}

// Inconsistent reports whether recorded and calculated totals deviate by more
// than the reconciliation epsilon.
func Inconsistent(recorded, calculated decimal.Decimal) bool {
	return recorded.Sub(calculated).Abs().GreaterThan(totalEpsilon)
}
