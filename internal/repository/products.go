package repository

import (
	"errors"

	"gorm.io/gorm"

	"pos/internal/model"
)

// ErrProductNotFound is returned when a product id does not exist.
var ErrProductNotFound = errors.New("product not found")

// ErrNameTaken is returned when another product already uses the name
// (case-sensitive exact match).
var ErrNameTaken = errors.New("product name already in use")

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{db: db}
}

// All returns every product ordered by name.
func (r *ProductsRepository) All() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// InStock returns products with stock > 0 ordered by name, for the
// cart-building view.
func (r *ProductsRepository) InStock() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Where("stock > 0").Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches one product by id.
func (r *ProductsRepository) Get(id uint) (model.Product, error) {
	var p model.Product
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, err
	}
	return p, nil
}

// Create inserts a new product after checking the name is unused.
func (r *ProductsRepository) Create(p *model.Product) error {
	var count int64
	if err := r.db.Model(&model.Product{}).Where("name = ?", p.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrNameTaken
	}
	return r.db.Create(p).Error
}

// Update rewrites the product row and propagates the (possibly new) name into
// existing sale_items rows, so historical views keep showing the current name
// for products that still exist.
func (r *ProductsRepository) Update(p *model.Product) error {
	var count int64
	if err := r.db.Model(&model.Product{}).
		Where("name = ? AND id <> ?", p.Name, p.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrNameTaken
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).Where("id = ?", p.ID).
			Updates(map[string]any{
				"name":  p.Name,
				"price": p.Price,
				"stock": p.Stock,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return tx.Model(&model.SaleItem{}).
			Where("product_id = ?", p.ID).
			Update("product_name", p.Name).Error
	})
}

// Delete removes the product inside one transaction: first the current name
// is copied into any sale_items rows still missing a snapshot, then the
// product references are nulled and the row deleted. The explicit nulling
// keeps the SET NULL semantics independent of SQLite's foreign_keys pragma.
func (r *ProductsRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var p model.Product
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if err := tx.Model(&model.SaleItem{}).
			Where("product_id = ? AND (product_name IS NULL OR product_name = '')", id).
			Update("product_name", p.Name).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.SaleItem{}).
			Where("product_id = ?", id).
			Update("product_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, id).Error
	})
}
