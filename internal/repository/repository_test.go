package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pos/internal/model"
)

// newTestDB opens a named in-memory SQLite database. Naming the database per
// test keeps it alive across gorm's pooled connections without sharing state
// between tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SaleEvent{},
	))
	return db
}

func mustCreateProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) model.Product {
	t.Helper()
	p := model.Product{Name: name, Price: decimal.NewFromFloat(price), Stock: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}
