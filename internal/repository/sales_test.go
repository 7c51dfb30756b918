package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos/internal/cart"
	"pos/internal/model"
)

func linesFor(products ...model.Product) []cart.Line {
	lines := make([]cart.Line, len(products))
	for i, p := range products {
		lines[i] = cart.Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: i + 1}
	}
	return lines
}

func TestCheckout(t *testing.T) {
	db := newTestDB(t)
	repo := NewSalesRepository(db)

	coffee := mustCreateProduct(t, db, "Coffee", 3.50, 100)

	lines := []cart.Line{{
		ProductID: coffee.ID, Name: coffee.Name, Price: coffee.Price, Quantity: 2,
	}}
	sale, err := repo.Checkout(lines, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, sale.ID)
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(7.00)), "got total %s", sale.Total)

	items, err := repo.Items(sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Coffee", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.NewFromFloat(3.50)))
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, coffee.ID, *items[0].ProductID)

	var p model.Product
	require.NoError(t, db.First(&p, coffee.ID).Error)
	assert.Equal(t, 98, p.Stock)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestDB(t)
	repo := NewSalesRepository(db)

	_, err := repo.Checkout(nil, time.Now())
	assert.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, db.Model(&model.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckoutUsesCapturedValues(t *testing.T) {
	db := newTestDB(t)
	repo := NewSalesRepository(db)

	coffee := mustCreateProduct(t, db, "Coffee", 3.50, 100)

	// catalog changed after the line was captured; checkout must ignore it
	captured := []cart.Line{{
		ProductID: coffee.ID, Name: "Coffee", Price: decimal.NewFromFloat(3.00), Quantity: 3,
	}}
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", coffee.ID).
		Update("price", decimal.NewFromFloat(9.99)).Error)

	sale, err := repo.Checkout(captured, time.Now())
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(9.00)), "got total %s", sale.Total)

	items, err := repo.Items(sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.NewFromFloat(3.00)))
}

func TestCheckoutMultipleLines(t *testing.T) {
	db := newTestDB(t)
	repo := NewSalesRepository(db)

	coffee := mustCreateProduct(t, db, "Coffee", 3.50, 10)
	tea := mustCreateProduct(t, db, "Tea", 2.50, 10)

	sale, err := repo.Checkout(linesFor(coffee, tea), time.Now())
	require.NoError(t, err)
	// 1*3.50 + 2*2.50
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(8.50)), "got total %s", sale.Total)

	items, err := repo.Items(sale.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	var p model.Product
	require.NoError(t, db.First(&p, coffee.ID).Error)
	assert.Equal(t, 9, p.Stock)
	p = model.Product{}
	require.NoError(t, db.First(&p, tea.ID).Error)
	assert.Equal(t, 8, p.Stock)
}

func TestList(t *testing.T) {
	db := newTestDB(t)
	repo := NewSalesRepository(db)

	coffee := mustCreateProduct(t, db, "Coffee", 3.50, 100)

	older, err := repo.Checkout(linesFor(coffee), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	newer, err := repo.Checkout(linesFor(coffee), time.Now())
	require.NoError(t, err)

	sales, err := repo.List()
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, newer.ID, sales[0].ID, "newest first")
	assert.Equal(t, older.ID, sales[1].ID)
	assert.Equal(t, 1, sales[0].ItemCount)
}

func TestReconciliation(t *testing.T) {
	db := newTestDB(t)
	repo := NewSalesRepository(db)

	coffee := mustCreateProduct(t, db, "Coffee", 3.50, 100)

	good, err := repo.Checkout(linesFor(coffee), time.Now())
	require.NoError(t, err)
	bad, err := repo.Checkout(linesFor(coffee), time.Now())
	require.NoError(t, err)

	ids, err := repo.InconsistentIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	// corrupt one recorded total out from under the items
	require.NoError(t, db.Model(&model.Sale{}).Where("id = ?", bad.ID).
		Update("total", decimal.NewFromFloat(999)).Error)

	ids, err = repo.InconsistentIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{bad.ID}, ids)

	calculated, err := repo.CalculatedTotal(bad.ID)
	require.NoError(t, err)
	assert.True(t, calculated.Equal(decimal.NewFromFloat(3.50)), "got %s", calculated)

	badSale, err := repo.Get(bad.ID)
	require.NoError(t, err)
	assert.True(t, Inconsistent(badSale.Total, calculated))

	goodSale, err := repo.Get(good.ID)
	require.NoError(t, err)
	goodCalc, err := repo.CalculatedTotal(good.ID)
	require.NoError(t, err)
	assert.False(t, Inconsistent(goodSale.Total, goodCalc))
}

func TestGetMissingSale(t *testing.T) {
	db := newTestDB(t)
	repo := NewSalesRepository(db)

	_, err := repo.Get("nope")
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestItemsFallBackToSnapshotForDeletedProduct(t *testing.T) {
	db := newTestDB(t)
	sales := NewSalesRepository(db)
	products := NewProductsRepository(db)

	coffee := mustCreateProduct(t, db, "Coffee", 3.50, 100)
	sale, err := sales.Checkout(linesFor(coffee), time.Now())
	require.NoError(t, err)

	require.NoError(t, products.Delete(coffee.ID))

	items, err := sales.Items(sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].ProductID)
	assert.Equal(t, "Coffee", items[0].Name, "snapshot name shown after delete")
}

func TestItemsPreferLiveNameAfterRename(t *testing.T) {
	db := newTestDB(t)
	sales := NewSalesRepository(db)
	products := NewProductsRepository(db)

	coffee := mustCreateProduct(t, db, "Coffee", 3.50, 100)
	sale, err := sales.Checkout(linesFor(coffee), time.Now())
	require.NoError(t, err)

	coffee.Name = "Espresso"
	require.NoError(t, products.Update(&coffee))

	items, err := sales.Items(sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Espresso", items[0].Name)
}

func TestInconsistentEpsilon(t *testing.T) {
	cases := []struct {
		recorded, calculated float64
		want                 bool
	}{
		{7.00, 7.00, false},
		{7.00, 7.01, false}, // exactly at the epsilon is still consistent
		{7.00, 7.02, true},
		{7.00, 6.50, true},
	}
	for _, tc := range cases {
		got := Inconsistent(decimal.NewFromFloat(tc.recorded), decimal.NewFromFloat(tc.calculated))
		assert.Equal(t, tc.want, got, "recorded=%v calculated=%v", tc.recorded, tc.calculated)
	}
}
