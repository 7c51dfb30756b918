package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pos/internal/model"
)

// Line 购物车中的一行：数量 + 加入时刻抓取的名称与单价。
// Name and Price are captured when the line is added and are never refreshed
// from the catalog, even if the product changes before checkout.
type Line struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart is a session-held value. Operations return a new Cart instead of
// mutating in place; callers read the session, apply an operation and write
// the result back.
type Cart struct {
	Lines []Line `json:"lines"`
}

// ErrQuantity 数量必须为正。
var ErrQuantity = errors.New("quantity must be greater than zero")

// StockError reports how many units are still available for the rejected
// request. More is true when the number is "in addition to the cart".
type StockError struct {
	Available int
	More      bool
}

func (e *StockError) Error() string {
	if e.More {
		return fmt.Sprintf("Not enough stock. Only %d more available.", e.Available)
	}
	return fmt.Sprintf("Not enough stock. Only %d available.", e.Available)
}

// Quantity returns how many units of the product are already in the cart.
func (c Cart) Quantity(productID uint) int {
	for _, ln := range c.Lines {
		if ln.ProductID == productID {
			return ln.Quantity
		}
	}
	return 0
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Total sums price*quantity over all lines using the captured prices.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ln := range c.Lines {
		total = total.Add(ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return total
}

// Add merges quantity into an existing line for the product or appends a new
// one, capturing the product's current name and price. The request is
// rejected when stock cannot cover what is already in the cart plus the new
// quantity; a cart never holds two lines for the same product.
func (c Cart) Add(p model.Product, quantity int) (Cart, error) {
	if quantity <= 0 {
		return c, ErrQuantity
	}
	inCart := c.Quantity(p.ID)
	if p.Stock < quantity+inCart {
		return c, &StockError{Available: p.Stock - inCart, More: true}
	}

	out := c.clone()
	for i := range out.Lines {
		if out.Lines[i].ProductID == p.ID {
			out.Lines[i].Quantity += quantity
			return out, nil
		}
	}
	out.Lines = append(out.Lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
	})
	return out, nil
}

// Remove drops the line for the product. Removing an absent line is a no-op,
// not an error.
func (c Cart) Remove(productID uint) Cart {
	out := Cart{Lines: make([]Line, 0, len(c.Lines))}
	for _, ln := range c.Lines {
		if ln.ProductID != productID {
			out.Lines = append(out.Lines, ln)
		}
	}
	return out
}

// Update sets the line's quantity. Updating to the current quantity is always
// allowed and skips the stock check entirely; otherwise stock must cover the
// full requested quantity. A missing line is a no-op.
func (c Cart) Update(p model.Product, quantity int) (Cart, error) {
	if quantity <= 0 {
		return c, ErrQuantity
	}
	if c.Quantity(p.ID) == quantity {
		return c, nil
	}
	if p.Stock < quantity {
		return c, &StockError{Available: p.Stock}
	}

	out := c.clone()
	for i := range out.Lines {
		if out.Lines[i].ProductID == p.ID {
			out.Lines[i].Quantity = quantity
			break
		}
	}
	return out, nil
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart { return Cart{} }

func (c Cart) clone() Cart {
	out := Cart{Lines: make([]Line, len(c.Lines))}
	copy(out.Lines, c.Lines)
	return out
}
