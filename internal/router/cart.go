package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pos/internal/cart"
	"pos/internal/queue"
	"pos/internal/repository"
	"pos/internal/session"
)

// pos 收银页：仅展示有库存的商品 + 当前购物车。
func (h *handlers) pos(c *gin.Context) {
	sid, sess := h.loadSession(c)

	products, err := h.products.InStock()
	if err != nil {
		sess.Flash(session.FlashError, "Error loading products")
		log.Printf("list in-stock products: %v", err)
	}

	h.render(c, sid, sess, "pos.html", gin.H{
		"Products":  products,
		"Cart":      sess.Cart.Lines,
		"CartTotal": sess.Cart.Total(),
	})
}

func (h *handlers) addToCart(c *gin.Context) {
	sid, sess := h.loadSession(c)

	productID, ok := formUint(c, "product_id")
	if !ok {
		sess.Flash(session.FlashError, "Product not found")
		h.redirect(c, sid, sess, "/pos")
		return
	}
	quantity := formInt(c, "quantity", 1)
	if quantity <= 0 {
		sess.Flash(session.FlashError, "Quantity must be greater than zero")
		h.redirect(c, sid, sess, "/pos")
		return
	}

	product, err := h.products.Get(productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			sess.Flash(session.FlashError, "Product not found")
		} else {
			sess.Flash(session.FlashError, "Error loading product")
			log.Printf("get product %d: %v", productID, err)
		}
		h.redirect(c, sid, sess, "/pos")
		return
	}

	merged := sess.Cart.Quantity(productID) > 0
	updated, err := sess.Cart.Add(product, quantity)
	if err != nil {
		sess.Flash(session.FlashError, flashForCartError(err))
		h.redirect(c, sid, sess, "/pos")
		return
	}
	sess.Cart = updated

	if merged {
		sess.Flash(session.FlashSuccess, fmt.Sprintf("Added %d more %s to cart", quantity, product.Name))
	} else {
		sess.Flash(session.FlashSuccess, fmt.Sprintf("Added %s to cart", product.Name))
	}
	h.redirect(c, sid, sess, "/pos")
}

func (h *handlers) removeFromCart(c *gin.Context) {
	sid, sess := h.loadSession(c)

	productID, ok := formUint(c, "product_id")
	if ok {
		sess.Cart = sess.Cart.Remove(productID)
	}
	sess.Flash(session.FlashSuccess, "Item removed from cart")
	h.redirect(c, sid, sess, "/pos")
}

func (h *handlers) updateCartItem(c *gin.Context) {
	sid, sess := h.loadSession(c)

	productID, ok := formUint(c, "product_id")
	if !ok {
		sess.Flash(session.FlashError, "Product not found")
		h.redirect(c, sid, sess, "/pos")
		return
	}
	quantity := formInt(c, "quantity", 0)
	if quantity <= 0 {
		sess.Flash(session.FlashError, "Quantity must be greater than zero")
		h.redirect(c, sid, sess, "/pos")
		return
	}

	product, err := h.products.Get(productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			sess.Flash(session.FlashError, "Product not found")
		} else {
			sess.Flash(session.FlashError, "Error loading product")
			log.Printf("get product %d: %v", productID, err)
		}
		h.redirect(c, sid, sess, "/pos")
		return
	}

	// Updating to the current quantity is a silent no-op, stock check skipped.
	if sess.Cart.Quantity(productID) == quantity {
		h.redirect(c, sid, sess, "/pos")
		return
	}

	updated, err := sess.Cart.Update(product, quantity)
	if err != nil {
		sess.Flash(session.FlashError, flashForCartError(err))
		h.redirect(c, sid, sess, "/pos")
		return
	}
	sess.Cart = updated

	sess.Flash(session.FlashSuccess, "Cart updated")
	h.redirect(c, sid, sess, "/pos")
}

func (h *handlers) clearCart(c *gin.Context) {
	sid, sess := h.loadSession(c)
	sess.Cart = sess.Cart.Clear()
	sess.Flash(session.FlashSuccess, "Cart cleared")
	h.redirect(c, sid, sess, "/pos")
}

// checkout 把购物车原子地转成销售单：任何一步失败整体回滚，购物车保留。
func (h *handlers) checkout(c *gin.Context) {
	sid, sess := h.loadSession(c)

	if sess.Cart.IsEmpty() {
		sess.Flash(session.FlashError, "Your cart is empty")
		h.redirect(c, sid, sess, "/pos")
		return
	}

	sale, err := h.sales.Checkout(sess.Cart.Lines, time.Now())
	if err != nil {
		sess.Flash(session.FlashError, "Error during checkout")
		log.Printf("checkout: %v", err)
		h.redirect(c, sid, sess, "/pos")
		return
	}

	itemCount := len(sess.Cart.Lines)
	sess.Cart = sess.Cart.Clear()
	sess.Flash(session.FlashSuccess, "Checkout completed successfully!")

	if h.producer != nil {
		// Best-effort: the sale is committed, a publish failure is only logged.
		msg := queue.SaleMessage{
			SaleID:    sale.ID,
			Date:      sale.Date,
			Total:     sale.Total,
			ItemCount: itemCount,
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.producer.Publish(ctx, msg); err != nil {
			log.Printf("publish sale event %s: %v", sale.ID, err)
		}
	}

	h.redirect(c, sid, sess, "/pos")
}

func flashForCartError(err error) string {
	var stockErr *cart.StockError
	switch {
	case errors.Is(err, cart.ErrQuantity):
		return "Quantity must be greater than zero"
	case errors.As(err, &stockErr):
		return stockErr.Error()
	default:
		return "Could not update cart"
	}
}

func formUint(c *gin.Context, key string) (uint, bool) {
	v, err := strconv.ParseUint(c.PostForm(key), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

func formInt(c *gin.Context, key string, fallback int) int {
	raw := c.PostForm(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
