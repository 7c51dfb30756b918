package router

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pos/internal/model"
	"pos/internal/repository"
	"pos/internal/session"
)

const maxProductNameLen = 100

func (h *handlers) listProducts(c *gin.Context) {
	sid, sess := h.loadSession(c)

	products, err := h.products.All()
	if err != nil {
		sess.Flash(session.FlashError, "Error loading products")
		log.Printf("list products: %v", err)
	}

	h.render(c, sid, sess, "products.html", gin.H{"Products": products})
}

func (h *handlers) addProductForm(c *gin.Context) {
	sid, sess := h.loadSession(c)
	h.render(c, sid, sess, "product_form.html", gin.H{
		"Title":  "Add Product",
		"Action": "/add_product",
	})
}

func (h *handlers) addProduct(c *gin.Context) {
	sid, sess := h.loadSession(c)

	product, fieldErrors := parseProductForm(c)
	if len(fieldErrors) > 0 {
		for _, msg := range fieldErrors {
			sess.Flash(session.FlashError, msg)
		}
		h.redirect(c, sid, sess, "/add_product")
		return
	}

	if err := h.products.Create(&product); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			sess.Flash(session.FlashError, "This product already exists.")
		} else {
			sess.Flash(session.FlashError, "Error adding product")
			log.Printf("create product: %v", err)
		}
		h.redirect(c, sid, sess, "/add_product")
		return
	}

	sess.Flash(session.FlashSuccess, "Product added successfully")
	h.redirect(c, sid, sess, "/products")
}

func (h *handlers) editProductForm(c *gin.Context) {
	sid, sess := h.loadSession(c)

	id, ok := paramUint(c, "id")
	if !ok {
		sess.Flash(session.FlashError, "Product not found")
		h.redirect(c, sid, sess, "/products")
		return
	}
	product, err := h.products.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			sess.Flash(session.FlashError, "Product not found")
		} else {
			sess.Flash(session.FlashError, "Error loading product")
			log.Printf("get product %d: %v", id, err)
		}
		h.redirect(c, sid, sess, "/products")
		return
	}

	h.render(c, sid, sess, "product_form.html", gin.H{
		"Title":   "Edit Product",
		"Action":  fmt.Sprintf("/edit_product/%d", product.ID),
		"Product": product,
	})
}

// editProduct 更新商品并把新名称同步进历史 sale_items（未删除商品的历史
// 展示始终跟随当前名称）。
func (h *handlers) editProduct(c *gin.Context) {
	sid, sess := h.loadSession(c)

	id, ok := paramUint(c, "id")
	if !ok {
		sess.Flash(session.FlashError, "Product not found")
		h.redirect(c, sid, sess, "/products")
		return
	}

	product, fieldErrors := parseProductForm(c)
	if len(fieldErrors) > 0 {
		for _, msg := range fieldErrors {
			sess.Flash(session.FlashError, msg)
		}
		h.redirect(c, sid, sess, fmt.Sprintf("/edit_product/%d", id))
		return
	}
	product.ID = id

	if err := h.products.Update(&product); err != nil {
		switch {
		case errors.Is(err, repository.ErrNameTaken):
			sess.Flash(session.FlashError, "Another product with this name already exists.")
			h.redirect(c, sid, sess, fmt.Sprintf("/edit_product/%d", id))
		case errors.Is(err, repository.ErrProductNotFound):
			sess.Flash(session.FlashError, "Product not found")
			h.redirect(c, sid, sess, "/products")
		default:
			sess.Flash(session.FlashError, "Error updating product")
			log.Printf("update product %d: %v", id, err)
			h.redirect(c, sid, sess, "/products")
		}
		return
	}

	sess.Flash(session.FlashSuccess, "Product updated successfully")
	h.redirect(c, sid, sess, "/products")
}

func (h *handlers) deleteProduct(c *gin.Context) {
	sid, sess := h.loadSession(c)

	id, ok := paramUint(c, "id")
	if !ok {
		sess.Flash(session.FlashError, "Product not found")
		h.redirect(c, sid, sess, "/products")
		return
	}

	if err := h.products.Delete(id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			sess.Flash(session.FlashError, "Product not found")
		} else {
			sess.Flash(session.FlashError, "Error deleting product")
			log.Printf("delete product %d: %v", id, err)
		}
		h.redirect(c, sid, sess, "/products")
		return
	}

	sess.Flash(session.FlashSuccess, "Product deleted successfully")
	h.redirect(c, sid, sess, "/products")
}

// parseProductForm validates the add/edit form, collecting one message per
// failing field. Length is checked on the raw name; only the emptiness check
// trims whitespace.
func parseProductForm(c *gin.Context) (model.Product, []string) {
	name := c.PostForm("name")
	priceStr := c.PostForm("price")
	stockStr := c.PostForm("stock")

	var fieldErrors []string

	if strings.TrimSpace(name) == "" {
		fieldErrors = append(fieldErrors, "Product name is required")
	} else if len(name) > maxProductNameLen {
		fieldErrors = append(fieldErrors, "Product name is too long (max 100 characters)")
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		fieldErrors = append(fieldErrors, "Price must be a valid number")
	} else if price.LessThanOrEqual(decimal.Zero) {
		fieldErrors = append(fieldErrors, "Price must be greater than zero")
	}

	stock, err := strconv.Atoi(stockStr)
	if err != nil {
		fieldErrors = append(fieldErrors, "Stock must be a valid number")
	} else if stock < 0 {
		fieldErrors = append(fieldErrors, "Stock cannot be negative")
	}

	if len(fieldErrors) > 0 {
		return model.Product{}, fieldErrors
	}
	return model.Product{Name: name, Price: price, Stock: stock}, nil
}

func paramUint(c *gin.Context, key string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(key), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
