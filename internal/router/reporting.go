package router

import (
	"errors"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"pos/internal/repository"
	"pos/internal/session"
)

// listSales 销售列表（新单在前），附带只读对账扫描。
func (h *handlers) listSales(c *gin.Context) {
	sid, sess := h.loadSession(c)

	inconsistent, err := h.sales.InconsistentIDs()
	if err != nil {
		log.Printf("reconciliation scan: %v", err)
	} else if len(inconsistent) > 0 {
		sess.Flash(session.FlashWarning,
			"Warning: Some sales records have inconsistent totals. Please check the database.")
	}

	sales, err := h.sales.List()
	if err != nil {
		sess.Flash(session.FlashError, "Error loading sales")
		log.Printf("list sales: %v", err)
	}

	h.render(c, sid, sess, "sales.html", gin.H{"Sales": sales})
}

func (h *handlers) saleDetails(c *gin.Context) {
	sid, sess := h.loadSession(c)
	saleID := c.Param("sale_id")

	sale, err := h.sales.Get(saleID)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			sess.Flash(session.FlashError, "Sale not found")
		} else {
			sess.Flash(session.FlashError, "Error loading sale")
			log.Printf("get sale %s: %v", saleID, err)
		}
		h.redirect(c, sid, sess, "/sales")
		return
	}

	calculated, err := h.sales.CalculatedTotal(saleID)
	if err != nil {
		log.Printf("calculated total for sale %s: %v", saleID, err)
	} else if repository.Inconsistent(sale.Total, calculated) {
		sess.Flash(session.FlashWarning, fmt.Sprintf(
			"Warning: This sale has an inconsistent total. Recorded: %s, Calculated: %s",
			sale.Total, calculated))
	}

	items, err := h.sales.Items(saleID)
	if err != nil {
		sess.Flash(session.FlashError, "Error loading sale items")
		log.Printf("items for sale %s: %v", saleID, err)
	}

	hasDeleted := false
	for _, item := range items {
		if item.ProductID == nil {
			hasDeleted = true
			break
		}
	}
	if hasDeleted {
		sess.Flash(session.FlashInfo,
			"This sale contains products that have been deleted from the inventory.")
	}

	h.render(c, sid, sess, "sale_details.html", gin.H{
		"Sale":               sale,
		"Items":              items,
		"HasDeletedProducts": hasDeleted,
	})
}
