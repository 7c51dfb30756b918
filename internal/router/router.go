package router

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pos/internal/config"
	"pos/internal/middleware"
	"pos/internal/queue"
	"pos/internal/repository"
	"pos/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// handlers bundles the dependencies the route closures share.
type handlers struct {
	products *repository.ProductsRepository
	sales    *repository.SalesRepository
	store    session.Store
	producer *queue.Producer // nil when the event pipeline is disabled
}

// Setup 注册全部 HTTP 路由。
func Setup(r *gin.Engine, db *gorm.DB, store session.Store, producer *queue.Producer, cfg config.AppConfig) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	r.Use(middleware.Session(cfg.SessionCookie, int(cfg.SessionTTL.Seconds())))

	h := &handlers{
		products: repository.NewProductsRepository(db),
		sales:    repository.NewSalesRepository(db),
		store:    store,
		producer: producer,
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	r.GET("/", h.index)
	// POS: in-stock catalog + cart
	r.GET("/pos", h.pos)
	r.POST("/add_to_cart", h.addToCart)
	r.POST("/remove_from_cart", h.removeFromCart)
	r.POST("/update_cart_item", h.updateCartItem)
	r.GET("/clear_cart", h.clearCart)
	r.POST("/checkout", h.checkout)
	// Catalog management
	r.GET("/products", h.listProducts)
	r.GET("/add_product", h.addProductForm)
	r.POST("/add_product", h.addProduct)
	r.GET("/edit_product/:id", h.editProductForm)
	r.POST("/edit_product/:id", h.editProduct)
	r.POST("/delete_product/:id", h.deleteProduct)
	// Reporting
	r.GET("/sales", h.listSales)
	r.GET("/sale_details/:sale_id", h.saleDetails)
}

// loadSession reads the request's session; a store failure degrades to an
// empty session rather than failing the request.
func (h *handlers) loadSession(c *gin.Context) (string, session.Session) {
	sid := middleware.SessionID(c)
	sess, err := h.store.Load(c.Request.Context(), sid)
	if err != nil {
		log.Printf("session load: %v", err)
		return sid, session.Session{}
	}
	return sid, sess
}

// redirect persists the session and sends the browser on.
func (h *handlers) redirect(c *gin.Context, sid string, sess session.Session, target string) {
	if err := h.store.Save(c.Request.Context(), sid, sess); err != nil {
		log.Printf("session save: %v", err)
	}
	c.Redirect(http.StatusSeeOther, target)
}

// render pops queued flash messages into the template data and persists the
// session before writing the page.
func (h *handlers) render(c *gin.Context, sid string, sess session.Session, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = sess.PopFlashes()
	if err := h.store.Save(c.Request.Context(), sid, sess); err != nil {
		log.Printf("session save: %v", err)
	}
	c.HTML(http.StatusOK, name, data)
}

func (h *handlers) index(c *gin.Context) {
	sid, sess := h.loadSession(c)
	h.render(c, sid, sess, "index.html", gin.H{})
}
