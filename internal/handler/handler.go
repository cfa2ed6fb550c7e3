// Package handler exposes the business operations over HTTP. Handlers bind
// JSON, call into the domain services, and translate domain errors into the
// response taxonomy; no business rules live here.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/sharmuse/ideal-collor-os/internal/backup"
	"github.com/sharmuse/ideal-collor-os/internal/domain/auth"
	"github.com/sharmuse/ideal-collor-os/internal/domain/catalog"
	"github.com/sharmuse/ideal-collor-os/internal/domain/client"
	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
	"github.com/sharmuse/ideal-collor-os/internal/domain/report"
	"github.com/sharmuse/ideal-collor-os/internal/domain/site"
)

// Handler bundles the dependencies of all HTTP endpoints.
type Handler struct {
	orders   *order.Service
	clients  client.Repository
	sites    site.Repository
	products catalog.ProductRepository
	services catalog.ServiceRepository
	auth     *auth.Service
	tokens   *auth.Tokens
	backups  *backup.Service
	reports  report.Repository
}

// Deps lists everything a Handler needs. All fields are required.
type Deps struct {
	Orders   *order.Service
	Clients  client.Repository
	Sites    site.Repository
	Products catalog.ProductRepository
	Services catalog.ServiceRepository
	Auth     *auth.Service
	Tokens   *auth.Tokens
	Backups  *backup.Service
	Reports  report.Repository
}

// New creates a Handler from its dependencies.
func New(d Deps) *Handler {
	return &Handler{
		orders:   d.Orders,
		clients:  d.Clients,
		sites:    d.Sites,
		products: d.Products,
		services: d.Services,
		auth:     d.Auth,
		tokens:   d.Tokens,
		backups:  d.Backups,
		reports:  d.Reports,
	}
}

// Routes registers every endpoint under the given group. Auth endpoints are
// public; everything else requires a valid session token.
func (h *Handler) Routes(r *gin.RouterGroup) {
	r.POST("/auth/signup", h.signUp)
	r.POST("/auth/signin", h.signIn)

	api := r.Group("", RequireAuth(h.tokens))

	api.GET("/clients", h.listClients)
	api.POST("/clients", h.createClient)
	api.GET("/clients/:id", h.getClient)
	api.PUT("/clients/:id", h.updateClient)
	api.DELETE("/clients/:id", h.deleteClient)

	api.GET("/sites", h.listSites)
	api.POST("/sites", h.createSite)
	api.GET("/sites/:id", h.getSite)
	api.PUT("/sites/:id", h.updateSite)
	api.DELETE("/sites/:id", h.deleteSite)

	api.GET("/products", h.listProducts)
	api.POST("/products", h.createProduct)
	api.GET("/products/:id", h.getProduct)
	api.PUT("/products/:id", h.updateProduct)
	api.DELETE("/products/:id", h.deleteProduct)

	api.GET("/services", h.listServices)
	api.POST("/services", h.createService)
	api.GET("/services/:id", h.getService)
	api.PUT("/services/:id", h.updateService)
	api.DELETE("/services/:id", h.deleteService)

	api.GET("/orders", h.listOrders)
	api.POST("/orders", h.createOrder)
	api.POST("/orders/totals", h.previewTotals)
	api.GET("/orders/:id", h.getOrder)
	api.PUT("/orders/:id", h.updateOrder)
	api.DELETE("/orders/:id", h.deleteOrder)
	api.POST("/orders/:id/sign", h.signOrder)
	api.GET("/orders/:id/print", h.printOrder)

	api.GET("/backup/:table", h.exportTable)

	api.GET("/reports/materials", h.reportMaterials)
	api.GET("/reports/status", h.reportStatus)
}

// abortError maps a domain error onto the HTTP taxonomy: 400 for rejected
// input, 401 for identity failures, 404 for missing records, 409 for
// conflicts with a signed or locked order, 502 for blob store failures, and
// 500 for everything else.
func (h *Handler) abortError(c *gin.Context, err error) {
	var (
		validation *order.ValidationError
		signed     *order.AlreadySignedError
		upload     *order.UploadError
	)
	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": validation.Error(),
			"field": validation.Field,
		})
	case errors.As(err, &signed):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     signed.Error(),
			"role":      string(signed.Role),
			"signed_at": signed.SignedAt,
		})
	case errors.As(err, &upload):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": upload.Error()})
	case errors.Is(err, order.ErrLocked):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, client.ErrNotFound),
		errors.Is(err, site.ErrNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrServiceNotFound),
		errors.Is(err, backup.ErrUnknownTable):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, backup.ErrUnknownFormat),
		errors.Is(err, auth.ErrEmailRequired),
		errors.Is(err, auth.ErrPasswordTooShort):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		zctx.From(c.Request.Context()).Error("internal error", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// badRequest rejects malformed JSON or query input before any domain call.
func (h *Handler) badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
