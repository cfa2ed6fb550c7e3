package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharmuse/ideal-collor-os/internal/domain/catalog"
	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
)

type productPayload struct {
	ID             string    `json:"id,omitempty"`
	Type           string    `json:"type"`
	Name           string    `json:"name" binding:"required"`
	ColorCode      string    `json:"color_code"`
	Unit           string    `json:"unit"`
	AvgConsumption string    `json:"avg_consumption"`
	Cost           string    `json:"cost_unit"`
	Price          string    `json:"price_unit"`
	StockQty       string    `json:"stock_qty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

func (p *productPayload) toDomain() *catalog.Product {
	return &catalog.Product{
		Type:           p.Type,
		Name:           p.Name,
		ColorCode:      p.ColorCode,
		Unit:           p.Unit,
		AvgConsumption: order.ParseAmount(p.AvgConsumption),
		Cost:           order.ParseAmount(p.Cost),
		Price:          order.ParseAmount(p.Price),
		StockQty:       order.ParseAmount(p.StockQty),
	}
}

func productToPayload(p *catalog.Product) productPayload {
	return productPayload{
		ID:             p.ID,
		Type:           p.Type,
		Name:           p.Name,
		ColorCode:      p.ColorCode,
		Unit:           p.Unit,
		AvgConsumption: p.AvgConsumption.String(),
		Cost:           p.Cost.String(),
		Price:          p.Price.String(),
		StockQty:       p.StockQty.String(),
		CreatedAt:      p.CreatedAt,
	}
}

type servicePayload struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	Unit          string    `json:"unit"`
	LaborPrice    string    `json:"labor_price_unit"`
	EstimatedTime string    `json:"estimated_time"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

func (p *servicePayload) toDomain() *catalog.Service {
	return &catalog.Service{
		Name:          p.Name,
		Description:   p.Description,
		Unit:          p.Unit,
		LaborPrice:    order.ParseAmount(p.LaborPrice),
		EstimatedTime: p.EstimatedTime,
	}
}

func serviceToPayload(s *catalog.Service) servicePayload {
	return servicePayload{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		Unit:          s.Unit,
		LaborPrice:    s.LaborPrice.String(),
		EstimatedTime: s.EstimatedTime,
		CreatedAt:     s.CreatedAt,
	}
}

func (h *Handler) listProducts(c *gin.Context) {
	list, err := h.products.List(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	out := make([]productPayload, len(list))
	for i := range list {
		out[i] = productToPayload(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getProduct(c *gin.Context) {
	p, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToPayload(p))
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	p := req.toDomain()
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, productToPayload(p))
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req productPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	p := req.toDomain()
	p.ID = c.Param("id")
	if err := h.products.Update(c.Request.Context(), p); err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToPayload(p))
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listServices(c *gin.Context) {
	list, err := h.services.List(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	out := make([]servicePayload, len(list))
	for i := range list {
		out[i] = serviceToPayload(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getService(c *gin.Context) {
	s, err := h.services.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, serviceToPayload(s))
}

func (h *Handler) createService(c *gin.Context) {
	var req servicePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	s := req.toDomain()
	if err := h.services.Create(c.Request.Context(), s); err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serviceToPayload(s))
}

func (h *Handler) updateService(c *gin.Context) {
	var req servicePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	s := req.toDomain()
	s.ID = c.Param("id")
	if err := h.services.Update(c.Request.Context(), s); err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, serviceToPayload(s))
}

func (h *Handler) deleteService(c *gin.Context) {
	if err := h.services.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
