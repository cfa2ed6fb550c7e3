package handler

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/sharmuse/ideal-collor-os/internal/domain/catalog"
	"github.com/sharmuse/ideal-collor-os/internal/domain/client"
	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
)

const dateLayout = "2006-01-02"

type serviceLineInput struct {
	ServiceID string `json:"service_id"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type materialLineInput struct {
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
	Unit      string `json:"unit"`
	Packaging string `json:"packaging"`
	UnitPrice string `json:"unit_price"`
}

type orderInput struct {
	ClientID        string              `json:"client_id"`
	SiteID          string              `json:"site_id"`
	Status          string              `json:"status"`
	PaymentType     string              `json:"payment_type"`
	OpeningDate     string              `json:"opening_date"`
	DueDate         string              `json:"due_date"`
	TechnicalNotes  string              `json:"technical_notes"`
	CommercialNotes string              `json:"commercial_notes"`
	DiscountPercent string              `json:"discount_percent"`
	ServiceLines    []serviceLineInput  `json:"service_lines"`
	MaterialLines   []materialLineInput `json:"material_lines"`
}

func (in *orderInput) toDomain() (order.Input, error) {
	var opening time.Time
	if in.OpeningDate != "" {
		var err error
		opening, err = time.Parse(dateLayout, in.OpeningDate)
		if err != nil {
			return order.Input{}, &order.ValidationError{Field: "opening_date", Reason: "expected YYYY-MM-DD"}
		}
	}
	var due *time.Time
	if in.DueDate != "" {
		d, err := time.Parse(dateLayout, in.DueDate)
		if err != nil {
			return order.Input{}, &order.ValidationError{Field: "due_date", Reason: "expected YYYY-MM-DD"}
		}
		due = &d
	}

	services := make([]order.ServiceLine, len(in.ServiceLines))
	for i, l := range in.ServiceLines {
		services[i] = order.ServiceLine{
			ServiceID: l.ServiceID,
			Quantity:  order.ParseAmount(l.Quantity),
			UnitPrice: order.ParseAmount(l.UnitPrice),
		}
	}
	materials := make([]order.MaterialLine, len(in.MaterialLines))
	for i, l := range in.MaterialLines {
		materials[i] = order.MaterialLine{
			ProductID: l.ProductID,
			Quantity:  order.ParseAmount(l.Quantity),
			Unit:      l.Unit,
			Packaging: l.Packaging,
			UnitPrice: order.ParseAmount(l.UnitPrice),
		}
	}

	return order.Input{
		ClientID:        in.ClientID,
		SiteID:          in.SiteID,
		Status:          order.Status(in.Status),
		PaymentType:     order.PaymentType(in.PaymentType),
		OpeningDate:     opening,
		DueDate:         due,
		TechnicalNotes:  in.TechnicalNotes,
		CommercialNotes: in.CommercialNotes,
		DiscountPercent: order.ParseAmount(in.DiscountPercent),
		ServiceLines:    services,
		MaterialLines:   materials,
	}, nil
}

type serviceLinePayload struct {
	ServiceID string          `json:"service_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type materialLinePayload struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Packaging string          `json:"packaging"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type totalsPayload struct {
	Services        decimal.Decimal `json:"total_services"`
	Materials       decimal.Decimal `json:"total_materials"`
	General         decimal.Decimal `json:"total_general"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	Final           decimal.Decimal `json:"total_final"`
}

type signaturePayload struct {
	Signed       bool       `json:"signed"`
	SignedAt     *time.Time `json:"signed_at,omitempty"`
	SignatureURL string     `json:"signature_url,omitempty"`
	AcceptText   string     `json:"accept_text,omitempty"`
}

type orderPayload struct {
	ID              string                `json:"id"`
	Number          string                `json:"order_number"`
	ClientID        string                `json:"client_id"`
	SiteID          string                `json:"site_id,omitempty"`
	Status          string                `json:"status"`
	PaymentType     string                `json:"payment_type"`
	OpeningDate     string                `json:"opening_date"`
	DueDate         string                `json:"due_date,omitempty"`
	TechnicalNotes  string                `json:"technical_notes"`
	CommercialNotes string                `json:"commercial_notes"`
	DiscountPercent decimal.Decimal       `json:"discount_percent"`
	Totals          totalsPayload         `json:"totals"`
	ServiceLines    []serviceLinePayload  `json:"service_lines"`
	MaterialLines   []materialLinePayload `json:"material_lines"`
	ClientSignature signaturePayload      `json:"client_signature"`
	SellerSignature signaturePayload      `json:"seller_signature"`
	CreatedAt       time.Time             `json:"created_at"`
}

func totalsToPayload(t order.Totals) totalsPayload {
	return totalsPayload{
		Services:        t.Services,
		Materials:       t.Materials,
		General:         t.General,
		DiscountPercent: t.DiscountPercent,
		DiscountValue:   t.DiscountValue,
		Final:           t.Final,
	}
}

func signatureToPayload(a order.SignedArtifact) signaturePayload {
	return signaturePayload{
		Signed:       a.Signed,
		SignedAt:     a.SignedAt,
		SignatureURL: a.SignatureURL,
		AcceptText:   a.AcceptText,
	}
}

func orderToPayload(o *order.Order) orderPayload {
	p := orderPayload{
		ID:              o.ID,
		Number:          o.Number,
		ClientID:        o.ClientID,
		SiteID:          o.SiteID,
		Status:          string(o.Status),
		PaymentType:     string(o.PaymentType),
		OpeningDate:     o.OpeningDate.Format(dateLayout),
		TechnicalNotes:  o.TechnicalNotes,
		CommercialNotes: o.CommercialNotes,
		DiscountPercent: o.DiscountPercent,
		Totals:          totalsToPayload(o.Totals),
		ServiceLines:    make([]serviceLinePayload, len(o.ServiceLines)),
		MaterialLines:   make([]materialLinePayload, len(o.MaterialLines)),
		ClientSignature: signatureToPayload(o.Signatures.Client),
		SellerSignature: signatureToPayload(o.Signatures.Seller),
		CreatedAt:       o.CreatedAt,
	}
	if o.DueDate != nil {
		p.DueDate = o.DueDate.Format(dateLayout)
	}
	for i, l := range o.ServiceLines {
		p.ServiceLines[i] = serviceLinePayload{
			ServiceID: l.ServiceID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		}
	}
	for i, l := range o.MaterialLines {
		p.MaterialLines[i] = materialLinePayload{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Unit:      l.Unit,
			Packaging: l.Packaging,
			UnitPrice: l.UnitPrice,
			TotalCost: l.TotalCost,
		}
	}
	return p
}

type orderSummaryPayload struct {
	ID          string          `json:"id"`
	Number      string          `json:"order_number"`
	ClientName  string          `json:"client_name"`
	Status      string          `json:"status"`
	PaymentType string          `json:"payment_type"`
	OpeningDate string          `json:"opening_date"`
	DueDate     string          `json:"due_date,omitempty"`
	TotalFinal  decimal.Decimal `json:"total_final"`
}

func (h *Handler) listOrders(c *gin.Context) {
	list, err := h.orders.List(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	out := make([]orderSummaryPayload, len(list))
	for i, s := range list {
		out[i] = orderSummaryPayload{
			ID:          s.ID,
			Number:      s.Number,
			ClientName:  s.ClientName,
			Status:      string(s.Status),
			PaymentType: string(s.PaymentType),
			OpeningDate: s.OpeningDate.Format(dateLayout),
			TotalFinal:  s.TotalFinal,
		}
		if s.DueDate != nil {
			out[i].DueDate = s.DueDate.Format(dateLayout)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createOrder(c *gin.Context) {
	var req orderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	in, err := req.toDomain()
	if err != nil {
		h.abortError(c, err)
		return
	}
	o, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderToPayload(o))
}

func (h *Handler) getOrder(c *gin.Context) {
	o, err := h.orders.LoadForEdit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToPayload(o))
}

func (h *Handler) updateOrder(c *gin.Context) {
	var req orderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	in, err := req.toDomain()
	if err != nil {
		h.abortError(c, err)
		return
	}
	o, err := h.orders.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToPayload(o))
}

func (h *Handler) deleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// previewTotals recomputes the total tree for a live order form without
// touching storage. Draft lines are ignored exactly as they would be on save.
func (h *Handler) previewTotals(c *gin.Context) {
	var req orderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	in, err := req.toDomain()
	if err != nil {
		h.abortError(c, err)
		return
	}
	payment := in.PaymentType
	if payment == "" {
		payment = order.PaymentInstallment
	}
	totals := order.ComputeTotals(in.ServiceLines, in.MaterialLines, payment, in.DiscountPercent)
	c.JSON(http.StatusOK, totalsToPayload(totals))
}

type signInput struct {
	Role           string `json:"role" binding:"required"`
	SignerName     string `json:"signer_name"`
	SignerDocument string `json:"signer_document"`
	TermsAccepted  bool   `json:"terms_accepted"`
	// Signature is the captured image, base64 or data-URL encoded PNG.
	Signature string `json:"signature"`
}

// decodeSignature accepts both a raw base64 string and the data-URL form a
// canvas export produces.
func decodeSignature(s string) []byte {
	if i := strings.Index(s, ","); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return data
}

func (h *Handler) signOrder(c *gin.Context) {
	var req signInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	artifact, err := h.orders.Sign(c.Request.Context(), c.Param("id"), order.SignRequest{
		Role:           order.SignerRole(req.Role),
		SignerName:     req.SignerName,
		SignerDocument: req.SignerDocument,
		TermsAccepted:  req.TermsAccepted,
		Image:          decodeSignature(req.Signature),
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, signatureToPayload(*artifact))
}

type printLinePayload struct {
	Name      string          `json:"name"`
	Detail    string          `json:"detail,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit,omitempty"`
	Packaging string          `json:"packaging,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type printPayload struct {
	Order     orderPayload       `json:"order"`
	Client    *clientPayload     `json:"client,omitempty"`
	Site      *sitePayload       `json:"site,omitempty"`
	Services  []printLinePayload `json:"services"`
	Materials []printLinePayload `json:"materials"`
	Terms     string             `json:"terms"`
}

// printOrder assembles the full document a client renders for printing: the
// order with resolved client, site, and catalog names for every line.
func (h *Handler) printOrder(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := h.orders.LoadForEdit(ctx, c.Param("id"))
	if err != nil {
		h.abortError(c, err)
		return
	}

	out := printPayload{
		Order:     orderToPayload(o),
		Services:  make([]printLinePayload, 0, len(o.ServiceLines)),
		Materials: make([]printLinePayload, 0, len(o.MaterialLines)),
		Terms:     order.TermsText,
	}

	if cl, err := h.clients.GetByID(ctx, o.ClientID); err == nil {
		p := clientToPayload(cl)
		out.Client = &p
	} else if !errors.Is(err, client.ErrNotFound) {
		h.abortError(c, err)
		return
	}
	if o.SiteID != "" {
		s, err := h.sites.GetByID(ctx, o.SiteID)
		if err != nil {
			h.abortError(c, err)
			return
		}
		p := siteToPayload(s)
		out.Site = &p
	}

	services, err := h.services.List(ctx)
	if err != nil {
		h.abortError(c, err)
		return
	}
	serviceByID := make(map[string]*catalog.Service, len(services))
	for i := range services {
		serviceByID[services[i].ID] = &services[i]
	}
	for _, l := range o.ServiceLines {
		line := printLinePayload{
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.LineTotal,
		}
		if s, ok := serviceByID[l.ServiceID]; ok {
			line.Name = s.Name
			line.Detail = s.Description
			line.Unit = s.Unit
		}
		out.Services = append(out.Services, line)
	}

	products, err := h.products.List(ctx)
	if err != nil {
		h.abortError(c, err)
		return
	}
	productByID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}
	for _, l := range o.MaterialLines {
		line := printLinePayload{
			Quantity:  l.Quantity,
			Unit:      l.Unit,
			Packaging: l.Packaging,
			UnitPrice: l.UnitPrice,
			Total:     l.TotalCost,
		}
		if p, ok := productByID[l.ProductID]; ok {
			line.Name = p.Name
			line.Detail = p.ColorCode
		}
		out.Materials = append(out.Materials, line)
	}

	c.JSON(http.StatusOK, out)
}
