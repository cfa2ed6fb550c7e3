package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
	"github.com/sharmuse/ideal-collor-os/internal/domain/site"
)

type sitePayload struct {
	ID              string    `json:"id,omitempty"`
	ClientID        string    `json:"client_id" binding:"required"`
	ZipCode         string    `json:"zip_code"`
	Street          string    `json:"street"`
	Number          string    `json:"number"`
	Complement      string    `json:"complement"`
	District        string    `json:"district"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	ReferencePoint  string    `json:"reference_point"`
	MainServiceType string    `json:"main_service_type"`
	AreaM2          string    `json:"area_m2"`
	TechnicalNotes  string    `json:"technical_notes"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

func (p *sitePayload) toDomain() *site.Site {
	return &site.Site{
		ClientID:        p.ClientID,
		ZipCode:         p.ZipCode,
		Street:          p.Street,
		Number:          p.Number,
		Complement:      p.Complement,
		District:        p.District,
		City:            p.City,
		State:           p.State,
		ReferencePoint:  p.ReferencePoint,
		MainServiceType: p.MainServiceType,
		AreaM2:          order.ParseAmount(p.AreaM2),
		TechnicalNotes:  p.TechnicalNotes,
	}
}

func siteToPayload(s *site.Site) sitePayload {
	return sitePayload{
		ID:              s.ID,
		ClientID:        s.ClientID,
		ZipCode:         s.ZipCode,
		Street:          s.Street,
		Number:          s.Number,
		Complement:      s.Complement,
		District:        s.District,
		City:            s.City,
		State:           s.State,
		ReferencePoint:  s.ReferencePoint,
		MainServiceType: s.MainServiceType,
		AreaM2:          s.AreaM2.String(),
		TechnicalNotes:  s.TechnicalNotes,
		CreatedAt:       s.CreatedAt,
	}
}

func (h *Handler) listSites(c *gin.Context) {
	list, err := h.sites.List(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	out := make([]sitePayload, len(list))
	for i := range list {
		out[i] = siteToPayload(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getSite(c *gin.Context) {
	s, err := h.sites.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, siteToPayload(s))
}

func (h *Handler) createSite(c *gin.Context) {
	var req sitePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	s := req.toDomain()
	if err := h.sites.Create(c.Request.Context(), s); err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, siteToPayload(s))
}

func (h *Handler) updateSite(c *gin.Context) {
	var req sitePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	s := req.toDomain()
	s.ID = c.Param("id")
	if err := h.sites.Update(c.Request.Context(), s); err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, siteToPayload(s))
}

func (h *Handler) deleteSite(c *gin.Context) {
	if err := h.sites.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
