package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharmuse/ideal-collor-os/internal/domain/client"
)

type clientPayload struct {
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name" binding:"required"`
	Document       string    `json:"document"`
	Phone          string    `json:"phone"`
	Whatsapp       string    `json:"whatsapp"`
	Email          string    `json:"email"`
	ZipCode        string    `json:"zip_code"`
	Street         string    `json:"street"`
	Number         string    `json:"number"`
	Complement     string    `json:"complement"`
	District       string    `json:"district"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	ReferencePoint string    `json:"reference_point"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

func (p *clientPayload) toDomain() *client.Client {
	return &client.Client{
		Name:           p.Name,
		Document:       p.Document,
		Phone:          p.Phone,
		Whatsapp:       p.Whatsapp,
		Email:          p.Email,
		ZipCode:        p.ZipCode,
		Street:         p.Street,
		Number:         p.Number,
		Complement:     p.Complement,
		District:       p.District,
		City:           p.City,
		State:          p.State,
		ReferencePoint: p.ReferencePoint,
	}
}

func clientToPayload(c *client.Client) clientPayload {
	return clientPayload{
		ID:             c.ID,
		Name:           c.Name,
		Document:       c.Document,
		Phone:          c.Phone,
		Whatsapp:       c.Whatsapp,
		Email:          c.Email,
		ZipCode:        c.ZipCode,
		Street:         c.Street,
		Number:         c.Number,
		Complement:     c.Complement,
		District:       c.District,
		City:           c.City,
		State:          c.State,
		ReferencePoint: c.ReferencePoint,
		CreatedAt:      c.CreatedAt,
	}
}

func (h *Handler) listClients(c *gin.Context) {
	list, err := h.clients.List(c.Request.Context())
	if err != nil {
		h.abortError(c, err)
		return
	}
	out := make([]clientPayload, len(list))
	for i := range list {
		out[i] = clientToPayload(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getClient(c *gin.Context) {
	cl, err := h.clients.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, clientToPayload(cl))
}

func (h *Handler) createClient(c *gin.Context) {
	var req clientPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	cl := req.toDomain()
	if err := h.clients.Create(c.Request.Context(), cl); err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, clientToPayload(cl))
}

func (h *Handler) updateClient(c *gin.Context) {
	var req clientPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	cl := req.toDomain()
	cl.ID = c.Param("id")
	if err := h.clients.Update(c.Request.Context(), cl); err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, clientToPayload(cl))
}

func (h *Handler) deleteClient(c *gin.Context) {
	if err := h.clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
