package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
	"github.com/sharmuse/ideal-collor-os/internal/domain/report"
)

// parsePeriod reads optional from/to query bounds in YYYY-MM-DD form.
func parsePeriod(c *gin.Context) (report.Period, error) {
	var p report.Period
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return p, &order.ValidationError{Field: "from", Reason: "expected YYYY-MM-DD"}
		}
		p.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return p, &order.ValidationError{Field: "to", Reason: "expected YYYY-MM-DD"}
		}
		p.To = &t
	}
	return p, nil
}

type materialUsagePayload struct {
	ProductName   string          `json:"product_name"`
	ProductType   string          `json:"product_type"`
	Unit          string          `json:"unit"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

func (h *Handler) reportMaterials(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		h.abortError(c, err)
		return
	}
	usage, err := h.reports.MaterialsUsage(c.Request.Context(), period)
	if err != nil {
		h.abortError(c, err)
		return
	}
	out := make([]materialUsagePayload, len(usage))
	for i, u := range usage {
		out[i] = materialUsagePayload{
			ProductName:   u.ProductName,
			ProductType:   u.ProductType,
			Unit:          u.Unit,
			TotalQuantity: u.TotalQuantity,
		}
	}
	c.JSON(http.StatusOK, out)
}

type statusCountPayload struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func (h *Handler) reportStatus(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		h.abortError(c, err)
		return
	}
	counts, err := h.reports.StatusSummary(c.Request.Context(), period)
	if err != nil {
		h.abortError(c, err)
		return
	}
	out := make([]statusCountPayload, len(counts))
	for i, s := range counts {
		out[i] = statusCountPayload{Status: s.Status, Count: s.Count}
	}
	c.JSON(http.StatusOK, out)
}
