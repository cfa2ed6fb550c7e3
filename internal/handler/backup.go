package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharmuse/ideal-collor-os/internal/backup"
)

// exportTable streams a whole-table dump as a file download.
func (h *Handler) exportTable(c *gin.Context) {
	table := c.Param("table")
	format, err := backup.ParseFormat(c.Query("format"))
	if err != nil {
		h.abortError(c, err)
		return
	}
	if !backup.ValidTable(table) {
		h.abortError(c, backup.ErrUnknownTable)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == backup.FormatJSONL {
		contentType = "application/x-ndjson"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.Filename(table, format)))

	if err := h.backups.Export(c.Request.Context(), table, format, c.Writer); err != nil {
		// Headers may already be out; only map the error when nothing was
		// written yet.
		if !c.Writer.Written() {
			h.abortError(c, err)
			return
		}
		c.Abort()
		return
	}
	c.Status(http.StatusOK)
}
