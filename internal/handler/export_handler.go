package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/universal-yoga/yoga-admin-api/internal/service"
	"github.com/universal-yoga/yoga-admin-api/pkg/response"
)

// ExportHandler serves catalog exports as downloadable files.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs a new ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// CSV godoc
// @Summary Export the class catalog as CSV
// @Tags Exports
// @Produce text/csv
// @Success 200 {file} file
// @Router /exports/classes.csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	data, err := h.exports.CSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, data, "text/csv", "csv")
}

// PDF godoc
// @Summary Export the class catalog as PDF
// @Tags Exports
// @Produce application/pdf
// @Success 200 {file} file
// @Router /exports/classes.pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	data, err := h.exports.PDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, data, "application/pdf", "pdf")
}

func serveFile(c *gin.Context, data []byte, contentType, ext string) {
	filename := fmt.Sprintf("yoga-classes-%s.%s", time.Now().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
