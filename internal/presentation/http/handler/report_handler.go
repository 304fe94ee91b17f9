package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/httech/pos-api/internal/application/service"
	"github.com/httech/pos-api/internal/presentation/http/dto/response"
)

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Summary aggregates sales over an optional date range
func (h *ReportHandler) Summary(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		response.BadRequest(c, "Dates must use the YYYY-MM-DD format")
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales summary retrieved successfully", summary)
}

// Export writes a CSV export for an optional date range and returns its path
func (h *ReportHandler) Export(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		response.BadRequest(c, "Dates must use the YYYY-MM-DD format")
		return
	}

	path, err := h.reportService.Export(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales exported successfully", gin.H{
		"export_path": path,
	})
}
