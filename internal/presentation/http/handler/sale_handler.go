package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/httech/pos-api/internal/application/service"
	"github.com/httech/pos-api/internal/presentation/http/dto/response"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create handles checkout of a cart
func (h *SaleHandler) Create(c *gin.Context) {
	var input service.CreateSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.saleService.CreateSale(c.Request.Context(), &input)
	if err != nil {
		// The sale may have been persisted with only the receipt failing;
		// in that case return it with a warning instead of an error.
		if result != nil && result.Sale != nil {
			response.CreatedWithReceipt(c, "Sale recorded, receipt generation failed",
				result.Sale, "", err.Error())
			return
		}
		response.Error(c, err)
		return
	}

	response.CreatedWithReceipt(c, "Sale recorded successfully",
		result.Sale, result.ReceiptPath, "")
}

// List handles listing sales, optionally filtered by sale date
func (h *SaleHandler) List(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		response.BadRequest(c, "Dates must use the YYYY-MM-DD format")
		return
	}

	sales, err := h.saleService.ListSales(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales retrieved successfully", sales)
}

// GetByInvoice handles fetching a single sale by invoice number
func (h *SaleHandler) GetByInvoice(c *gin.Context) {
	sale, err := h.saleService.GetSale(c.Request.Context(), c.Param("invoice"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}
