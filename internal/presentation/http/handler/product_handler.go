package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/httech/pos-api/internal/application/service"
	"github.com/httech/pos-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product catalog HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing the full catalog
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.productService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products retrieved successfully", products)
}

// Search handles free-text catalog search
func (h *ProductHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "Query parameter 'q' is required")
		return
	}

	products, err := h.productService.Search(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products retrieved successfully", products)
}

// Import replaces the catalog with an uploaded CSV file
func (h *ProductHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A CSV file upload named 'file' is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Could not read uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	count, err := h.productService.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products imported successfully", gin.H{
		"imported": count,
	})
}
