package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/httech/pos-api/internal/application/service"
	"github.com/httech/pos-api/internal/config"
	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/internal/infrastructure/catalog"
	"github.com/httech/pos-api/internal/infrastructure/ledger"
	"github.com/httech/pos-api/internal/presentation/http/handler"
	"github.com/httech/pos-api/internal/presentation/http/middleware"
	"github.com/httech/pos-api/internal/presentation/http/routes"
	"github.com/httech/pos-api/pkg/printer"
)

const catalogCSV = `Name,Model,Specifications,Purchase Price,Selling Price,Warranty Period,Warranty Type,quantity,Categories,Brands,Description,Weight,Supplier Invoice No
Gaming Mouse,GM-100,16000 DPI,1500,2500,12,months,10,Accessories,Logi,Wired mouse,0.1,SUP-001
Office Keyboard,KB-220,Membrane,900,1500,6,months,4,Accessories,Dell,Quiet keys,0.5,SUP-001
`

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.csv"), []byte(catalogCSV), 0o644))

	salesLedger := ledger.NewCSVLedger(
		filepath.Join(dir, "sales.csv"),
		filepath.Join(dir, "sales_items.csv"),
		filepath.Join(dir, "exports"),
		time.Second,
	)
	require.NoError(t, salesLedger.Initialize())

	productCatalog := catalog.NewCSVCatalog(filepath.Join(dir, "products.csv"))

	receiptService := service.NewReceiptService(
		filepath.Join(dir, "receipts"),
		printer.NewNullPrinter(),
		"none",
		service.ReceiptOptions{
			Header:  entity.ReceiptHeader{StoreName: "HT TECH"},
			Width:   32,
			TaxRate: 0.16,
		},
	)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "pos-api-test"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 1},
	}

	router := routes.Setup(&routes.Handlers{
		Product: handler.NewProductHandler(service.NewProductService(productCatalog)),
		Sale:    handler.NewSaleHandler(service.NewSaleService(salesLedger, receiptService, 0.16)),
		Report:  handler.NewReportHandler(service.NewReportService(salesLedger)),
		Printer: handler.NewPrinterHandler(receiptService),
	}, &routes.Deps{
		Cfg:              cfg,
		IdempotencyStore: middleware.NewIdempotencyStore(time.Hour),
	})
	return router, dir
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func saleBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"name": "Gaming Mouse", "model": "GM-100", "quantity": 2, "price": 2500},
		},
		"customer_name":  "Bilal",
		"payment_method": "cash",
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec, body := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])
}

func TestListAndSearchProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := body["data"].([]any)
	require.Len(t, products, 2)

	rec, body = doJSON(t, router, http.MethodGet, "/products/search?q=mouse", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products = body["data"].([]any)
	require.Len(t, products, 1)
	require.Equal(t, "Gaming Mouse", products[0].(map[string]any)["name"])

	rec, _ = doJSON(t, router, http.MethodGet, "/products/search", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Name,Model,Selling Price\nWebcam,WC-1,4500\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	require.Equal(t, float64(1), data["imported"])

	// The new catalog replaced the old one entirely.
	rec, body = doJSON(t, router, http.MethodGet, "/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := body["data"].([]any)
	require.Len(t, products, 1)
	require.Equal(t, "Webcam", products[0].(map[string]any)["name"])
}

func TestCreateAndFetchSale(t *testing.T) {
	router, dir := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/sales", saleBody(), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, body["success"])

	// The sale is the data payload; receipt_path sits beside it.
	sale := body["data"].(map[string]any)
	invoice := sale["invoice_number"].(string)
	require.Regexp(t, `^INV-\d{8}-\d{5}$`, invoice)
	require.InDelta(t, 5800.0, sale["total_amount"].(float64), 0.001)

	receiptPath := body["receipt_path"].(string)
	require.True(t, strings.HasPrefix(receiptPath, filepath.Join(dir, "receipts")))
	_, err := os.Stat(receiptPath)
	require.NoError(t, err)

	rec, body = doJSON(t, router, http.MethodGet, "/sales/"+invoice, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := body["data"].(map[string]any)
	require.Equal(t, invoice, fetched["invoice_number"])

	rec, _ = doJSON(t, router, http.MethodGet, "/sales/INV-19990101-00001", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSaleValidationResponse(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/sales", map[string]any{
		"items":          []map[string]any{},
		"payment_method": "cash",
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["errors"])
}

func TestCreateSaleIdempotencyReplay(t *testing.T) {
	router, _ := newTestRouter(t)
	headers := map[string]string{"Idempotency-Key": "checkout-42"}

	rec1, body1 := doJSON(t, router, http.MethodPost, "/sales", saleBody(), headers)
	require.Equal(t, http.StatusCreated, rec1.Code)

	rec2, body2 := doJSON(t, router, http.MethodPost, "/sales", saleBody(), headers)
	require.Equal(t, http.StatusCreated, rec2.Code)
	require.Equal(t, "true", rec2.Header().Get("X-Idempotency-Replayed"))

	invoice1 := body1["data"].(map[string]any)["invoice_number"]
	invoice2 := body2["data"].(map[string]any)["invoice_number"]
	require.Equal(t, invoice1, invoice2)

	// Only one sale was actually recorded.
	rec, body := doJSON(t, router, http.MethodGet, "/sales", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["data"].([]any), 1)
}

func TestListSalesDateFilterAndValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/sales", saleBody(), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	today := time.Now().Format("2006-01-02")
	rec, body := doJSON(t, router, http.MethodGet, "/sales?start_date="+today+"&end_date="+today, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["data"].([]any), 1)

	rec, body = doJSON(t, router, http.MethodGet, "/sales?start_date=2099-01-01", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["data"])

	rec, _ = doJSON(t, router, http.MethodGet, "/sales?start_date=01-01-2024", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryAndExport(t *testing.T) {
	router, dir := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/sales", saleBody(), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := doJSON(t, router, http.MethodGet, "/sales/summary", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := body["data"].(map[string]any)
	require.Equal(t, float64(1), summary["total_sales"])
	require.InDelta(t, 5800.0, summary["total_amount"].(float64), 0.001)

	rec, body = doJSON(t, router, http.MethodGet, "/sales/export", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exportPath := body["data"].(map[string]any)["export_path"].(string)
	require.True(t, strings.HasPrefix(exportPath, filepath.Join(dir, "exports")))

	raw, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.Contains(t, string(raw), "Invoice Number")
	require.Contains(t, string(raw), "Gaming Mouse (Qty: 2, Price: 2500.00)")
}

func TestPrinterEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/printer/status", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := body["data"].(map[string]any)
	require.Equal(t, false, status["configured"])
	require.Equal(t, "none", status["type"])

	rec, body = doJSON(t, router, http.MethodPost, "/printer/test", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, body["data"].(map[string]any)["page"], "PRINTER TEST")
}
