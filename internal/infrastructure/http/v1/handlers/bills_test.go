package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/domain/billing"
	"shoppos/internal/infrastructure/http/v1/middleware"
)

type fakeBills struct {
	created   billing.CreateInput
	createErr error
	bill      *billing.Bill
	deleted   []id.ID
}

func (f *fakeBills) CreateBill(_ context.Context, in billing.CreateInput) (*billing.CreateResult, error) {
	f.created = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &billing.CreateResult{BillID: id.New(), BillNumber: "INV-000001"}, nil
}

func (f *fakeBills) GetBill(_ context.Context, billID id.ID) (*billing.Bill, error) {
	if f.bill == nil || f.bill.ID != billID {
		return nil, apperror.NewNotFound("bill", billID.String())
	}
	return f.bill, nil
}

func (f *fakeBills) DeleteBill(_ context.Context, billID id.ID) error {
	f.deleted = append(f.deleted, billID)
	return nil
}

func (f *fakeBills) ListBills(context.Context, billing.ListFilter) ([]*billing.Bill, error) {
	return []*billing.Bill{}, nil
}

func (f *fakeBills) TodaySummary(context.Context) (*billing.DaySummary, error) {
	return &billing.DaySummary{TotalBills: 3, TotalSales: decimal.NewFromInt(500)}, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(w io.Writer, _ *billing.Bill) error {
	_, err := w.Write([]byte("%PDF-fake"))
	return err
}

func newBillEngine(t *testing.T, svc BillService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	h := NewBillHandler(NewBaseHandler(), svc, fakeRenderer{})
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/bills", h.Create)
	r.GET("/bills/summary/today", h.TodaySummary)
	r.GET("/bills/:id", h.Get)
	r.GET("/bills/:id/receipt", h.Receipt)
	r.DELETE("/bills/:id", h.Delete)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestBillHandler_Create(t *testing.T) {
	svc := &fakeBills{}
	r := newBillEngine(t, svc)
	productID := id.New()

	w := doJSON(r, http.MethodPost, "/bills", map[string]any{
		"items": []map[string]any{
			{"product_id": productID.String(), "quantity": 2, "unit_price": "100.00"},
		},
		"payment_method": "card",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "INV-000001", data["bill_number"])

	require.Len(t, svc.created.Items, 1)
	assert.Equal(t, productID, svc.created.Items[0].ProductID)
	assert.True(t, svc.created.Items[0].UnitPrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "card", svc.created.PaymentMethod)
}

func TestBillHandler_CreateRejectsBadBody(t *testing.T) {
	r := newBillEngine(t, &fakeBills{})

	tests := []struct {
		name string
		body map[string]any
	}{
		{"no items", map[string]any{"items": []any{}}},
		{"zero quantity", map[string]any{"items": []map[string]any{{"product_id": id.New().String(), "quantity": 0}}}},
		{"bad product id", map[string]any{"items": []map[string]any{{"product_id": "nope", "quantity": 1}}}},
		{"bad payment method", map[string]any{
			"items":          []map[string]any{{"product_id": id.New().String(), "quantity": 1}},
			"payment_method": "barter",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/bills", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, apperror.CodeValidation, body["code"])
		})
	}
}

func TestBillHandler_InsufficientStockIs409WithDetails(t *testing.T) {
	productID := id.New()
	svc := &fakeBills{createErr: apperror.NewInsufficientStock(productID.String(), "Rice", 5, 2)}
	r := newBillEngine(t, svc)

	w := doJSON(r, http.MethodPost, "/bills", map[string]any{
		"items": []map[string]any{{"product_id": productID.String(), "quantity": 5}},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, productID.String(), details["product_id"])
	assert.Equal(t, float64(5), details["requested"])
	assert.Equal(t, float64(2), details["available"])
}

func TestBillHandler_GetAndReceipt(t *testing.T) {
	bill := &billing.Bill{ID: id.New(), BillNumber: "INV-000009"}
	r := newBillEngine(t, &fakeBills{bill: bill})

	w := doJSON(r, http.MethodGet, "/bills/"+bill.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/bills/"+bill.ID.String()+"/receipt", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-INV-000009.pdf")

	w = doJSON(r, http.MethodGet, "/bills/"+id.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/bills/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillHandler_DeleteAndSummary(t *testing.T) {
	svc := &fakeBills{}
	r := newBillEngine(t, svc)
	billID := id.New()

	w := doJSON(r, http.MethodDelete, "/bills/"+billID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []id.ID{billID}, svc.deleted)

	w = doJSON(r, http.MethodGet, "/bills/summary/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(3), data["total_bills"])
}
