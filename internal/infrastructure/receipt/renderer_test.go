package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/id"
	"shoppos/internal/domain/billing"
)

func sampleBill() *billing.Bill {
	name := "Walk-in"
	return &billing.Bill{
		ID:            id.New(),
		BillNumber:    "INV-000042",
		Subtotal:      decimal.NewFromInt(200),
		Tax:           decimal.NewFromInt(36),
		TotalAmount:   decimal.NewFromInt(236),
		AmountPaid:    decimal.NewFromInt(200),
		PaymentMethod: billing.PaymentCash,
		CreatedAt:     time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		CustomerName:  &name,
		Items: []*billing.BillItem{
			{LineNo: 1, ProductName: "Basmati rice 5kg premium long grain", Quantity: 2, UnitPrice: decimal.NewFromInt(100), TotalPrice: decimal.NewFromInt(200)},
		},
	}
}

func TestRenderer_WritesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer("Corner Store").Render(&buf, sampleBill())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "receipt-INV-000042.pdf", FileName(sampleBill()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd.", truncate("abcdefgh", 5))
}
