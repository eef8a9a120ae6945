// Package receipt renders bill receipts as PDF.
package receipt

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"shoppos/internal/domain/billing"
)

// Receipt page size approximates 80mm thermal paper; height grows with lines.
const (
	pageWidth   = 80.0
	margin      = 4.0
	baseHeight  = 90.0
	lineHeight  = 5.0
	maxNameRune = 24
)

// Renderer draws receipts for one shop.
type Renderer struct {
	shopName string
}

// NewRenderer creates a renderer with the shop name printed in the header.
func NewRenderer(shopName string) *Renderer {
	return &Renderer{shopName: shopName}
}

// Render writes the receipt PDF of bill to w. bill must carry its items.
func (r *Renderer) Render(w io.Writer, bill *billing.Bill) error {
	height := baseHeight + float64(len(bill.Items))*lineHeight
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	contentW := pageWidth - 2*margin
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(r.shopName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, "Tax invoice", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Bill "+bill.BillNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, bill.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	if bill.CustomerName != nil {
		pdf.CellFormat(contentW, 4, tr("Customer: "+*bill.CustomerName), "", 1, "L", false, 0, "")
	}
	if bill.UserName != nil {
		pdf.CellFormat(contentW, 4, tr("Cashier: "+*bill.UserName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)

	nameW := contentW * 0.46
	qtyW := contentW * 0.12
	priceW := contentW * 0.20
	totalW := contentW * 0.22

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(nameW, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(qtyW, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(priceW, 5, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(totalW, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, it := range bill.Items {
		pdf.CellFormat(nameW, lineHeight, tr(truncate(it.ProductName, maxNameRune)), "", 0, "L", false, 0, "")
		pdf.CellFormat(qtyW, lineHeight, fmt.Sprintf("%d", it.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(priceW, lineHeight, it.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(totalW, lineHeight, it.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.Line(margin, pdf.GetY(), pageWidth-margin, pdf.GetY())
	pdf.Ln(1)

	labelW := contentW - totalW
	row := func(label, value string) {
		pdf.CellFormat(labelW, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(totalW, 4, value, "", 1, "R", false, 0, "")
	}
	row("Subtotal", bill.Subtotal.StringFixed(2))
	if !bill.Discount.IsZero() {
		row("Discount", "-"+bill.Discount.StringFixed(2))
	}
	row("Tax", bill.Tax.StringFixed(2))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(labelW, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(totalW, 6, bill.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	row("Paid ("+string(bill.PaymentMethod)+")", bill.AmountPaid.StringFixed(2))
	if bal := bill.Balance(); !bal.IsZero() {
		row("Balance due", bal.StringFixed(2))
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for shopping with us", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt %s: %w", bill.BillNumber, err)
	}
	return nil
}

// Bytes renders the receipt into memory.
func (r *Renderer) Bytes(bill *billing.Bill) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, bill); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the attachment name of a bill receipt.
func FileName(bill *billing.Bill) string {
	return "receipt-" + bill.BillNumber + ".pdf"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "."
}
