// Package export renders invoices as PDF and Excel documents and reads
// catalog sheets back in.
package export

import (
	"bytes"
	"fmt"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const (
	displayDate = "02-Jan-2006"
	marginX     = 15.0
	marginY     = 15.0
)

// column layout of the line table, in mm
var lineColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "C"},
	{"Item", 52, "L"},
	{"HSN", 18, "C"},
	{"Qty", 16, "R"},
	{"Rate", 22, "R"},
	{"Disc.", 18, "R"},
	{"Tax %", 14, "R"},
	{"Amount", 32, "R"},
}

// InvoicePDF renders a single invoice. The invoice must have Business,
// Customer and Items loaded.
func InvoicePDF(invoice *model.Invoice) ([]byte, error) {
	if invoice == nil || invoice.Business == nil || invoice.Customer == nil {
		return nil, fmt.Errorf("export: invoice with business and customer required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)
	pdf.SetTitle("Invoice "+invoice.InvoiceNumber, true)
	pdf.AddPage()

	business := invoice.Business
	customer := invoice.Customer

	// header
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 10, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, tr(business.Name))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 5, tr(fmt.Sprintf("%s, %s, %s - %s", business.Address, business.City, business.State, business.Pincode)))
	pdf.Ln(5)
	pdf.Cell(0, 5, "GSTIN: "+business.GSTNumber)
	pdf.Ln(5)
	if business.PANNumber != "" {
		pdf.Cell(0, 5, "PAN: "+business.PANNumber)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	// invoice meta and buyer side by side
	top := pdf.GetY()
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(90, 6, "BILL TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(90, 5, tr(customer.Name))
	pdf.Ln(5)
	if customer.Address != "" {
		pdf.MultiCell(90, 5, tr(customer.Address), "", "L", false)
	}
	pdf.Cell(90, 5, tr(customer.State))
	pdf.Ln(5)
	if customer.GSTNumber != "" {
		pdf.Cell(90, 5, "GSTIN: "+customer.GSTNumber)
		pdf.Ln(5)
	}
	bottom := pdf.GetY()

	pdf.SetXY(marginX+100, top)
	meta := [][2]string{
		{"Invoice No:", invoice.InvoiceNumber},
		{"Invoice Date:", invoice.InvoiceDate.Format(displayDate)},
	}
	if invoice.DueDate != nil {
		meta = append(meta, [2]string{"Due Date:", invoice.DueDate.Format(displayDate)})
	}
	meta = append(meta, [2]string{"Status:", string(invoice.Status)})
	supply := "Intra-state"
	if invoice.IsInterState {
		supply = "Inter-state"
	}
	meta = append(meta, [2]string{"Supply:", supply})
	for _, m := range meta {
		pdf.SetX(marginX + 100)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(28, 5, m[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(52, 5, tr(m[1]), "", 1, "L", false, 0, "")
	}
	if pdf.GetY() < bottom {
		pdf.SetY(bottom)
	}
	pdf.Ln(6)

	// line table
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	for _, col := range lineColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, line := range invoice.Items {
		values := []string{
			fmt.Sprintf("%d", i+1),
			tr(line.Name),
			line.HSNCode,
			line.Quantity.String() + " " + line.Unit,
			money(line.UnitPrice),
			money(line.LineDiscount),
			line.TaxRate.String(),
			money(line.LineTaxable),
		}
		for j, col := range lineColumns {
			pdf.CellFormat(col.width, 7, values[j], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// totals
	totals := [][2]string{
		{"Subtotal", money(invoice.Subtotal)},
		{"Discount", "-" + money(invoice.TotalDiscount)},
	}
	if invoice.IsInterState {
		totals = append(totals, [2]string{"IGST", money(invoice.IGSTAmount)})
	} else {
		totals = append(totals,
			[2]string{"CGST", money(invoice.CGSTAmount)},
			[2]string{"SGST", money(invoice.SGSTAmount)},
		)
	}
	totals = append(totals, [2]string{"Round off", money(invoice.RoundOff)})
	for _, t := range totals {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(140, 6, t[0]+":", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, t[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 8, "TOTAL (INR):", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(invoice.TotalAmount), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 8)
	for _, block := range [][2]string{
		{"Payment terms", invoice.PaymentTerms},
		{"Notes", invoice.Notes},
		{"Terms & Conditions", invoice.Terms},
	} {
		if block[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 9)
		pdf.Cell(0, 6, block[0]+":")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(0, 4, tr(block[1]), "", "L", false)
		pdf.Ln(2)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "This is a computer generated invoice.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
