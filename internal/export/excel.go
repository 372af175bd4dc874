package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// CatalogHeaders is the expected first row of an item import sheet.
var CatalogHeaders = []string{"Name", "Description", "HSN Code", "Unit Price", "Tax Rate", "Unit", "Category"}

var invoiceListHeaders = []string{
	"Invoice No", "Invoice Date", "Due Date", "Customer", "Status",
	"Subtotal", "Discount", "CGST", "SGST", "IGST", "Round Off", "Total",
}

var invoiceLineHeaders = []string{
	"#", "Item", "HSN", "Qty", "Unit", "Rate", "Discount", "Taxable", "Tax %", "Tax", "Amount",
}

// InvoiceWorkbook renders one invoice with its lines on a single sheet.
func InvoiceWorkbook(invoice *model.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("export: invoice required")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Invoice"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	header := [][]interface{}{
		{"Invoice No", invoice.InvoiceNumber},
		{"Invoice Date", invoice.InvoiceDate.Format(dto.DateLayout)},
		{"Due Date", formatDue(invoice.DueDate)},
		{"Status", string(invoice.Status)},
	}
	if invoice.Business != nil {
		header = append(header,
			[]interface{}{"Seller", invoice.Business.Name},
			[]interface{}{"Seller GSTIN", invoice.Business.GSTNumber},
		)
	}
	if invoice.Customer != nil {
		header = append(header,
			[]interface{}{"Buyer", invoice.Customer.Name},
			[]interface{}{"Buyer GSTIN", invoice.Customer.GSTNumber},
		)
	}

	row := 1
	for _, h := range header {
		if err := setRow(f, sheet, row, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell(1, row), cell(1, row), bold); err != nil {
			return nil, err
		}
		row++
	}
	row++

	if err := setRow(f, sheet, row, toRow(invoiceLineHeaders)); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(len(invoiceLineHeaders), row), bold); err != nil {
		return nil, err
	}
	row++

	for i, line := range invoice.Items {
		values := []interface{}{
			i + 1,
			line.Name,
			line.HSNCode,
			num(line.Quantity),
			line.Unit,
			num(line.UnitPrice),
			num(line.LineDiscount.Round(2)),
			num(line.LineTaxable.Round(2)),
			num(line.TaxRate),
			num(line.LineTax.Round(2)),
			num(line.LineTotal.Round(2)),
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return nil, err
		}
		row++
	}
	row++

	totals := [][]interface{}{
		{"Subtotal", num(invoice.Subtotal)},
		{"Discount", num(invoice.TotalDiscount)},
		{"CGST", num(invoice.CGSTAmount)},
		{"SGST", num(invoice.SGSTAmount)},
		{"IGST", num(invoice.IGSTAmount)},
		{"Round Off", num(invoice.RoundOff)},
		{"Total", num(invoice.TotalAmount)},
	}
	labelCol := len(invoiceLineHeaders) - 1
	for _, t := range totals {
		if err := f.SetCellValue(sheet, cell(labelCol, row), t[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell(labelCol+1, row), t[1]); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetColWidth(sheet, "B", "B", 32); err != nil {
		return nil, err
	}
	return write(f)
}

// InvoiceListWorkbook renders one row per invoice.
func InvoiceListWorkbook(invoices []model.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := setRow(f, sheet, 1, toRow(invoiceListHeaders)); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, cell(1, 1), cell(len(invoiceListHeaders), 1), bold); err != nil {
		return nil, err
	}

	for i, inv := range invoices {
		customer := ""
		if inv.Customer != nil {
			customer = inv.Customer.Name
		}
		values := []interface{}{
			inv.InvoiceNumber,
			inv.InvoiceDate.Format(dto.DateLayout),
			formatDue(inv.DueDate),
			customer,
			string(inv.Status),
			num(inv.Subtotal),
			num(inv.TotalDiscount),
			num(inv.CGSTAmount),
			num(inv.SGSTAmount),
			num(inv.IGSTAmount),
			num(inv.RoundOff),
			num(inv.TotalAmount),
		}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", "D", 18); err != nil {
		return nil, err
	}
	return write(f)
}

// ReadCatalog parses an item sheet laid out as CatalogHeaders. The header
// row is skipped and blank rows are ignored. Values are not validated here.
func ReadCatalog(r io.Reader) ([]dto.ItemInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var items []dto.ItemInput
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		col := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}

		price, err := parseDecimal(col(3))
		if err != nil {
			return nil, fmt.Errorf("row %d: unit price %q: %w", i+2, col(3), err)
		}
		rate, err := parseDecimal(col(4))
		if err != nil {
			return nil, fmt.Errorf("row %d: tax rate %q: %w", i+2, col(4), err)
		}

		items = append(items, dto.ItemInput{
			Name:        col(0),
			Description: col(1),
			HSNCode:     col(2),
			UnitPrice:   price,
			TaxRate:     rate,
			Unit:        col(5),
			Category:    col(6),
		})
	}
	return items, nil
}

// CatalogTemplate returns an empty import sheet with the header row.
func CatalogTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Items"); err != nil {
		return nil, err
	}
	if err := setRow(f, "Items", 1, toRow(CatalogHeaders)); err != nil {
		return nil, err
	}
	return write(f)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "%")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	return f.SetSheetRow(sheet, cell(1, row), &values)
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// cell panics only on non-positive coordinates, which callers never pass.
func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return name
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func formatDue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(dto.DateLayout)
}

func write(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
