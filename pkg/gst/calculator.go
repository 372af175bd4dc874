// Package gst computes invoice totals under Indian GST rules.
//
// Arithmetic is done on decimal.Decimal. Per-line values and running sums are
// never rounded; only the invoice-level display amounts are rounded to paise.
package gst

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one invoice line as seen by the calculator.
type LineItem struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal // percent, 0-100
	DiscountPercent decimal.Decimal // percent, 0-100
	DiscountAmount  decimal.Decimal // absolute; wins over DiscountPercent when non-zero
}

// LineResult holds the unrounded figures for a single line.
type LineResult struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Taxable  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal // taxable + tax
}

// Calculations are the invoice-level totals.
type Calculations struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalTax      decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	IGST          decimal.Decimal
	RoundOff      decimal.Decimal
	TotalAmount   decimal.Decimal
	Lines         []LineResult
}

// Calculate returns the totals for items. isInterState selects IGST over the
// CGST/SGST split; callers decide it once per invoice (see IsInterState).
func Calculate(items []LineItem, isInterState bool) Calculations {
	calc := Calculations{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
		CGST:          decimal.Zero,
		SGST:          decimal.Zero,
		IGST:          decimal.Zero,
		RoundOff:      decimal.Zero,
		TotalAmount:   decimal.Zero,
		Lines:         make([]LineResult, 0, len(items)),
	}
	if len(items) == 0 {
		return calc
	}

	subtotal, discount, tax := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range items {
		line := CalculateLine(item)
		calc.Lines = append(calc.Lines, line)

		subtotal = subtotal.Add(line.Gross)
		discount = discount.Add(line.Discount)
		tax = tax.Add(line.Tax)
	}

	calc.Subtotal = subtotal.Round(2)
	calc.TotalDiscount = discount.Round(2)
	calc.TotalTax = tax.Round(2)

	if isInterState {
		calc.IGST = calc.TotalTax
	} else {
		half := calc.TotalTax.Div(decimal.NewFromInt(2))
		calc.CGST = half
		calc.SGST = half
	}

	grand := calc.Subtotal.Sub(calc.TotalDiscount).Add(calc.TotalTax)
	calc.RoundOff = grand.Round(0).Sub(grand)
	calc.TotalAmount = grand.Add(calc.RoundOff)

	return calc
}

// CalculateLine applies the per-line rules without rounding.
func CalculateLine(item LineItem) LineResult {
	gross := item.Quantity.Mul(item.UnitPrice)

	var discount decimal.Decimal
	if !item.DiscountAmount.IsZero() {
		discount = item.DiscountAmount
	} else {
		discount = gross.Mul(item.DiscountPercent).Div(hundred)
	}

	taxable := gross.Sub(discount)
	tax := taxable.Mul(item.TaxRate).Div(hundred)

	return LineResult{
		Gross:    gross,
		Discount: discount,
		Taxable:  taxable,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}
}

// IsInterState reports whether supplier and recipient are in different
// states. Names are compared trimmed and case-insensitively; a blank state on
// either side is treated as intra-state.
func IsInterState(businessState, customerState string) bool {
	b := strings.TrimSpace(businessState)
	c := strings.TrimSpace(customerState)
	if b == "" || c == "" {
		return false
	}
	return !strings.EqualFold(b, c)
}
