package dto

import (
	"testing"

	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	verrs, ok := err.(*validation.Errors)
	require.True(t, ok, "expected *validation.Errors, got %T", err)
	return verrs.Fields
}

func validBusiness() BusinessInput {
	return BusinessInput{
		Name:      "Acme Traders",
		GSTNumber: "29abcde1234f1z5",
		Address:   "12 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560001",
		Phone:     "+919876543210",
	}
}

func TestBusinessInput(t *testing.T) {
	in := validBusiness()
	require.NoError(t, validation.Struct(&in))
	assert.Equal(t, "29ABCDE1234F1Z5", in.GSTNumber, "gst number is upper-cased")

	bad := validBusiness()
	bad.Pincode = "012345"
	bad.PANNumber = "ABC"
	f := fields(t, validation.Struct(&bad))
	assert.Contains(t, f, "pincode")
	assert.Contains(t, f, "pan_number")
}

func TestBusinessUpdate_OnlyIDRequired(t *testing.T) {
	assert.NoError(t, validation.Struct(&BusinessUpdate{ID: 1}))

	f := fields(t, validation.Struct(&BusinessUpdate{}))
	assert.Contains(t, f, "id")

	empty := ""
	f = fields(t, validation.Struct(&BusinessUpdate{ID: 1, Name: &empty}))
	assert.Contains(t, f, "name")
}

func TestCustomerInput_DefaultsType(t *testing.T) {
	in := CustomerInput{Name: "Ravi", State: "Goa"}
	require.NoError(t, validation.Struct(&in))
	assert.Equal(t, "individual", in.CustomerType)

	in.CustomerType = "company"
	f := fields(t, validation.Struct(&in))
	assert.Contains(t, f, "customer_type")
}

func TestItemInput_Bounds(t *testing.T) {
	in := ItemInput{
		Name:      "Widget",
		HSNCode:   "123",
		UnitPrice: decimal.NewFromInt(-5),
		TaxRate:   decimal.NewFromInt(120),
	}
	f := fields(t, validation.Struct(&in))
	assert.Contains(t, f, "hsn_code")
	assert.Contains(t, f, "unit_price")
	assert.Contains(t, f, "tax_rate")

	in = ItemInput{Name: "Widget", HSNCode: "8471", UnitPrice: decimal.Zero, TaxRate: decimal.NewFromInt(18)}
	require.NoError(t, validation.Struct(&in))
	assert.Equal(t, "pcs", in.Unit)
}

func TestInvoiceInput(t *testing.T) {
	in := InvoiceInput{
		BusinessID:    1,
		CustomerID:    2,
		InvoiceNumber: "INV-001",
		InvoiceDate:   "2026-01-15",
		Items: []InvoiceItemInput{
			{Name: "Consulting", Quantity: decimal.NewFromInt(1)},
		},
	}
	require.NoError(t, validation.Struct(&in))

	in.InvoiceDate = "15/01/2026"
	in.Items[0].Quantity = decimal.Zero
	in.Items[0].DiscountPercent = decimal.NewFromInt(101)
	f := fields(t, validation.Struct(&in))
	assert.Contains(t, f, "invoice_date")
	assert.Contains(t, f, "items[0].quantity")
	assert.Contains(t, f, "items[0].discount_percent")

	in.Items = nil
	f = fields(t, validation.Struct(&in))
	assert.Contains(t, f, "items")
}

func TestInvoiceItemInput_NameRequiredWithoutCatalogItem(t *testing.T) {
	line := InvoiceItemInput{Quantity: decimal.NewFromInt(1)}
	f := fields(t, validation.Struct(&line))
	assert.Contains(t, f, "name")

	id := uint(3)
	line.ItemID = &id
	assert.NoError(t, validation.Struct(&line))
}

func TestSignUpInput(t *testing.T) {
	in := SignUpInput{
		Name:            "Asha",
		Email:           " Asha@Example.com ",
		Password:        "password123",
		ConfirmPassword: "password123",
		AcceptTerms:     true,
	}
	require.NoError(t, validation.Struct(&in))
	assert.Equal(t, "asha@example.com", in.Email)

	in.ConfirmPassword = "different1"
	in.AcceptTerms = false
	in.Password = "short"
	f := fields(t, validation.Struct(&in))
	assert.Contains(t, f, "password")
	assert.Contains(t, f, "confirm_password")
	assert.Contains(t, f, "accept_terms")
}

func TestCheckoutInput_DefaultsCurrency(t *testing.T) {
	in := CheckoutInput{Plan: " Premium ", Amount: 50000}
	require.NoError(t, validation.Struct(&in))
	assert.Equal(t, "premium", in.Plan)
	assert.Equal(t, "INR", in.Currency)

	f := fields(t, validation.Struct(&CheckoutInput{}))
	assert.Contains(t, f, "plan")
	assert.Contains(t, f, "amount")
}
