package service

import (
	"context"
	"testing"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceService_CreateTotals(t *testing.T) {
	tests := []struct {
		name          string
		customerState string
		interState    bool
		cgst, sgst    string
		igst          string
	}{
		{
			name:          "Intra-state splits CGST and SGST",
			customerState: "Karnataka",
			cgst:          "162",
			sgst:          "162",
			igst:          "0",
		},
		{
			name:          "Inter-state charges IGST",
			customerState: "Maharashtra",
			interState:    true,
			cgst:          "0",
			sgst:          "0",
			igst:          "324",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupServiceTest(t)
			owner := env.user(t, "owner@example.com")
			biz := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
			cust := env.customerIn(t, owner.ID, "Meera Textiles", tt.customerState, "")

			inv := env.invoice(t, owner.ID, biz.ID, cust.ID, "INV-001")
			assert.Equal(t, model.InvoiceStatusDraft, inv.Status)
			assert.Equal(t, tt.interState, inv.IsInterState)

			reloaded, err := env.invoices.Get(context.Background(), owner.ID, inv.ID)
			require.NoError(t, err)

			for _, got := range []*model.Invoice{inv, reloaded} {
				assertDecimal(t, "2000", got.Subtotal)
				assertDecimal(t, "200", got.TotalDiscount)
				assertDecimal(t, "324", got.TotalTax)
				assertDecimal(t, tt.cgst, got.CGSTAmount)
				assertDecimal(t, tt.sgst, got.SGSTAmount)
				assertDecimal(t, tt.igst, got.IGSTAmount)
				assertDecimal(t, "0", got.RoundOff)
				assertDecimal(t, "2124", got.TotalAmount)
			}

			require.Len(t, reloaded.Items, 1)
			line := reloaded.Items[0]
			assertDecimal(t, "2000", line.LineGross)
			assertDecimal(t, "200", line.LineDiscount)
			assertDecimal(t, "1800", line.LineTaxable)
			assertDecimal(t, "324", line.LineTax)
			assertDecimal(t, "2124", line.LineTotal)
			require.NotNil(t, reloaded.Business)
			require.NotNil(t, reloaded.Customer)
			assert.Equal(t, cust.ID, reloaded.Customer.ID)
		})
	}
}

func TestInvoiceService_CatalogSnapshot(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	biz := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	cust := env.customerIn(t, owner.ID, "Meera Textiles", "Karnataka", "")

	item, err := env.items.Create(ctx, owner.ID, itemInput("Steel rack", "9403", 1000, 18))
	require.NoError(t, err)

	id := item.ID
	inv, err := env.invoices.Create(ctx, owner.ID, dto.InvoiceInput{
		BusinessID:    biz.ID,
		CustomerID:    cust.ID,
		InvoiceNumber: "INV-100",
		InvoiceDate:   "2024-04-01",
		Items:         []dto.InvoiceItemInput{{ItemID: &id, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Steel rack", inv.Items[0].Name)
	assert.Equal(t, "9403", inv.Items[0].HSNCode)
	assertDecimal(t, "1180", inv.TotalAmount)

	price := decimal.NewFromInt(5000)
	_, err = env.items.Update(ctx, owner.ID, dto.ItemUpdate{ID: item.ID, UnitPrice: &price})
	require.NoError(t, err)

	reloaded, err := env.invoices.Get(ctx, owner.ID, inv.ID)
	require.NoError(t, err)
	assertDecimal(t, "1000", reloaded.Items[0].UnitPrice)
	assertDecimal(t, "1180", reloaded.TotalAmount)
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	biz := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	cust := env.customerIn(t, owner.ID, "Meera Textiles", "Karnataka", "")

	unknown := uint(9999)
	tests := []struct {
		name  string
		input dto.InvoiceInput
		field string
	}{
		{
			name: "Due date before invoice date",
			input: dto.InvoiceInput{
				BusinessID: biz.ID, CustomerID: cust.ID, InvoiceNumber: "A-1",
				InvoiceDate: "2024-04-10", DueDate: "2024-04-01",
				Items: []dto.InvoiceItemInput{scenarioItem()},
			},
			field: "due_date",
		},
		{
			name: "No items",
			input: dto.InvoiceInput{
				BusinessID: biz.ID, CustomerID: cust.ID, InvoiceNumber: "A-2",
				InvoiceDate: "2024-04-10",
			},
			field: "items",
		},
		{
			name: "Ad-hoc line without price",
			input: dto.InvoiceInput{
				BusinessID: biz.ID, CustomerID: cust.ID, InvoiceNumber: "A-3",
				InvoiceDate: "2024-04-10",
				Items:       []dto.InvoiceItemInput{{Name: "Labour", Quantity: decimal.NewFromInt(1)}},
			},
			field: "items[0].unit_price",
		},
		{
			name: "Unknown catalog item",
			input: dto.InvoiceInput{
				BusinessID: biz.ID, CustomerID: cust.ID, InvoiceNumber: "A-4",
				InvoiceDate: "2024-04-10",
				Items:       []dto.InvoiceItemInput{{ItemID: &unknown, Quantity: decimal.NewFromInt(1)}},
			},
			field: "items[0].item_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.invoices.Create(ctx, owner.ID, tt.input)
			assertKind(t, err, apperrors.KindValidation)
			appErr, _ := apperrors.As(err)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}

	_, total, err := env.invoices.List(ctx, owner.ID, dto.InvoiceFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestInvoiceService_DuplicateNumber(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")

	aliceBiz := env.businessIn(t, alice.ID, "Alice Stores", "Kerala")
	aliceCust := env.customerIn(t, alice.ID, "Client", "Kerala", "")
	env.invoice(t, alice.ID, aliceBiz.ID, aliceCust.ID, "INV-001")

	_, err := env.invoices.Create(ctx, alice.ID, dto.InvoiceInput{
		BusinessID:    aliceBiz.ID,
		CustomerID:    aliceCust.ID,
		InvoiceNumber: "INV-001",
		InvoiceDate:   "2024-04-02",
		Items:         []dto.InvoiceItemInput{scenarioItem()},
	})
	assertKind(t, err, apperrors.KindConflict)
	assert.True(t, hasCode(err, apperrors.InvoiceNumberExists))

	// numbers are unique per owner only
	bobBiz := env.businessIn(t, bob.ID, "Bob Stores", "Kerala")
	bobCust := env.customerIn(t, bob.ID, "Client", "Kerala", "")
	env.invoice(t, bob.ID, bobBiz.ID, bobCust.ID, "INV-001")

	second := env.invoice(t, alice.ID, aliceBiz.ID, aliceCust.ID, "INV-002")
	number := "INV-001"
	_, err = env.invoices.Update(ctx, alice.ID, dto.InvoiceUpdate{ID: second.ID, InvoiceNumber: &number})
	assertKind(t, err, apperrors.KindConflict)
}

func TestInvoiceService_CrossTenant(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")

	aliceBiz := env.businessIn(t, alice.ID, "Alice Stores", "Kerala")
	aliceCust := env.customerIn(t, alice.ID, "Client", "Kerala", "")
	inv := env.invoice(t, alice.ID, aliceBiz.ID, aliceCust.ID, "INV-001")

	_, err := env.invoices.Get(ctx, bob.ID, inv.ID)
	assertKind(t, err, apperrors.KindNotFound)

	notes := "mine now"
	_, err = env.invoices.Update(ctx, bob.ID, dto.InvoiceUpdate{ID: inv.ID, Notes: &notes})
	assertKind(t, err, apperrors.KindNotFound)

	_, err = env.invoices.UpdateStatus(ctx, bob.ID, inv.ID, dto.InvoiceStatusInput{Status: "paid"})
	assertKind(t, err, apperrors.KindNotFound)

	assertKind(t, env.invoices.Delete(ctx, bob.ID, inv.ID), apperrors.KindNotFound)

	// bob cannot bill from alice's business or to alice's customer
	bobBiz := env.businessIn(t, bob.ID, "Bob Stores", "Kerala")
	_, err = env.invoices.Create(ctx, bob.ID, dto.InvoiceInput{
		BusinessID:    bobBiz.ID,
		CustomerID:    aliceCust.ID,
		InvoiceNumber: "B-1",
		InvoiceDate:   "2024-04-01",
		Items:         []dto.InvoiceItemInput{scenarioItem()},
	})
	assertKind(t, err, apperrors.KindNotFound)

	list, total, err := env.invoices.List(ctx, bob.ID, dto.InvoiceFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	got, err := env.invoices.Get(ctx, alice.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusDraft, got.Status)
}

func TestInvoiceService_UpdateRecomputes(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	biz := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	local := env.customerIn(t, owner.ID, "Local", "Karnataka", "")
	remote := env.customerIn(t, owner.ID, "Remote", "Maharashtra", "")

	inv := env.invoice(t, owner.ID, biz.ID, local.ID, "INV-001")

	updated, err := env.invoices.Update(ctx, owner.ID, dto.InvoiceUpdate{ID: inv.ID, CustomerID: &remote.ID})
	require.NoError(t, err)
	assert.True(t, updated.IsInterState)
	assertDecimal(t, "324", updated.IGSTAmount)
	assertDecimal(t, "0", updated.CGSTAmount)

	price := decimal.NewFromInt(500)
	rate := decimal.NewFromInt(5)
	items := []dto.InvoiceItemInput{
		{Name: "Bolt", Quantity: decimal.NewFromInt(4), UnitPrice: &price, TaxRate: &rate},
		scenarioItem(),
	}
	updated, err = env.invoices.Update(ctx, owner.ID, dto.InvoiceUpdate{ID: inv.ID, Items: &items})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, "Bolt", updated.Items[0].Name)
	assertDecimal(t, "4000", updated.Subtotal)
	assertDecimal(t, "424", updated.TotalTax)
	assertDecimal(t, "4224", updated.TotalAmount)

	status, err := env.invoices.UpdateStatus(ctx, owner.ID, inv.ID, dto.InvoiceStatusInput{Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, status.Status)

	_, err = env.invoices.UpdateStatus(ctx, owner.ID, inv.ID, dto.InvoiceStatusInput{Status: "refunded"})
	assertKind(t, err, apperrors.KindValidation)
}

func TestInvoiceService_ListAndDelete(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	biz := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	meera := env.customerIn(t, owner.ID, "Meera Textiles", "Karnataka", "")
	kumar := env.customerIn(t, owner.ID, "Kumar Hardware", "Karnataka", "")

	first := env.invoice(t, owner.ID, biz.ID, meera.ID, "INV-001")
	env.invoice(t, owner.ID, biz.ID, kumar.ID, "INV-002")
	env.invoice(t, owner.ID, biz.ID, kumar.ID, "INV-003")

	_, total, err := env.invoices.List(ctx, owner.ID, dto.InvoiceFilter{CustomerID: kumar.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	list, total, err := env.invoices.List(ctx, owner.ID, dto.InvoiceFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 2)

	require.NoError(t, env.invoices.Delete(ctx, owner.ID, first.ID))
	_, err = env.invoices.Get(ctx, owner.ID, first.ID)
	assertKind(t, err, apperrors.KindNotFound)

	var lines int64
	require.NoError(t, env.db.Model(&model.InvoiceItem{}).Where("invoice_id = ?", first.ID).Count(&lines).Error)
	assert.Zero(t, lines)
}

func TestInvoiceService_Summary(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	biz := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	cust := env.customerIn(t, owner.ID, "Meera Textiles", "Karnataka", "")

	env.invoice(t, owner.ID, biz.ID, cust.ID, "INV-001")
	paid := env.invoice(t, owner.ID, biz.ID, cust.ID, "INV-002")
	sent := env.invoice(t, owner.ID, biz.ID, cust.ID, "INV-003")
	_, err := env.invoices.UpdateStatus(ctx, owner.ID, paid.ID, dto.InvoiceStatusInput{Status: "paid"})
	require.NoError(t, err)
	_, err = env.invoices.UpdateStatus(ctx, owner.ID, sent.ID, dto.InvoiceStatusInput{Status: "sent"})
	require.NoError(t, err)

	summary, err := env.invoices.Summary(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.TotalInvoices)
	assertDecimal(t, "6372", summary.TotalAmount)
	assertDecimal(t, "2124", summary.PaidAmount)
	assertDecimal(t, "2124", summary.OutstandingAmount)
	require.Len(t, summary.ByStatus, len(model.InvoiceStatuses))
	for _, b := range summary.ByStatus {
		if b.Status == model.InvoiceStatusCancelled {
			assert.Zero(t, b.Count)
			assertDecimal(t, "0", b.Amount)
		}
	}

	// a user with no invoices still gets every bucket
	empty, err := env.invoices.Summary(ctx, env.user(t, "new@example.com").ID)
	require.NoError(t, err)
	assert.Len(t, empty.ByStatus, len(model.InvoiceStatuses))
	assert.Zero(t, empty.TotalInvoices)
}

func TestInvoiceService_Analytics(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	env.invoices.(*invoiceService).now = fixedClock(time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC))

	owner := env.user(t, "owner@example.com")
	biz := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	meera := env.customerIn(t, owner.ID, "Meera Textiles", "Karnataka", "")
	kumar := env.customerIn(t, owner.ID, "Kumar Hardware", "Karnataka", "")

	a := env.invoice(t, owner.ID, biz.ID, meera.ID, "INV-001")
	b := env.invoice(t, owner.ID, biz.ID, kumar.ID, "INV-002")
	env.invoice(t, owner.ID, biz.ID, kumar.ID, "INV-003") // draft, not revenue
	for _, id := range []uint{a.ID, b.ID} {
		_, err := env.invoices.UpdateStatus(ctx, owner.ID, id, dto.InvoiceStatusInput{Status: "paid"})
		require.NoError(t, err)
	}

	report, err := env.invoices.Analytics(ctx, owner.ID, 3)
	require.NoError(t, err)
	require.Len(t, report.Monthly, 3)
	assert.Equal(t, "2024-03", report.Monthly[0].Month)
	assert.Equal(t, "2024-05", report.Monthly[2].Month)

	april := report.Monthly[1]
	assert.Equal(t, "2024-04", april.Month)
	assert.Equal(t, 2, april.Invoices)
	assertDecimal(t, "4248", april.Revenue)
	assertDecimal(t, "4248", april.Paid)
	assertDecimal(t, "648", april.Tax)
	assertDecimal(t, "4248", report.TotalRevenue)
	assert.Len(t, report.TopCustomers, 2)

	_, err = env.invoices.Analytics(ctx, owner.ID, 36)
	assertKind(t, err, apperrors.KindValidation)
}
