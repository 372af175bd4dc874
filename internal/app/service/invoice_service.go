package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/monitoring"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/gst"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultAnalyticsMonths = 12
	maxAnalyticsMonths     = 24
	monthLayout            = "2006-01"
	topCustomersLimit      = 5
)

// StatusBucket is one row of the dashboard breakdown.
type StatusBucket struct {
	Status model.InvoiceStatus `json:"status"`
	Count  int64               `json:"count"`
	Amount decimal.Decimal     `json:"amount"`
}

type InvoiceSummary struct {
	TotalInvoices     int64           `json:"total_invoices"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"` // sent + overdue
	OverdueCount      int64           `json:"overdue_count"`
	ByStatus          []StatusBucket  `json:"by_status"`
}

type MonthlyRevenue struct {
	Month    string          `json:"month"` // YYYY-MM
	Invoices int             `json:"invoices"`
	Revenue  decimal.Decimal `json:"revenue"`
	Tax      decimal.Decimal `json:"tax"`
	Paid     decimal.Decimal `json:"paid"`
}

type CustomerRevenue struct {
	CustomerID uint            `json:"customer_id"`
	Name       string          `json:"name"`
	Invoices   int             `json:"invoices"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type InvoiceAnalytics struct {
	From         time.Time         `json:"from"`
	To           time.Time         `json:"to"`
	Monthly      []MonthlyRevenue  `json:"monthly"`
	TopCustomers []CustomerRevenue `json:"top_customers"`
	TotalRevenue decimal.Decimal   `json:"total_revenue"`
	TotalTax     decimal.Decimal   `json:"total_tax"`
}

type InvoiceService interface {
	Create(ctx context.Context, userID uint, input dto.InvoiceInput) (*model.Invoice, error)
	Update(ctx context.Context, userID uint, input dto.InvoiceUpdate) (*model.Invoice, error)
	UpdateStatus(ctx context.Context, userID, id uint, input dto.InvoiceStatusInput) (*model.Invoice, error)
	Delete(ctx context.Context, userID, id uint) error
	Get(ctx context.Context, userID, id uint) (*model.Invoice, error)
	List(ctx context.Context, userID uint, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	ListAll(ctx context.Context, userID uint, filter dto.InvoiceFilter) ([]model.Invoice, error)
	Summary(ctx context.Context, userID uint) (*InvoiceSummary, error)
	Analytics(ctx context.Context, userID uint, months int) (*InvoiceAnalytics, error)
}

type invoiceService struct {
	db           *gorm.DB
	invoiceRepo  repository.InvoiceRepository
	businessRepo repository.BusinessRepository
	customerRepo repository.CustomerRepository
	itemRepo     repository.ItemRepository
	now          Clock
}

func NewInvoiceService(
	db *gorm.DB,
	invoiceRepo repository.InvoiceRepository,
	businessRepo repository.BusinessRepository,
	customerRepo repository.CustomerRepository,
	itemRepo repository.ItemRepository,
) InvoiceService {
	return &invoiceService{
		db:           db,
		invoiceRepo:  invoiceRepo,
		businessRepo: businessRepo,
		customerRepo: customerRepo,
		itemRepo:     itemRepo,
		now:          time.Now,
	}
}

// Create validates the input, snapshots catalog items, computes totals and
// stores the invoice with its lines in one transaction.
func (s *invoiceService) Create(ctx context.Context, userID uint, input dto.InvoiceInput) (*model.Invoice, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	invoiceDate, dueDate, err := parseInvoiceDates(input.InvoiceDate, input.DueDate)
	if err != nil {
		return nil, err
	}

	status := model.InvoiceStatusDraft
	if input.Status != "" {
		status = model.InvoiceStatus(input.Status)
	}

	invoice := &model.Invoice{
		UserID:        userID,
		BusinessID:    input.BusinessID,
		CustomerID:    input.CustomerID,
		InvoiceNumber: input.InvoiceNumber,
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Status:        status,
		Notes:         input.Notes,
		Terms:         input.Terms,
		PaymentTerms:  input.PaymentTerms,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		business, err := s.businessRepo.WithTx(tx).FindByID(ctx, userID, input.BusinessID)
		if err != nil {
			return dbError(err, "business")
		}
		customer, err := s.findCustomer(ctx, tx, userID, input.CustomerID)
		if err != nil {
			return err
		}

		invoiceRepo := s.invoiceRepo.WithTx(tx)
		if err := s.ensureNumberFree(ctx, invoiceRepo, userID, input.InvoiceNumber, 0); err != nil {
			return err
		}

		lines, err := s.buildLines(ctx, tx, userID, input.Items)
		if err != nil {
			return err
		}

		invoice.IsInterState = gst.IsInterState(business.State, customer.State)
		applyTotals(invoice, lines)
		invoice.Items = lines

		if err := invoiceRepo.Create(ctx, invoice); err != nil {
			return dbError(err, "invoice")
		}
		invoice.Business = business
		invoice.Customer = customer
		return nil
	})
	if err != nil {
		return nil, dbError(err, "invoice")
	}

	monitoring.InvoicesCreatedTotal.Inc()
	logger.Info("Invoice created", map[string]interface{}{
		"user_id":        userID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"total_amount":   invoice.TotalAmount.StringFixed(2),
		"inter_state":    invoice.IsInterState,
	})
	return invoice, nil
}

// Update changes the fields that are set and recomputes totals. Items, when
// given, replace the whole line list.
func (s *invoiceService) Update(ctx context.Context, userID uint, input dto.InvoiceUpdate) (*model.Invoice, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoiceRepo := s.invoiceRepo.WithTx(tx)

		invoice, err := invoiceRepo.FindByID(ctx, userID, input.ID)
		if err != nil {
			return dbError(err, "invoice")
		}

		business := invoice.Business
		if input.BusinessID != nil && *input.BusinessID != invoice.BusinessID {
			if business, err = s.businessRepo.WithTx(tx).FindByID(ctx, userID, *input.BusinessID); err != nil {
				return dbError(err, "business")
			}
			invoice.BusinessID = business.ID
		}
		customer := invoice.Customer
		if input.CustomerID != nil && *input.CustomerID != invoice.CustomerID {
			if customer, err = s.findCustomer(ctx, tx, userID, *input.CustomerID); err != nil {
				return err
			}
			invoice.CustomerID = customer.ID
		}

		if input.InvoiceNumber != nil && *input.InvoiceNumber != invoice.InvoiceNumber {
			if err := s.ensureNumberFree(ctx, invoiceRepo, userID, *input.InvoiceNumber, invoice.ID); err != nil {
				return err
			}
			invoice.InvoiceNumber = *input.InvoiceNumber
		}

		if err := applyDateUpdate(invoice, input.InvoiceDate, input.DueDate); err != nil {
			return err
		}
		if input.Status != nil {
			invoice.Status = model.InvoiceStatus(*input.Status)
		}
		setString(&invoice.Notes, input.Notes)
		setString(&invoice.Terms, input.Terms)
		setString(&invoice.PaymentTerms, input.PaymentTerms)

		lines := invoice.Items
		if input.Items != nil {
			if lines, err = s.buildLines(ctx, tx, userID, *input.Items); err != nil {
				return err
			}
		}

		invoice.IsInterState = false
		if business != nil && customer != nil {
			invoice.IsInterState = gst.IsInterState(business.State, customer.State)
		}
		applyTotals(invoice, lines)

		if err := invoiceRepo.Update(ctx, invoice); err != nil {
			return dbError(err, "invoice")
		}
		if input.Items != nil {
			if err := invoiceRepo.ReplaceItems(ctx, invoice.ID, lines); err != nil {
				return dbError(err, "invoice")
			}
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err, "invoice")
	}

	logger.Info("Invoice updated", map[string]interface{}{
		"user_id":    userID,
		"invoice_id": input.ID,
	})
	return s.Get(ctx, userID, input.ID)
}

func (s *invoiceService) UpdateStatus(ctx context.Context, userID, id uint, input dto.InvoiceStatusInput) (*model.Invoice, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, userID, id, model.InvoiceStatus(input.Status)); err != nil {
		return nil, dbError(err, "invoice")
	}

	logger.Info("Invoice status updated", map[string]interface{}{
		"user_id":    userID,
		"invoice_id": id,
		"status":     input.Status,
	})
	return s.Get(ctx, userID, id)
}

func (s *invoiceService) Delete(ctx context.Context, userID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.invoiceRepo.WithTx(tx).Delete(ctx, userID, id)
	})
	if err != nil {
		return dbError(err, "invoice")
	}

	logger.Info("Invoice deleted", map[string]interface{}{
		"user_id":    userID,
		"invoice_id": id,
	})
	return nil
}

func (s *invoiceService) Get(ctx context.Context, userID, id uint) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, dbError(err, "invoice")
	}
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, userID uint, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	if err := validate(&filter); err != nil {
		return nil, 0, err
	}
	invoices, total, err := s.invoiceRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, 0, dbError(err, "invoice")
	}
	return invoices, total, nil
}

func (s *invoiceService) ListAll(ctx context.Context, userID uint, filter dto.InvoiceFilter) ([]model.Invoice, error) {
	if err := validate(&filter); err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.ListAll(ctx, userID, filter)
	if err != nil {
		return nil, dbError(err, "invoice")
	}
	return invoices, nil
}

// Summary returns counts and amounts for every status label, zero-filled.
func (s *invoiceService) Summary(ctx context.Context, userID uint) (*InvoiceSummary, error) {
	totals, err := s.invoiceRepo.TotalsByStatus(ctx, userID)
	if err != nil {
		return nil, dbError(err, "invoice")
	}

	byStatus := make(map[model.InvoiceStatus]repository.StatusTotal, len(totals))
	for _, t := range totals {
		byStatus[t.Status] = t
	}

	summary := &InvoiceSummary{
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		OutstandingAmount: decimal.Zero,
		ByStatus:          make([]StatusBucket, 0, len(model.InvoiceStatuses)),
	}
	for _, status := range model.InvoiceStatuses {
		t := byStatus[status]
		amount := t.Amount.Round(2)
		summary.ByStatus = append(summary.ByStatus, StatusBucket{Status: status, Count: t.Count, Amount: amount})
		summary.TotalInvoices += t.Count

		switch status {
		case model.InvoiceStatusPaid:
			summary.PaidAmount = amount
		case model.InvoiceStatusSent:
			summary.OutstandingAmount = summary.OutstandingAmount.Add(amount)
		case model.InvoiceStatusOverdue:
			summary.OutstandingAmount = summary.OutstandingAmount.Add(amount)
			summary.OverdueCount = t.Count
		}
		if status != model.InvoiceStatusCancelled {
			summary.TotalAmount = summary.TotalAmount.Add(amount)
		}
	}
	return summary, nil
}

// Analytics reports monthly revenue and the top customers over the last
// months calendar months, current month included. Cancelled invoices and
// drafts are not revenue.
func (s *invoiceService) Analytics(ctx context.Context, userID uint, months int) (*InvoiceAnalytics, error) {
	if months <= 0 {
		months = defaultAnalyticsMonths
	}
	if months > maxAnalyticsMonths {
		return nil, invalidField("months", fmt.Sprintf("must be at most %d", maxAnalyticsMonths))
	}

	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	from := to.AddDate(0, -months, 0)

	invoices, err := s.invoiceRepo.ListBetween(ctx, userID, from, to)
	if err != nil {
		return nil, dbError(err, "invoice")
	}

	analytics := &InvoiceAnalytics{
		From:         from,
		To:           to,
		Monthly:      make([]MonthlyRevenue, months),
		TotalRevenue: decimal.Zero,
		TotalTax:     decimal.Zero,
	}
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := from.AddDate(0, i, 0).Format(monthLayout)
		analytics.Monthly[i] = MonthlyRevenue{
			Month:   month,
			Revenue: decimal.Zero,
			Tax:     decimal.Zero,
			Paid:    decimal.Zero,
		}
		index[month] = i
	}

	customers := map[uint]*CustomerRevenue{}
	for _, inv := range invoices {
		if !countsAsRevenue(inv.Status) {
			continue
		}
		i, ok := index[inv.InvoiceDate.UTC().Format(monthLayout)]
		if !ok {
			continue
		}

		bucket := &analytics.Monthly[i]
		bucket.Invoices++
		bucket.Revenue = bucket.Revenue.Add(inv.TotalAmount)
		bucket.Tax = bucket.Tax.Add(inv.TotalTax)
		if inv.Status == model.InvoiceStatusPaid {
			bucket.Paid = bucket.Paid.Add(inv.TotalAmount)
		}
		analytics.TotalRevenue = analytics.TotalRevenue.Add(inv.TotalAmount)
		analytics.TotalTax = analytics.TotalTax.Add(inv.TotalTax)

		c, ok := customers[inv.CustomerID]
		if !ok {
			c = &CustomerRevenue{CustomerID: inv.CustomerID, Revenue: decimal.Zero}
			if inv.Customer != nil {
				c.Name = inv.Customer.Name
			}
			customers[inv.CustomerID] = c
		}
		c.Invoices++
		c.Revenue = c.Revenue.Add(inv.TotalAmount)
	}

	analytics.TopCustomers = topCustomers(customers, topCustomersLimit)
	return analytics, nil
}

func countsAsRevenue(status model.InvoiceStatus) bool {
	switch status {
	case model.InvoiceStatusSent, model.InvoiceStatusPaid, model.InvoiceStatusOverdue:
		return true
	}
	return false
}

func topCustomers(customers map[uint]*CustomerRevenue, limit int) []CustomerRevenue {
	list := make([]CustomerRevenue, 0, len(customers))
	for _, c := range customers {
		list = append(list, *c)
	}
	sort.Slice(list, func(i, j int) bool {
		if cmp := list[i].Revenue.Cmp(list[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return list[i].CustomerID < list[j].CustomerID
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

func (s *invoiceService) findCustomer(ctx context.Context, tx *gorm.DB, userID, id uint) (*model.Customer, error) {
	customer, err := s.customerRepo.WithTx(tx).FindByID(ctx, userID, id)
	if err != nil {
		return nil, dbError(err, "customer")
	}
	return customer, nil
}

func (s *invoiceService) ensureNumberFree(ctx context.Context, repo repository.InvoiceRepository, userID uint, number string, excludeID uint) error {
	exists, err := repo.NumberExists(ctx, userID, number, excludeID)
	if err != nil {
		return dbError(err, "invoice")
	}
	if exists {
		logger.Warn("Duplicate invoice number", map[string]interface{}{
			"user_id":        userID,
			"invoice_number": number,
		})
		return apperrors.NewConflict(apperrors.InvoiceNumberExists, "invoice number already exists")
	}
	return nil
}

// buildLines resolves catalog references and copies their fields onto the
// invoice lines. Explicit values on the input win over the catalog.
func (s *invoiceService) buildLines(ctx context.Context, tx *gorm.DB, userID uint, inputs []dto.InvoiceItemInput) ([]model.InvoiceItem, error) {
	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		if in.ItemID != nil {
			ids = append(ids, *in.ItemID)
		}
	}
	catalog, err := s.itemRepo.WithTx(tx).FindByIDs(ctx, userID, ids)
	if err != nil {
		return nil, dbError(err, "item")
	}

	fields := map[string]string{}
	lines := make([]model.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		line := model.InvoiceItem{
			Position:        i + 1,
			Name:            in.Name,
			Description:     in.Description,
			HSNCode:         in.HSNCode,
			Unit:            in.Unit,
			Quantity:        in.Quantity,
			DiscountPercent: in.DiscountPercent,
			DiscountAmount:  in.DiscountAmount,
		}

		if in.ItemID != nil {
			item, ok := catalog[*in.ItemID]
			if !ok {
				fields[fmt.Sprintf("items[%d].item_id", i)] = "unknown item"
				continue
			}
			id := item.ID
			line.ItemID = &id
			line.UnitPrice = item.UnitPrice
			line.TaxRate = item.TaxRate
			if line.Name == "" {
				line.Name = item.Name
			}
			if line.Description == "" {
				line.Description = item.Description
			}
			if line.HSNCode == "" {
				line.HSNCode = item.HSNCode
			}
			if line.Unit == "" {
				line.Unit = item.Unit
			}
		} else if in.UnitPrice == nil {
			fields[fmt.Sprintf("items[%d].unit_price", i)] = "is required when item_id is empty"
			continue
		}

		if in.UnitPrice != nil {
			line.UnitPrice = *in.UnitPrice
		}
		if in.TaxRate != nil {
			line.TaxRate = *in.TaxRate
		}
		if line.Unit == "" {
			line.Unit = "pcs"
		}
		lines = append(lines, line)
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}
	return lines, nil
}

// applyTotals runs the calculator over lines and writes both the per-line
// and the invoice-level figures.
func applyTotals(invoice *model.Invoice, lines []model.InvoiceItem) {
	inputs := make([]gst.LineItem, len(lines))
	for i, l := range lines {
		inputs[i] = gst.LineItem{
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			TaxRate:         l.TaxRate,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
		}
	}

	calc := gst.Calculate(inputs, invoice.IsInterState)
	for i := range lines {
		r := calc.Lines[i]
		lines[i].LineGross = r.Gross
		lines[i].LineDiscount = r.Discount
		lines[i].LineTaxable = r.Taxable
		lines[i].LineTax = r.Tax
		lines[i].LineTotal = r.Total
	}

	invoice.Subtotal = calc.Subtotal
	invoice.TotalDiscount = calc.TotalDiscount
	invoice.TotalTax = calc.TotalTax
	invoice.CGSTAmount = calc.CGST
	invoice.SGSTAmount = calc.SGST
	invoice.IGSTAmount = calc.IGST
	invoice.RoundOff = calc.RoundOff
	invoice.TotalAmount = calc.TotalAmount
}

func parseInvoiceDates(invoiceDate, dueDate string) (time.Time, *time.Time, error) {
	issued, err := time.Parse(dto.DateLayout, invoiceDate)
	if err != nil {
		return time.Time{}, nil, invalidField("invoice_date", "must be a date in YYYY-MM-DD format")
	}
	if dueDate == "" {
		return issued, nil, nil
	}
	due, err := time.Parse(dto.DateLayout, dueDate)
	if err != nil {
		return time.Time{}, nil, invalidField("due_date", "must be a date in YYYY-MM-DD format")
	}
	if due.Before(issued) {
		return time.Time{}, nil, invalidField("due_date", "must not be before invoice_date")
	}
	return issued, &due, nil
}

// applyDateUpdate handles the optional date fields of an update. An empty
// due date clears it.
func applyDateUpdate(invoice *model.Invoice, invoiceDate, dueDate *string) error {
	issued := invoice.InvoiceDate.Format(dto.DateLayout)
	if invoiceDate != nil {
		issued = *invoiceDate
	}
	due := ""
	if invoice.DueDate != nil {
		due = invoice.DueDate.Format(dto.DateLayout)
	}
	if dueDate != nil {
		due = *dueDate
	}

	parsedIssued, parsedDue, err := parseInvoiceDates(issued, due)
	if err != nil {
		return err
	}
	invoice.InvoiceDate = parsedIssued
	invoice.DueDate = parsedDue
	return nil
}
