package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var invoiceColumns = []string{
	"business_id", "customer_id", "invoice_number", "invoice_date", "due_date",
	"status", "is_inter_state", "subtotal", "total_discount", "total_tax",
	"cgst_amount", "sgst_amount", "igst_amount", "round_off", "total_amount",
	"notes", "terms", "payment_terms", "updated_at",
}

// StatusTotal aggregates one status bucket for the dashboard.
type StatusTotal struct {
	Status model.InvoiceStatus `gorm:"column:status"`
	Count  int64               `gorm:"column:count"`
	Amount decimal.Decimal     `gorm:"column:amount"`
}

type InvoiceRepository interface {
	WithTx(tx *gorm.DB) InvoiceRepository
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, userID, id uint) (*model.Invoice, error)
	NumberExists(ctx context.Context, userID uint, number string, excludeID uint) (bool, error)
	List(ctx context.Context, userID uint, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	ListAll(ctx context.Context, userID uint, filter dto.InvoiceFilter) ([]model.Invoice, error)
	ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Invoice, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	ReplaceItems(ctx context.Context, invoiceID uint, items []model.InvoiceItem) error
	UpdateStatus(ctx context.Context, userID, id uint, status model.InvoiceStatus) error
	Delete(ctx context.Context, userID, id uint) error
	TotalsByStatus(ctx context.Context, userID uint) ([]StatusTotal, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) WithTx(tx *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: tx}
}

func (r *invoiceRepository) owned(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Where("invoices.user_id = ?", userID)
}

// Create inserts the invoice and its items. Business and Customer are
// references only and are never written through the invoice.
func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	logger.Debug("Creating invoice in database", map[string]interface{}{
		"user_id":        invoice.UserID,
		"invoice_number": invoice.InvoiceNumber,
		"items":          len(invoice.Items),
	})

	if err := r.db.WithContext(ctx).Omit("Business", "Customer").Create(invoice).Error; err != nil {
		logger.Error("Failed to create invoice in database", err, map[string]interface{}{
			"user_id":        invoice.UserID,
			"invoice_number": invoice.InvoiceNumber,
		})
		return err
	}

	logger.Debug("Invoice created in database", map[string]interface{}{
		"invoice_id": invoice.ID,
	})
	return nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, userID, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.owned(ctx, userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Business").
		Preload("Customer").
		Where("invoices.id = ?", id).
		First(&invoice).Error
	if err != nil {
		logger.Debug("Invoice not found", map[string]interface{}{
			"user_id":    userID,
			"invoice_id": id,
		})
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) NumberExists(ctx context.Context, userID uint, number string, excludeID uint) (bool, error) {
	query := r.owned(ctx, userID).Model(&model.Invoice{}).Where("invoice_number = ?", number)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check invoice number", err, map[string]interface{}{
			"user_id": userID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *invoiceRepository) filtered(ctx context.Context, userID uint, filter dto.InvoiceFilter) *gorm.DB {
	query := r.owned(ctx, userID).Model(&model.Invoice{})
	if filter.Status != "" {
		query = query.Where("invoices.status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		query = query.Where("invoices.customer_id = ?", filter.CustomerID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(invoices.invoice_number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return query
}

// List returns one page of invoices, newest first, with the customer loaded.
func (r *invoiceRepository) List(ctx context.Context, userID uint, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	query := r.filtered(ctx, userID, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count invoices", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	var invoices []model.Invoice
	err := query.Preload("Customer").
		Order("invoices.invoice_date DESC").
		Order("invoices.id DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&invoices).Error
	if err != nil {
		logger.Error("Failed to list invoices", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	logger.Debug("Invoices listed", map[string]interface{}{
		"user_id": userID,
		"count":   len(invoices),
		"total":   total,
	})
	return invoices, total, nil
}

// ListAll returns every matching invoice without paging, for exports.
func (r *invoiceRepository) ListAll(ctx context.Context, userID uint, filter dto.InvoiceFilter) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.filtered(ctx, userID, filter).
		Preload("Customer").
		Order("invoices.invoice_date DESC").
		Order("invoices.id DESC").
		Find(&invoices).Error
	if err != nil {
		logger.Error("Failed to list invoices for export", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return invoices, nil
}

// ListBetween returns invoices dated in [from, to), customer loaded.
func (r *invoiceRepository) ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.owned(ctx, userID).
		Preload("Customer").
		Where("invoices.invoice_date >= ? AND invoices.invoice_date < ?", from, to).
		Order("invoices.invoice_date ASC").
		Find(&invoices).Error
	if err != nil {
		logger.Error("Failed to list invoices by date", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	result := r.owned(ctx, invoice.UserID).
		Model(invoice).
		Select(invoiceColumns).
		Omit("Business", "Customer", "Items").
		Updates(invoice)
	if result.Error != nil {
		logger.Error("Failed to update invoice", result.Error, map[string]interface{}{
			"invoice_id": invoice.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Invoice updated", map[string]interface{}{
		"invoice_id": invoice.ID,
	})
	return nil
}

// ReplaceItems swaps the whole line list. Callers check ownership first.
func (r *invoiceRepository) ReplaceItems(ctx context.Context, invoiceID uint, items []model.InvoiceItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceItem{}).Error; err != nil {
		logger.Error("Failed to delete invoice items", err, map[string]interface{}{
			"invoice_id": invoiceID,
		})
		return err
	}

	for i := range items {
		items[i].ID = 0
		items[i].InvoiceID = invoiceID
	}
	if len(items) == 0 {
		return nil
	}
	if err := db.Create(&items).Error; err != nil {
		logger.Error("Failed to create invoice items", err, map[string]interface{}{
			"invoice_id": invoiceID,
		})
		return err
	}
	return nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, userID, id uint, status model.InvoiceStatus) error {
	result := r.owned(ctx, userID).Model(&model.Invoice{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update invoice status", result.Error, map[string]interface{}{
			"invoice_id": id,
			"status":     status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the invoice, its items and its email logs.
func (r *invoiceRepository) Delete(ctx context.Context, userID, id uint) error {
	db := r.db.WithContext(ctx)

	var invoice model.Invoice
	if err := db.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&invoice).Error; err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", id).Delete(&model.InvoiceItem{}).Error; err != nil {
		logger.Error("Failed to delete invoice items", err, map[string]interface{}{
			"invoice_id": id,
		})
		return err
	}
	if err := db.Where("invoice_id = ? AND user_id = ?", id, userID).Delete(&model.EmailLog{}).Error; err != nil {
		logger.Error("Failed to delete invoice email logs", err, map[string]interface{}{
			"invoice_id": id,
		})
		return err
	}
	if err := db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Invoice{}).Error; err != nil {
		logger.Error("Failed to delete invoice", err, map[string]interface{}{
			"invoice_id": id,
		})
		return err
	}

	logger.Debug("Invoice deleted", map[string]interface{}{
		"invoice_id": id,
	})
	return nil
}

func (r *invoiceRepository) TotalsByStatus(ctx context.Context, userID uint) ([]StatusTotal, error) {
	var totals []StatusTotal
	err := r.owned(ctx, userID).Model(&model.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Group("status").
		Scan(&totals).Error
	if err != nil {
		logger.Error("Failed to aggregate invoices by status", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return totals, nil
}

// MarkOverdue flags sent invoices whose due date has passed, for every owner.
func (r *invoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", model.InvoiceStatusSent, now).
		Update("status", model.InvoiceStatusOverdue)
	if result.Error != nil {
		logger.Error("Failed to mark overdue invoices", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
