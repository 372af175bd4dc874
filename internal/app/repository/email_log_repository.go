package repository

import (
	"context"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"gorm.io/gorm"
)

var emailLogColumns = []string{
	"status", "error_message", "provider_id", "sent_at", "updated_at",
}

type EmailLogRepository interface {
	Create(ctx context.Context, log *model.EmailLog) error
	FindByID(ctx context.Context, userID, id uint) (*model.EmailLog, error)
	ListByInvoice(ctx context.Context, userID, invoiceID uint) ([]model.EmailLog, error)
	UpdateOutcome(ctx context.Context, log *model.EmailLog) error
	IncrementRetry(ctx context.Context, userID, id uint) error
}

type emailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Create(ctx context.Context, log *model.EmailLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		logger.Error("Failed to create email log", err, map[string]interface{}{
			"invoice_id": log.InvoiceID,
		})
		return err
	}
	return nil
}

func (r *emailLogRepository) FindByID(ctx context.Context, userID, id uint) (*model.EmailLog, error) {
	var log model.EmailLog
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *emailLogRepository) ListByInvoice(ctx context.Context, userID, invoiceID uint) ([]model.EmailLog, error) {
	var logs []model.EmailLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND invoice_id = ?", userID, invoiceID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		logger.Error("Failed to list email logs", err, map[string]interface{}{
			"invoice_id": invoiceID,
		})
		return nil, err
	}
	return logs, nil
}

// UpdateOutcome writes the result of a delivery attempt.
func (r *emailLogRepository) UpdateOutcome(ctx context.Context, log *model.EmailLog) error {
	result := r.db.WithContext(ctx).
		Model(log).
		Where("user_id = ?", log.UserID).
		Select(emailLogColumns).
		Updates(log)
	if result.Error != nil {
		logger.Error("Failed to update email log", result.Error, map[string]interface{}{
			"email_log_id": log.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementRetry bumps retry_count only while it is below max_retries.
// It returns gorm.ErrRecordNotFound when the row is missing or exhausted.
func (r *emailLogRepository) IncrementRetry(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Model(&model.EmailLog{}).
		Where("id = ? AND user_id = ? AND retry_count < max_retries", id, userID).
		Update("retry_count", gorm.Expr("retry_count + 1"))
	if result.Error != nil {
		logger.Error("Failed to increment email retry count", result.Error, map[string]interface{}{
			"email_log_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
