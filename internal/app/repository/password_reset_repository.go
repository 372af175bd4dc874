package repository

import (
	"context"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	WithTx(tx *gorm.DB) PasswordResetRepository
	Create(ctx context.Context, reset *model.PasswordReset) error
	FindByToken(ctx context.Context, token string) (*model.PasswordReset, error)
	MarkAsUsed(ctx context.Context, id uint, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) WithTx(tx *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: tx}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *model.PasswordReset) error {
	if err := r.db.WithContext(ctx).Create(reset).Error; err != nil {
		logger.Error("Failed to create password reset in database", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	logger.Debug("Password reset created in database", map[string]interface{}{
		"id":      reset.ID,
		"user_id": reset.UserID,
	})
	return nil
}

func (r *passwordResetRepository) FindByToken(ctx context.Context, token string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error; err != nil {
		logger.Debug("Password reset not found by token", nil)
		return nil, err
	}
	return &reset, nil
}

// MarkAsUsed only succeeds once per token.
func (r *passwordResetRepository) MarkAsUsed(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if result.Error != nil {
		logger.Error("Failed to mark password reset as used", result.Error, map[string]interface{}{
			"id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *passwordResetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&model.PasswordReset{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password resets", result.Error)
		return 0, result.Error
	}
	logger.Debug("Expired password resets deleted", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
