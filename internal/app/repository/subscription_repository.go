package repository

import (
	"context"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"gorm.io/gorm"
)

var subscriptionColumns = []string{
	"plan_name", "status", "price", "currency", "billing_cycle",
	"razorpay_order_id", "razorpay_payment_id", "razorpay_subscription_id",
	"receipt", "is_active", "started_at", "expires_at", "cancelled_at", "updated_at",
}

type SubscriptionRepository interface {
	WithTx(tx *gorm.DB) SubscriptionRepository
	Create(ctx context.Context, sub *model.Subscription) error
	FindByID(ctx context.Context, userID, id uint) (*model.Subscription, error)
	FindLatest(ctx context.Context, userID uint) (*model.Subscription, error)
	FindLatestActive(ctx context.Context, userID uint) (*model.Subscription, error)
	FindByOrderID(ctx context.Context, userID uint, orderID string) (*model.Subscription, error)
	PaymentRecorded(ctx context.Context, paymentID string) (bool, error)
	Update(ctx context.Context, sub *model.Subscription) error
	ExpireDue(ctx context.Context, now time.Time) ([]uint, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: tx}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	logger.Debug("Creating subscription in database", map[string]interface{}{
		"user_id":  sub.UserID,
		"order_id": sub.RazorpayOrderID,
	})

	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		logger.Error("Failed to create subscription in database", err, map[string]interface{}{
			"user_id": sub.UserID,
		})
		return err
	}
	return nil
}

func (r *subscriptionRepository) FindByID(ctx context.Context, userID, id uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindLatest returns the owner's most recently created subscription row.
func (r *subscriptionRepository) FindLatest(ctx context.Context, userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindLatestActive returns the newest row that is flagged active. Plan checks
// read this row so a pending checkout never hides a paid subscription.
func (r *subscriptionRepository) FindLatestActive(ctx context.Context, userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND is_active = ?", userID, model.SubscriptionStatusActive, true).
		Order("created_at DESC").
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByOrderID(ctx context.Context, userID uint, orderID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND razorpay_order_id = ?", userID, orderID).
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		logger.Debug("Subscription not found by order", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) PaymentRecorded(ctx context.Context, paymentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("razorpay_payment_id = ?", paymentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *model.Subscription) error {
	result := r.db.WithContext(ctx).
		Model(sub).
		Where("user_id = ?", sub.UserID).
		Select(subscriptionColumns).
		Updates(sub)
	if result.Error != nil {
		logger.Error("Failed to update subscription", result.Error, map[string]interface{}{
			"subscription_id": sub.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Subscription updated", map[string]interface{}{
		"subscription_id": sub.ID,
		"status":          sub.Status,
	})
	return nil
}

// ExpireDue marks active rows past their expiry as expired and returns the
// affected owners.
func (r *subscriptionRepository) ExpireDue(ctx context.Context, now time.Time) ([]uint, error) {
	var userIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		due := tx.Model(&model.Subscription{}).
			Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.SubscriptionStatusActive, now)
		if err := due.Session(&gorm.Session{}).Distinct().Pluck("user_id", &userIDs).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		return due.Session(&gorm.Session{}).Updates(map[string]interface{}{
			"status":    model.SubscriptionStatusExpired,
			"is_active": false,
		}).Error
	})
	if err != nil {
		logger.Error("Failed to expire subscriptions", err)
		return nil, err
	}
	return userIDs, nil
}
