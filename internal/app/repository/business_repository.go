package repository

import (
	"context"
	"errors"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"gorm.io/gorm"
)

// businessColumns are written by Update. Zero values are written too.
var businessColumns = []string{
	"name", "gst_number", "pan_number", "address", "city", "state",
	"pincode", "email", "phone", "is_primary", "updated_at",
}

// BusinessRepository reads and writes one owner's businesses.
// Every query is filtered on user_id; rows of other owners are invisible.
type BusinessRepository interface {
	WithTx(tx *gorm.DB) BusinessRepository
	Create(ctx context.Context, business *model.Business) error
	FindByID(ctx context.Context, userID, id uint) (*model.Business, error)
	FindPrimary(ctx context.Context, userID uint) (*model.Business, error)
	List(ctx context.Context, userID uint) ([]model.Business, error)
	CountActive(ctx context.Context, userID uint) (int64, error)
	Update(ctx context.Context, business *model.Business) error
	ClearPrimary(ctx context.Context, userID uint) error
	SetPrimary(ctx context.Context, userID, id uint) error
	Deactivate(ctx context.Context, userID, id uint) error
	PromoteOldest(ctx context.Context, userID uint) (uint, error)
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) WithTx(tx *gorm.DB) BusinessRepository {
	return &businessRepository{db: tx}
}

func (r *businessRepository) owned(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true)
}

func (r *businessRepository) Create(ctx context.Context, business *model.Business) error {
	logger.Debug("Creating business in database", map[string]interface{}{
		"user_id":    business.UserID,
		"is_primary": business.IsPrimary,
	})

	if err := r.db.WithContext(ctx).Create(business).Error; err != nil {
		logger.Error("Failed to create business in database", err, map[string]interface{}{
			"user_id": business.UserID,
		})
		return err
	}

	logger.Debug("Business created in database", map[string]interface{}{
		"business_id": business.ID,
	})
	return nil
}

func (r *businessRepository) FindByID(ctx context.Context, userID, id uint) (*model.Business, error) {
	var business model.Business
	if err := r.owned(ctx, userID).Where("id = ?", id).First(&business).Error; err != nil {
		logger.Debug("Business not found", map[string]interface{}{
			"user_id":     userID,
			"business_id": id,
		})
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindPrimary(ctx context.Context, userID uint) (*model.Business, error) {
	var business model.Business
	if err := r.owned(ctx, userID).Where("is_primary = ?", true).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// List returns active businesses, primary first then oldest first.
func (r *businessRepository) List(ctx context.Context, userID uint) ([]model.Business, error) {
	var businesses []model.Business
	err := r.owned(ctx, userID).
		Order("is_primary DESC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&businesses).Error
	if err != nil {
		logger.Error("Failed to list businesses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Businesses listed", map[string]interface{}{
		"user_id": userID,
		"count":   len(businesses),
	})
	return businesses, nil
}

func (r *businessRepository) CountActive(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.owned(ctx, userID).Model(&model.Business{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count businesses", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

func (r *businessRepository) Update(ctx context.Context, business *model.Business) error {
	result := r.owned(ctx, business.UserID).
		Model(business).
		Select(businessColumns).
		Updates(business)
	if result.Error != nil {
		logger.Error("Failed to update business", result.Error, map[string]interface{}{
			"business_id": business.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Business updated", map[string]interface{}{
		"business_id": business.ID,
	})
	return nil
}

func (r *businessRepository) ClearPrimary(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Model(&model.Business{}).
		Where("user_id = ? AND is_primary = ?", userID, true).
		Update("is_primary", false).Error
	if err != nil {
		logger.Error("Failed to clear primary business", err, map[string]interface{}{
			"user_id": userID,
		})
	}
	return err
}

func (r *businessRepository) SetPrimary(ctx context.Context, userID, id uint) error {
	result := r.owned(ctx, userID).Model(&model.Business{}).
		Where("id = ?", id).
		Update("is_primary", true)
	if result.Error != nil {
		logger.Error("Failed to set primary business", result.Error, map[string]interface{}{
			"user_id":     userID,
			"business_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate soft deletes a business. A deactivated business is never primary.
func (r *businessRepository) Deactivate(ctx context.Context, userID, id uint) error {
	result := r.owned(ctx, userID).Model(&model.Business{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"is_primary": false,
		})
	if result.Error != nil {
		logger.Error("Failed to deactivate business", result.Error, map[string]interface{}{
			"business_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Business deactivated", map[string]interface{}{
		"business_id": id,
	})
	return nil
}

// PromoteOldest makes the owner's oldest active business primary and returns
// its id. It returns 0 when the owner has no active business left.
func (r *businessRepository) PromoteOldest(ctx context.Context, userID uint) (uint, error) {
	var business model.Business
	err := r.owned(ctx, userID).
		Order("created_at ASC").
		Order("id ASC").
		First(&business).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if err := r.SetPrimary(ctx, userID, business.ID); err != nil {
		return 0, err
	}

	logger.Debug("Business promoted to primary", map[string]interface{}{
		"user_id":     userID,
		"business_id": business.ID,
	})
	return business.ID, nil
}
