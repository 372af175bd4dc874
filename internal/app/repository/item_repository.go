package repository

import (
	"context"
	"strings"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"gorm.io/gorm"
)

var itemColumns = []string{
	"name", "description", "hsn_code", "unit_price", "tax_rate", "unit",
	"category", "updated_at",
}

type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	Create(ctx context.Context, item *model.Item) error
	CreateBatch(ctx context.Context, items []model.Item) error
	FindByID(ctx context.Context, userID, id uint) (*model.Item, error)
	FindByIDs(ctx context.Context, userID uint, ids []uint) (map[uint]model.Item, error)
	List(ctx context.Context, userID uint, filter dto.ListFilter) ([]model.Item, int64, error)
	Update(ctx context.Context, item *model.Item) error
	Deactivate(ctx context.Context, userID, id uint) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) WithTx(tx *gorm.DB) ItemRepository {
	return &itemRepository{db: tx}
}

func (r *itemRepository) owned(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true)
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		logger.Error("Failed to create item in database", err, map[string]interface{}{
			"user_id": item.UserID,
		})
		return err
	}

	logger.Debug("Item created in database", map[string]interface{}{
		"item_id": item.ID,
		"user_id": item.UserID,
	})
	return nil
}

func (r *itemRepository) CreateBatch(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(items, 100).Error; err != nil {
		logger.Error("Failed to create items in batch", err, map[string]interface{}{
			"count": len(items),
		})
		return err
	}
	logger.Debug("Items created in batch", map[string]interface{}{
		"count": len(items),
	})
	return nil
}

func (r *itemRepository) FindByID(ctx context.Context, userID, id uint) (*model.Item, error) {
	var item model.Item
	if err := r.owned(ctx, userID).Where("id = ?", id).First(&item).Error; err != nil {
		logger.Debug("Item not found", map[string]interface{}{
			"user_id": userID,
			"item_id": id,
		})
		return nil, err
	}
	return &item, nil
}

// FindByIDs returns the owner's active items keyed by id. Missing ids are
// simply absent from the map.
func (r *itemRepository) FindByIDs(ctx context.Context, userID uint, ids []uint) (map[uint]model.Item, error) {
	found := make(map[uint]model.Item, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var items []model.Item
	if err := r.owned(ctx, userID).Where("id IN ?", ids).Find(&items).Error; err != nil {
		logger.Error("Failed to find items by ids", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	for _, item := range items {
		found[item.ID] = item
	}
	return found, nil
}

func (r *itemRepository) List(ctx context.Context, userID uint, filter dto.ListFilter) ([]model.Item, int64, error) {
	query := r.owned(ctx, userID).Model(&model.Item{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR hsn_code LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	var items []model.Item
	err := query.Order("name ASC").Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to list items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	result := r.owned(ctx, item.UserID).
		Model(item).
		Select(itemColumns).
		Updates(item)
	if result.Error != nil {
		logger.Error("Failed to update item", result.Error, map[string]interface{}{
			"item_id": item.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepository) Deactivate(ctx context.Context, userID, id uint) error {
	result := r.owned(ctx, userID).Model(&model.Item{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate item", result.Error, map[string]interface{}{
			"item_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
