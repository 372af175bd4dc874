package service

import (
	"context"
	"fmt"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/validation"
)

type ItemService interface {
	Create(ctx context.Context, userID uint, input dto.ItemInput) (*model.Item, error)
	BulkCreate(ctx context.Context, userID uint, inputs []dto.ItemInput) (int, error)
	Update(ctx context.Context, userID uint, input dto.ItemUpdate) (*model.Item, error)
	Deactivate(ctx context.Context, userID, id uint) error
	Get(ctx context.Context, userID, id uint) (*model.Item, error)
	List(ctx context.Context, userID uint, filter dto.ListFilter) ([]model.Item, int64, error)
}

type itemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

func newItem(userID uint, input dto.ItemInput) model.Item {
	return model.Item{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		HSNCode:     input.HSNCode,
		UnitPrice:   input.UnitPrice,
		TaxRate:     input.TaxRate,
		Unit:        input.Unit,
		Category:    input.Category,
		IsActive:    true,
	}
}

func (s *itemService) Create(ctx context.Context, userID uint, input dto.ItemInput) (*model.Item, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	item := newItem(userID, input)
	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, dbError(err, "item")
	}

	logger.Info("Item created", map[string]interface{}{
		"user_id": userID,
		"item_id": item.ID,
	})
	return &item, nil
}

// BulkCreate validates every row first and writes nothing unless all pass.
// Field errors are keyed by row, e.g. "rows[3].hsn_code".
func (s *itemService) BulkCreate(ctx context.Context, userID uint, inputs []dto.ItemInput) (int, error) {
	if len(inputs) == 0 {
		return 0, invalidField("rows", "at least one row is required")
	}

	fields := map[string]string{}
	items := make([]model.Item, 0, len(inputs))
	for i := range inputs {
		if err := validation.Struct(&inputs[i]); err != nil {
			if verrs, ok := err.(*validation.Errors); ok {
				for k, v := range verrs.Fields {
					fields[fmt.Sprintf("rows[%d].%s", i, k)] = v
				}
				continue
			}
			return 0, apperrors.NewValidation(map[string]string{"rows": err.Error()})
		}
		items = append(items, newItem(userID, inputs[i]))
	}
	if len(fields) > 0 {
		return 0, apperrors.NewValidation(fields)
	}

	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return 0, dbError(err, "item")
	}

	logger.Info("Items imported", map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
	})
	return len(items), nil
}

func (s *itemService) Update(ctx context.Context, userID uint, input dto.ItemUpdate) (*model.Item, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, userID, input.ID)
	if err != nil {
		return nil, dbError(err, "item")
	}

	setString(&item.Name, input.Name)
	setString(&item.Description, input.Description)
	setString(&item.HSNCode, input.HSNCode)
	setString(&item.Unit, input.Unit)
	setString(&item.Category, input.Category)
	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	}
	if input.TaxRate != nil {
		item.TaxRate = *input.TaxRate
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, dbError(err, "item")
	}
	return item, nil
}

func (s *itemService) Deactivate(ctx context.Context, userID, id uint) error {
	if err := s.repo.Deactivate(ctx, userID, id); err != nil {
		return dbError(err, "item")
	}
	return nil
}

func (s *itemService) Get(ctx context.Context, userID, id uint) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, dbError(err, "item")
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, userID uint, filter dto.ListFilter) ([]model.Item, int64, error) {
	if err := validate(&filter); err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, 0, dbError(err, "item")
	}
	return items, total, nil
}
