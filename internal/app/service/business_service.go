package service

import (
	"context"
	"errors"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"gorm.io/gorm"
)

type BusinessService interface {
	Create(ctx context.Context, userID uint, input dto.BusinessInput) (*model.Business, error)
	Update(ctx context.Context, userID uint, input dto.BusinessUpdate) (*model.Business, error)
	SetPrimary(ctx context.Context, userID, id uint) (*model.Business, error)
	Deactivate(ctx context.Context, userID, id uint) error
	Get(ctx context.Context, userID, id uint) (*model.Business, error)
	List(ctx context.Context, userID uint) ([]model.Business, error)
}

type businessService struct {
	db   *gorm.DB
	repo repository.BusinessRepository
}

func NewBusinessService(db *gorm.DB, repo repository.BusinessRepository) BusinessService {
	return &businessService{db: db, repo: repo}
}

// Create stores a business. The owner's first business is always primary,
// and a new primary demotes the previous one in the same transaction.
func (s *businessService) Create(ctx context.Context, userID uint, input dto.BusinessInput) (*model.Business, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	business := &model.Business{
		UserID:    userID,
		Name:      input.Name,
		GSTNumber: input.GSTNumber,
		PANNumber: input.PANNumber,
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		Pincode:   input.Pincode,
		Email:     input.Email,
		Phone:     input.Phone,
		IsPrimary: input.IsPrimary,
		IsActive:  true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountActive(ctx, userID)
		if err != nil {
			return err
		}
		if count == 0 {
			business.IsPrimary = true
		}
		if business.IsPrimary && count > 0 {
			if err := repo.ClearPrimary(ctx, userID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, business)
	})
	if err != nil {
		return nil, dbError(err, "business")
	}

	logger.Info("Business created", map[string]interface{}{
		"user_id":     userID,
		"business_id": business.ID,
		"is_primary":  business.IsPrimary,
	})
	return business, nil
}

func (s *businessService) Update(ctx context.Context, userID uint, input dto.BusinessUpdate) (*model.Business, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	var business *model.Business
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindByID(ctx, userID, input.ID)
		if err != nil {
			return err
		}
		business = found
		if business.IsPrimary && input.IsPrimary != nil && !*input.IsPrimary {
			return invalidField("is_primary", "the primary business cannot be unset; make another business primary instead")
		}
		applyBusinessUpdate(business, input)

		if input.IsPrimary != nil && *input.IsPrimary {
			if err := repo.ClearPrimary(ctx, userID); err != nil {
				return err
			}
		}
		return repo.Update(ctx, business)
	})
	if err != nil {
		return nil, dbError(err, "business")
	}

	logger.Info("Business updated", map[string]interface{}{
		"user_id":     userID,
		"business_id": business.ID,
	})
	return business, nil
}

func applyBusinessUpdate(b *model.Business, in dto.BusinessUpdate) {
	if in.Name != nil {
		b.Name = *in.Name
	}
	if in.GSTNumber != nil {
		b.GSTNumber = *in.GSTNumber
	}
	if in.PANNumber != nil {
		b.PANNumber = *in.PANNumber
	}
	if in.Address != nil {
		b.Address = *in.Address
	}
	if in.City != nil {
		b.City = *in.City
	}
	if in.State != nil {
		b.State = *in.State
	}
	if in.Pincode != nil {
		b.Pincode = *in.Pincode
	}
	if in.Email != nil {
		b.Email = *in.Email
	}
	if in.Phone != nil {
		b.Phone = *in.Phone
	}
	if in.IsPrimary != nil {
		b.IsPrimary = *in.IsPrimary
	}
}

// SetPrimary makes id the owner's only primary business.
func (s *businessService) SetPrimary(ctx context.Context, userID, id uint) (*model.Business, error) {
	var business *model.Business
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, userID, id); err != nil {
			return err
		}
		if err := repo.ClearPrimary(ctx, userID); err != nil {
			return err
		}
		if err := repo.SetPrimary(ctx, userID, id); err != nil {
			return err
		}

		found, err := repo.FindByID(ctx, userID, id)
		business = found
		return err
	})
	if err != nil {
		return nil, dbError(err, "business")
	}

	logger.Info("Primary business changed", map[string]interface{}{
		"user_id":     userID,
		"business_id": id,
	})
	return business, nil
}

// Deactivate soft deletes. Existing invoices keep pointing at the row.
// When the owner is left without a primary, the oldest remaining active
// business takes over in the same transaction.
func (s *businessService) Deactivate(ctx context.Context, userID, id uint) error {
	var promoted uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.Deactivate(ctx, userID, id); err != nil {
			return err
		}
		_, err := repo.FindPrimary(ctx, userID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		promoted, err = repo.PromoteOldest(ctx, userID)
		return err
	})
	if err != nil {
		return dbError(err, "business")
	}

	fields := map[string]interface{}{
		"user_id":     userID,
		"business_id": id,
	}
	if promoted != 0 {
		fields["promoted_business_id"] = promoted
	}
	logger.Info("Business deactivated", fields)
	return nil
}

func (s *businessService) Get(ctx context.Context, userID, id uint) (*model.Business, error) {
	business, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, dbError(err, "business")
	}
	return business, nil
}

func (s *businessService) List(ctx context.Context, userID uint) ([]model.Business, error) {
	businesses, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, dbError(err, "business")
	}
	return businesses, nil
}
