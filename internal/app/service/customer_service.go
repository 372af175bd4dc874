package service

import (
	"context"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
)

type CustomerService interface {
	Create(ctx context.Context, userID uint, input dto.CustomerInput) (*model.Customer, error)
	Update(ctx context.Context, userID uint, input dto.CustomerUpdate) (*model.Customer, error)
	Deactivate(ctx context.Context, userID, id uint) error
	Get(ctx context.Context, userID, id uint) (*model.Customer, error)
	List(ctx context.Context, userID uint, filter dto.ListFilter) ([]model.Customer, int64, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, userID uint, input dto.CustomerInput) (*model.Customer, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	customer := &model.Customer{
		UserID:       userID,
		Name:         input.Name,
		GSTNumber:    input.GSTNumber,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		City:         input.City,
		State:        input.State,
		Pincode:      input.Pincode,
		CustomerType: model.CustomerType(input.CustomerType),
		Notes:        input.Notes,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, dbError(err, "customer")
	}

	logger.Info("Customer created", map[string]interface{}{
		"user_id":     userID,
		"customer_id": customer.ID,
	})
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, userID uint, input dto.CustomerUpdate) (*model.Customer, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	customer, err := s.repo.FindByID(ctx, userID, input.ID)
	if err != nil {
		return nil, dbError(err, "customer")
	}

	setString(&customer.Name, input.Name)
	setString(&customer.GSTNumber, input.GSTNumber)
	setString(&customer.Email, input.Email)
	setString(&customer.Phone, input.Phone)
	setString(&customer.Address, input.Address)
	setString(&customer.City, input.City)
	setString(&customer.State, input.State)
	setString(&customer.Pincode, input.Pincode)
	setString(&customer.Notes, input.Notes)
	if input.CustomerType != nil && *input.CustomerType != "" {
		customer.CustomerType = model.CustomerType(*input.CustomerType)
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, dbError(err, "customer")
	}
	return customer, nil
}

func (s *customerService) Deactivate(ctx context.Context, userID, id uint) error {
	if err := s.repo.Deactivate(ctx, userID, id); err != nil {
		return dbError(err, "customer")
	}
	logger.Info("Customer deactivated", map[string]interface{}{
		"user_id":     userID,
		"customer_id": id,
	})
	return nil
}

func (s *customerService) Get(ctx context.Context, userID, id uint) (*model.Customer, error) {
	customer, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, dbError(err, "customer")
	}
	return customer, nil
}

func (s *customerService) List(ctx context.Context, userID uint, filter dto.ListFilter) ([]model.Customer, int64, error) {
	if err := validate(&filter); err != nil {
		return nil, 0, err
	}
	customers, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, 0, dbError(err, "customer")
	}
	return customers, total, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
