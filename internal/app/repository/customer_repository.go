package repository

import (
	"context"
	"strings"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"gorm.io/gorm"
)

var customerColumns = []string{
	"name", "gst_number", "email", "phone", "address", "city", "state",
	"pincode", "customer_type", "notes", "updated_at",
}

type CustomerRepository interface {
	WithTx(tx *gorm.DB) CustomerRepository
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, userID, id uint) (*model.Customer, error)
	List(ctx context.Context, userID uint, filter dto.ListFilter) ([]model.Customer, int64, error)
	Update(ctx context.Context, customer *model.Customer) error
	Deactivate(ctx context.Context, userID, id uint) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) WithTx(tx *gorm.DB) CustomerRepository {
	return &customerRepository{db: tx}
}

func (r *customerRepository) owned(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true)
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		logger.Error("Failed to create customer in database", err, map[string]interface{}{
			"user_id": customer.UserID,
		})
		return err
	}

	logger.Debug("Customer created in database", map[string]interface{}{
		"customer_id": customer.ID,
		"user_id":     customer.UserID,
	})
	return nil
}

func (r *customerRepository) FindByID(ctx context.Context, userID, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.owned(ctx, userID).Where("id = ?", id).First(&customer).Error; err != nil {
		logger.Debug("Customer not found", map[string]interface{}{
			"user_id":     userID,
			"customer_id": id,
		})
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, userID uint, filter dto.ListFilter) ([]model.Customer, int64, error) {
	query := r.owned(ctx, userID).Model(&model.Customer{})
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(gst_number) LIKE ?)",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count customers", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	var customers []model.Customer
	err := query.Order("name ASC").Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&customers).Error
	if err != nil {
		logger.Error("Failed to list customers", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	logger.Debug("Customers listed", map[string]interface{}{
		"user_id": userID,
		"count":   len(customers),
		"total":   total,
	})
	return customers, total, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	result := r.owned(ctx, customer.UserID).
		Model(customer).
		Select(customerColumns).
		Updates(customer)
	if result.Error != nil {
		logger.Error("Failed to update customer", result.Error, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepository) Deactivate(ctx context.Context, userID, id uint) error {
	result := r.owned(ctx, userID).Model(&model.Customer{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate customer", result.Error, map[string]interface{}{
			"customer_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
