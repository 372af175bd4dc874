package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/db"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/mailer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMailer records every message and fails while failWith is set.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []mailer.Message
	failWith error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	m.sent = append(m.sent, msg)
	return "msg-" + msg.To, nil
}

func (m *fakeMailer) fail(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

func (m *fakeMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

// testEnv carries the repositories and services over one in-memory database.
type testEnv struct {
	db        *gorm.DB
	mail      *fakeMailer
	users     repository.UserRepository
	business  BusinessService
	customers CustomerService
	items     ItemService
	invoices  InvoiceService
}

func setupServiceTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	businessRepo := repository.NewBusinessRepository(testDB)
	customerRepo := repository.NewCustomerRepository(testDB)
	itemRepo := repository.NewItemRepository(testDB)
	invoiceRepo := repository.NewInvoiceRepository(testDB)

	return &testEnv{
		db:        testDB,
		mail:      &fakeMailer{},
		users:     repository.NewUserRepository(testDB),
		business:  NewBusinessService(testDB, businessRepo),
		customers: NewCustomerService(customerRepo),
		items:     NewItemService(itemRepo),
		invoices:  NewInvoiceService(testDB, invoiceRepo, businessRepo, customerRepo, itemRepo),
	}
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	u := &model.User{Email: email, PasswordHash: "hash", Name: "Owner"}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) businessIn(t *testing.T, userID uint, name, state string) *model.Business {
	b, err := e.business.Create(context.Background(), userID, dto.BusinessInput{
		Name:      name,
		GSTNumber: "29AAPFU0939F1ZV",
		Address:   "12 MG Road",
		City:      "Bengaluru",
		State:     state,
		Pincode:   "560001",
	})
	require.NoError(t, err)
	return b
}

func (e *testEnv) customerIn(t *testing.T, userID uint, name, state, email string) *model.Customer {
	c, err := e.customers.Create(context.Background(), userID, dto.CustomerInput{
		Name:  name,
		State: state,
		Email: email,
	})
	require.NoError(t, err)
	return c
}

// scenarioItem is qty 2 at 1000 with 18% tax and a 10% discount.
func scenarioItem() dto.InvoiceItemInput {
	price := decimal.NewFromInt(1000)
	rate := decimal.NewFromInt(18)
	return dto.InvoiceItemInput{
		Name:            "Steel rack",
		HSNCode:         "9403",
		Quantity:        decimal.NewFromInt(2),
		UnitPrice:       &price,
		TaxRate:         &rate,
		DiscountPercent: decimal.NewFromInt(10),
	}
}

func (e *testEnv) invoice(t *testing.T, userID, businessID, customerID uint, number string) *model.Invoice {
	inv, err := e.invoices.Create(context.Background(), userID, dto.InvoiceInput{
		BusinessID:    businessID,
		CustomerID:    customerID,
		InvoiceNumber: number,
		InvoiceDate:   "2024-04-01",
		DueDate:       "2024-04-30",
		Items:         []dto.InvoiceItemInput{scenarioItem()},
	})
	require.NoError(t, err)
	return inv
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind, appErr.Error())
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func hasCode(err error, code string) bool {
	appErr, ok := apperrors.As(err)
	return ok && appErr.Code == code
}
