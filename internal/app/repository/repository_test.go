package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{Email: email, PasswordHash: "hash", Name: "Owner"}
	require.NoError(t, NewUserRepository(testDB).Create(context.Background(), user))
	return user
}

func newBusiness(userID uint, name string, primary bool) *model.Business {
	return &model.Business{
		UserID:    userID,
		Name:      name,
		GSTNumber: "27AAPFU0939F1ZV",
		Address:   "1 Market Road",
		City:      "Pune",
		State:     "Maharashtra",
		Pincode:   "411001",
		IsPrimary: primary,
		IsActive:  true,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := createTestUser(t, testDB, "owner@example.com")

	found, err := repo.FindByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	dup := &model.User{Email: "owner@example.com", PasswordHash: "x", Name: "Dup"}
	assert.Error(t, repo.Create(ctx, dup))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))
	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, 9999, "x"), gorm.ErrRecordNotFound)
}

func TestPasswordResetRepository_MarkAsUsedOnce(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewPasswordResetRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t, testDB, "reset@example.com")

	reset := &model.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     "token-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, reset))

	found, err := repo.FindByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, found.Usable(time.Now()))

	require.NoError(t, repo.MarkAsUsed(ctx, reset.ID, time.Now()))
	assert.ErrorIs(t, repo.MarkAsUsed(ctx, reset.ID, time.Now()), gorm.ErrRecordNotFound)
}

func TestBusinessRepository_SinglePrimaryIndex(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewBusinessRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t, testDB, "biz@example.com")

	require.NoError(t, repo.Create(ctx, newBusiness(user.ID, "First", true)))
	assert.Error(t, repo.Create(ctx, newBusiness(user.ID, "Second", true)),
		"a second active primary must violate the partial unique index")

	second := newBusiness(user.ID, "Second", false)
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, testDB.Transaction(func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		if err := txRepo.ClearPrimary(ctx, user.ID); err != nil {
			return err
		}
		return txRepo.SetPrimary(ctx, user.ID, second.ID)
	}))

	primary, err := repo.FindPrimary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, primary.ID)

	list, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "primary is listed first")
}

func TestBusinessRepository_OwnerScoping(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewBusinessRepository(testDB)
	ctx := context.Background()
	owner := createTestUser(t, testDB, "a@example.com")
	other := createTestUser(t, testDB, "b@example.com")

	business := newBusiness(owner.ID, "Mine", true)
	require.NoError(t, repo.Create(ctx, business))

	_, err := repo.FindByID(ctx, other.ID, business.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Deactivate(ctx, other.ID, business.ID), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Deactivate(ctx, owner.ID, business.ID))
	_, err = repo.FindByID(ctx, owner.ID, business.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var raw model.Business
	require.NoError(t, testDB.First(&raw, business.ID).Error)
	assert.False(t, raw.IsActive)
	assert.False(t, raw.IsPrimary)
}

func TestBusinessRepository_PromoteOldest(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewBusinessRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t, testDB, "promote@example.com")

	id, err := repo.PromoteOldest(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, id, "nothing to promote")

	first := newBusiness(user.ID, "First", false)
	require.NoError(t, repo.Create(ctx, first))
	second := newBusiness(user.ID, "Second", false)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Deactivate(ctx, user.ID, first.ID))

	id, err = repo.PromoteOldest(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, id, "inactive rows are skipped")

	primary, err := repo.FindPrimary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, primary.ID)
}

func TestItemRepository_ListAndFindByIDs(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewItemRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t, testDB, "items@example.com")

	items := []model.Item{
		{UserID: user.ID, Name: "Widget", HSNCode: "8471", UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(18), Unit: "pcs", Category: "hardware", IsActive: true},
		{UserID: user.ID, Name: "Consulting", HSNCode: "998311", UnitPrice: decimal.NewFromInt(2500), TaxRate: decimal.NewFromInt(18), Unit: "hrs", Category: "services", IsActive: true},
	}
	require.NoError(t, repo.CreateBatch(ctx, items))

	filter := dto.ListFilter{Category: "services"}
	filter.Normalize()
	list, total, err := repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Consulting", list[0].Name)

	found, err := repo.FindByIDs(ctx, user.ID, []uint{items[0].ID, items[1].ID, 9999})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.True(t, found[items[0].ID].UnitPrice.Equal(decimal.NewFromInt(100)))
}

func TestEmailLogRepository_IncrementRetryStopsAtMax(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewEmailLogRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t, testDB, "mail@example.com")

	log := &model.EmailLog{
		UserID:     user.ID,
		InvoiceID:  1,
		Recipient:  "buyer@example.com",
		Subject:    "Invoice",
		Status:     model.EmailStatusFailed,
		RetryCount: 2,
		MaxRetries: 3,
	}
	require.NoError(t, repo.Create(ctx, log))

	require.NoError(t, repo.IncrementRetry(ctx, user.ID, log.ID))
	assert.ErrorIs(t, repo.IncrementRetry(ctx, user.ID, log.ID), gorm.ErrRecordNotFound)

	found, err := repo.FindByID(ctx, user.ID, log.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.RetryCount)
}

func TestSubscriptionRepository_ExpireDue(t *testing.T) {
	testDB := setupRepoTest(t)
	repo := NewSubscriptionRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t, testDB, "sub@example.com")

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)
	expired := &model.Subscription{UserID: user.ID, PlanName: "premium", Status: model.SubscriptionStatusActive, Price: 50000, IsActive: true, ExpiresAt: &past}
	live := &model.Subscription{UserID: user.ID + 1, PlanName: "premium", Status: model.SubscriptionStatusActive, Price: 50000, IsActive: true, ExpiresAt: &future}
	require.NoError(t, repo.Create(ctx, expired))
	require.NoError(t, repo.Create(ctx, live))

	userIDs, err := repo.ExpireDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []uint{user.ID}, userIDs)

	got, err := repo.FindByID(ctx, user.ID, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, got.Status)
	assert.False(t, got.IsActive)

	got, err = repo.FindLatest(ctx, user.ID+1)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusActive, got.Status)
}
