package service

import (
	"context"
	"testing"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func primaryCount(t *testing.T, env *testEnv, userID uint) int {
	t.Helper()
	list, err := env.business.List(context.Background(), userID)
	require.NoError(t, err)
	n := 0
	for _, b := range list {
		if b.IsPrimary {
			n++
		}
	}
	return n
}

func TestBusinessService_FirstBusinessIsPrimary(t *testing.T) {
	env := setupServiceTest(t)
	owner := env.user(t, "owner@example.com")

	first := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	assert.True(t, first.IsPrimary)

	second := env.businessIn(t, owner.ID, "Rao Exports", "Karnataka")
	assert.False(t, second.IsPrimary)
	assert.Equal(t, 1, primaryCount(t, env, owner.ID))
}

func TestBusinessService_SinglePrimary(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")

	first := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")

	created, err := env.business.Create(ctx, owner.ID, dto.BusinessInput{
		Name:      "Rao Exports",
		GSTNumber: "29AAPFU0939F1ZV",
		Address:   "14 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560001",
		IsPrimary: true,
	})
	require.NoError(t, err)
	assert.True(t, created.IsPrimary)
	assert.Equal(t, 1, primaryCount(t, env, owner.ID))

	reloaded, err := env.business.Get(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsPrimary)

	switched, err := env.business.SetPrimary(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, switched.IsPrimary)
	assert.Equal(t, 1, primaryCount(t, env, owner.ID))

	yes := true
	_, err = env.business.Update(ctx, owner.ID, dto.BusinessUpdate{ID: created.ID, IsPrimary: &yes})
	require.NoError(t, err)
	assert.Equal(t, 1, primaryCount(t, env, owner.ID))

	list, err := env.business.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, created.ID, list[0].ID, "primary is listed first")
}

func TestBusinessService_OwnerScoping(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")

	biz := env.businessIn(t, alice.ID, "Alice Stores", "Kerala")

	_, err := env.business.Get(ctx, bob.ID, biz.ID)
	assertKind(t, err, apperrors.KindNotFound)

	name := "Hijacked"
	_, err = env.business.Update(ctx, bob.ID, dto.BusinessUpdate{ID: biz.ID, Name: &name})
	assertKind(t, err, apperrors.KindNotFound)

	_, err = env.business.SetPrimary(ctx, bob.ID, biz.ID)
	assertKind(t, err, apperrors.KindNotFound)

	assertKind(t, env.business.Deactivate(ctx, bob.ID, biz.ID), apperrors.KindNotFound)

	got, err := env.business.Get(ctx, alice.ID, biz.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Stores", got.Name)
}

func TestBusinessService_Validation(t *testing.T) {
	env := setupServiceTest(t)
	owner := env.user(t, "owner@example.com")

	tests := []struct {
		name  string
		input dto.BusinessInput
		field string
	}{
		{
			name:  "Bad GSTIN",
			input: dto.BusinessInput{Name: "X", GSTNumber: "12345", Address: "A", City: "C", State: "S", Pincode: "560001"},
			field: "gst_number",
		},
		{
			name:  "Bad pincode",
			input: dto.BusinessInput{Name: "X", GSTNumber: "29AAPFU0939F1ZV", Address: "A", City: "C", State: "S", Pincode: "012345"},
			field: "pincode",
		},
		{
			name:  "Missing name",
			input: dto.BusinessInput{GSTNumber: "29AAPFU0939F1ZV", Address: "A", City: "C", State: "S", Pincode: "560001"},
			field: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.business.Create(context.Background(), owner.ID, tt.input)
			assertKind(t, err, apperrors.KindValidation)
			appErr, _ := apperrors.As(err)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestBusinessService_Deactivate(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")

	biz := env.businessIn(t, owner.ID, "Closing Down", "Goa")
	require.NoError(t, env.business.Deactivate(ctx, owner.ID, biz.ID))

	_, err := env.business.Get(ctx, owner.ID, biz.ID)
	assertKind(t, err, apperrors.KindNotFound)

	list, err := env.business.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// the next business becomes primary again
	next := env.businessIn(t, owner.ID, "Fresh Start", "Goa")
	assert.True(t, next.IsPrimary)
}

func TestBusinessService_PrimaryCannotBeUnset(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")

	primary := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	other := env.businessIn(t, owner.ID, "Rao Exports", "Karnataka")

	no := false
	_, err := env.business.Update(ctx, owner.ID, dto.BusinessUpdate{ID: primary.ID, IsPrimary: &no})
	assertKind(t, err, apperrors.KindValidation)
	appErr, _ := apperrors.As(err)
	assert.Contains(t, appErr.Fields, "is_primary")

	reloaded, err := env.business.Get(ctx, owner.ID, primary.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsPrimary)
	assert.Equal(t, 1, primaryCount(t, env, owner.ID))

	// unsetting a non-primary is a no-op
	_, err = env.business.Update(ctx, owner.ID, dto.BusinessUpdate{ID: other.ID, IsPrimary: &no})
	require.NoError(t, err)
	assert.Equal(t, 1, primaryCount(t, env, owner.ID))
}

func TestBusinessService_DeactivatePrimaryPromotesOldest(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")

	first := env.businessIn(t, owner.ID, "Rao Traders", "Karnataka")
	second := env.businessIn(t, owner.ID, "Rao Exports", "Karnataka")
	third := env.businessIn(t, owner.ID, "Rao Imports", "Karnataka")
	require.True(t, first.IsPrimary)

	require.NoError(t, env.business.Deactivate(ctx, owner.ID, first.ID))
	assert.Equal(t, 1, primaryCount(t, env, owner.ID))
	promoted, err := env.business.Get(ctx, owner.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsPrimary)

	// deactivating a non-primary leaves the primary alone
	require.NoError(t, env.business.Deactivate(ctx, owner.ID, third.ID))
	still, err := env.business.Get(ctx, owner.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, still.IsPrimary)

	// the last business can go; nothing is left to promote
	require.NoError(t, env.business.Deactivate(ctx, owner.ID, second.ID))
	assert.Zero(t, primaryCount(t, env, owner.ID))
}
