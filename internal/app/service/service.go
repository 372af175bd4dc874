// Package service holds the business rules. Every method takes the caller's
// user id and returns *errors.AppError values that handlers map to statuses.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/validation"
)

// TokenStore remembers signed-out token ids until they expire.
type TokenStore interface {
	BlacklistToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// SubscriptionCache holds the latest subscription row per user.
type SubscriptionCache interface {
	GetSubscription(ctx context.Context, userID uint) (*model.Subscription, bool, error)
	SetSubscription(ctx context.Context, userID uint, sub *model.Subscription) error
	InvalidateSubscription(ctx context.Context, userID uint) error
}

// Clock is swapped in tests.
type Clock func() time.Time

// validate runs the validation engine and converts its errors.
func validate(input interface{}) error {
	err := validation.Struct(input)
	if err == nil {
		return nil
	}
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		return apperrors.NewValidation(verrs.Fields)
	}
	return apperrors.NewValidation(map[string]string{"_": err.Error()})
}

func invalidField(field, message string) error {
	return apperrors.NewValidation(map[string]string{field: message})
}

// dbError maps a repository error onto the taxonomy.
func dbError(err error, resource string) error {
	if err == nil {
		return nil
	}
	return apperrors.ParseError(err, resource)
}
