package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/access"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/monitoring"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/payment/razorpay"
	"gorm.io/gorm"
)

const (
	// SubscriptionPeriod is the validity added by each successful charge
	SubscriptionPeriod = 30 * 24 * time.Hour
	billingCycleMonthly = "monthly"
)

// PlanPrice is a purchasable plan.
type PlanPrice struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

// Plans is the allow-list checkout accepts.
var Plans = map[string]PlanPrice{
	"premium": {Name: "premium", Amount: 50000, Currency: "INR"},
}

// PaymentGateway is the subset of the Razorpay client the workflow uses.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req razorpay.CreateOrderRequest) (*razorpay.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*razorpay.Order, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*razorpay.Subscription, error)
	VerifyWebhookSignature(body []byte, signature string) error
}

// CheckoutResult is what the client needs to open the payment widget.
type CheckoutResult struct {
	OrderID        string `json:"orderId"`
	KeyID          string `json:"keyId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	SubscriptionID uint   `json:"subscriptionId"`
}

type SubscriptionService interface {
	Checkout(ctx context.Context, userID uint, input dto.CheckoutInput) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	Cancel(ctx context.Context, userID uint, input dto.SubscriptionActionInput) (*model.Subscription, error)
	Renew(ctx context.Context, userID uint, input dto.SubscriptionActionInput) (*CheckoutResult, error)
	Status(ctx context.Context, userID uint) (*model.Subscription, error)
	CurrentPlan(ctx context.Context, userID uint) access.Plan
	ExpireDue(ctx context.Context) (int, error)
}

type subscriptionService struct {
	repo    repository.SubscriptionRepository
	gateway PaymentGateway
	cache   SubscriptionCache
	now     Clock
}

// NewSubscriptionService wires the payment workflow. cache may be nil.
func NewSubscriptionService(repo repository.SubscriptionRepository, gateway PaymentGateway, cache SubscriptionCache) SubscriptionService {
	return &subscriptionService{
		repo:    repo,
		gateway: gateway,
		cache:   cache,
		now:     time.Now,
	}
}

// Checkout creates a gateway order for an allow-listed plan and records a
// pending subscription row for it.
func (s *subscriptionService) Checkout(ctx context.Context, userID uint, input dto.CheckoutInput) (*CheckoutResult, error) {
	plan, err := s.resolvePlan(&input)
	if err != nil {
		return nil, err
	}

	order, receipt, err := s.createOrder(ctx, userID, plan)
	if err != nil {
		return nil, err
	}

	sub := &model.Subscription{
		UserID:          userID,
		PlanName:        plan.Name,
		Status:          model.SubscriptionStatusInactive,
		Price:           plan.Amount,
		Currency:        plan.Currency,
		BillingCycle:    billingCycleMonthly,
		RazorpayOrderID: order.ID,
		Receipt:         receipt,
		IsActive:        false,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, dbError(err, "subscription")
	}

	logger.Info("Checkout order created", map[string]interface{}{
		"user_id":         userID,
		"subscription_id": sub.ID,
		"order_id":        order.ID,
	})
	return &CheckoutResult{
		OrderID:        order.ID,
		KeyID:          s.gateway.KeyID(),
		Amount:         plan.Amount,
		Currency:       plan.Currency,
		SubscriptionID: sub.ID,
	}, nil
}

func (s *subscriptionService) resolvePlan(input *dto.CheckoutInput) (PlanPrice, error) {
	if err := validate(input); err != nil {
		return PlanPrice{}, err
	}

	plan, ok := Plans[input.Plan]
	if !ok {
		return PlanPrice{}, &apperrors.AppError{
			Kind:    apperrors.KindValidation,
			Code:    apperrors.PaymentInvalidPlan,
			Message: "invalid plan",
			Fields:  map[string]string{"plan": "is not a purchasable plan"},
		}
	}
	if input.Amount != plan.Amount {
		return PlanPrice{}, &apperrors.AppError{
			Kind:    apperrors.KindValidation,
			Code:    apperrors.PaymentInvalidPlan,
			Message: "invalid amount",
			Fields:  map[string]string{"amount": fmt.Sprintf("must be %d for plan %s", plan.Amount, plan.Name)},
		}
	}
	if input.Currency != plan.Currency {
		return PlanPrice{}, invalidField("currency", "must be "+plan.Currency)
	}
	return plan, nil
}

func (s *subscriptionService) createOrder(ctx context.Context, userID uint, plan PlanPrice) (*razorpay.Order, string, error) {
	receipt := buildReceipt(plan.Name, userID, s.now())
	order, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderRequest{
		Amount:   plan.Amount,
		Currency: plan.Currency,
		Receipt:  receipt,
		Notes: razorpay.Notes{
			"user_id": strconv.FormatUint(uint64(userID), 10),
			"plan":    plan.Name,
		},
	})
	if err != nil {
		logger.Error("Failed to create gateway order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, "", apperrors.NewDownstream(apperrors.PaymentGatewayFailed, err)
	}
	return order, receipt, nil
}

// HandleWebhook verifies and dispatches one gateway event. Only a bad
// signature or a storage failure is an error; events that match nothing are
// logged and dropped.
func (s *subscriptionService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if err := s.gateway.VerifyWebhookSignature(body, signature); err != nil {
		monitoring.WebhookEventsTotal.WithLabelValues("unknown", monitoring.OutcomeRejected).Inc()
		logger.Warn("Webhook signature rejected", map[string]interface{}{
			"body_size": len(body),
		})
		return apperrors.NewSignature("invalid webhook signature")
	}

	event, err := razorpay.ParseWebhookEvent(body)
	if err != nil {
		monitoring.WebhookEventsTotal.WithLabelValues("unknown", monitoring.OutcomeIgnored).Inc()
		logger.Warn("Webhook body could not be decoded", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	var handled bool
	switch event.Event {
	case razorpay.EventPaymentCaptured:
		handled, err = s.paymentCaptured(ctx, event)
	case razorpay.EventSubscriptionCharged:
		handled, err = s.subscriptionCharged(ctx, event)
	default:
		logger.Info("Webhook event ignored", map[string]interface{}{
			"event": event.Event,
		})
	}

	outcome := monitoring.OutcomeIgnored
	switch {
	case err != nil:
		outcome = monitoring.OutcomeFailed
	case handled:
		outcome = monitoring.OutcomeProcessed
	}
	monitoring.WebhookEventsTotal.WithLabelValues(event.Event, outcome).Inc()
	return err
}

// paymentCaptured activates the pending row created at checkout.
func (s *subscriptionService) paymentCaptured(ctx context.Context, event *razorpay.WebhookEvent) (bool, error) {
	if event.Payload.Payment == nil {
		logger.Warn("payment.captured without payment entity", nil)
		return false, nil
	}
	payment := event.Payload.Payment.Entity

	recorded, err := s.repo.PaymentRecorded(ctx, payment.ID)
	if err != nil {
		return false, dbError(err, "subscription")
	}
	if recorded {
		logger.Info("Payment already applied", map[string]interface{}{
			"payment_id": payment.ID,
		})
		return false, nil
	}

	order, err := s.orderFor(ctx, event, payment.OrderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, nil
	}

	userID, ok := userFromReceipt(order.Receipt)
	if !ok {
		userID, ok = userFromNotes(order.Notes)
	}
	if !ok {
		logger.Warn("Payment could not be matched to a user", map[string]interface{}{
			"order_id": payment.OrderID,
			"receipt":  order.Receipt,
		})
		return false, nil
	}

	sub, err := s.repo.FindByOrderID(ctx, userID, payment.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Payment for unknown subscription dropped", map[string]interface{}{
				"user_id":  userID,
				"order_id": payment.OrderID,
			})
			return false, nil
		}
		return false, dbError(err, "subscription")
	}
	if sub.IsTerminal() {
		logger.Warn("Payment for closed subscription dropped", map[string]interface{}{
			"user_id":         userID,
			"subscription_id": sub.ID,
			"status":          sub.Status,
			"payment_id":      payment.ID,
		})
		return false, nil
	}

	now := s.now()
	expires := now.Add(SubscriptionPeriod)
	sub.Status = model.SubscriptionStatusActive
	sub.IsActive = true
	sub.StartedAt = &now
	sub.ExpiresAt = &expires
	sub.CancelledAt = nil
	sub.RazorpayPaymentID = payment.ID
	if err := s.repo.Update(ctx, sub); err != nil {
		return false, dbError(err, "subscription")
	}
	s.invalidate(ctx, userID)

	logger.Info("Subscription activated", map[string]interface{}{
		"user_id":         userID,
		"subscription_id": sub.ID,
		"payment_id":      payment.ID,
		"expires_at":      expires,
	})
	return true, nil
}

// orderFor prefers the order embedded in the event and falls back to the
// gateway. A nil order with nil error means the event is dropped.
func (s *subscriptionService) orderFor(ctx context.Context, event *razorpay.WebhookEvent, orderID string) (*razorpay.Order, error) {
	if event.Payload.Order != nil && event.Payload.Order.Entity.Receipt != "" {
		return &event.Payload.Order.Entity, nil
	}
	if orderID == "" {
		logger.Warn("payment.captured without order id", nil)
		return nil, nil
	}

	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, razorpay.ErrNotFound) {
			logger.Warn("Order not found at gateway", map[string]interface{}{
				"order_id": orderID,
			})
			return nil, nil
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, apperrors.NewDownstream(apperrors.PaymentGatewayFailed, err)
	}
	return order, nil
}

// subscriptionCharged extends the user's latest subscription by one period.
func (s *subscriptionService) subscriptionCharged(ctx context.Context, event *razorpay.WebhookEvent) (bool, error) {
	if event.Payload.Subscription == nil {
		logger.Warn("subscription.charged without subscription entity", nil)
		return false, nil
	}
	entity := event.Payload.Subscription.Entity

	userID, ok := userFromNotes(entity.Notes)
	if !ok {
		logger.Warn("Subscription charge without user id dropped", map[string]interface{}{
			"gateway_subscription_id": entity.ID,
		})
		return false, nil
	}

	sub, err := s.repo.FindLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Subscription charge for user without subscription dropped", map[string]interface{}{
				"user_id": userID,
			})
			return false, nil
		}
		return false, dbError(err, "subscription")
	}
	if sub.IsTerminal() {
		logger.Warn("Charge for closed subscription dropped", map[string]interface{}{
			"user_id":                 userID,
			"subscription_id":         sub.ID,
			"status":                  sub.Status,
			"gateway_subscription_id": entity.ID,
		})
		return false, nil
	}

	now := s.now()
	base := now
	if sub.ExpiresAt != nil && sub.ExpiresAt.After(now) {
		base = *sub.ExpiresAt
	}
	expires := base.Add(SubscriptionPeriod)

	sub.Status = model.SubscriptionStatusActive
	sub.IsActive = true
	sub.ExpiresAt = &expires
	sub.CancelledAt = nil
	if sub.StartedAt == nil {
		sub.StartedAt = &now
	}
	if entity.ID != "" {
		sub.RazorpaySubscriptionID = entity.ID
	}
	if event.Payload.Payment != nil && event.Payload.Payment.Entity.ID != "" {
		sub.RazorpayPaymentID = event.Payload.Payment.Entity.ID
	}
	if err := s.repo.Update(ctx, sub); err != nil {
		return false, dbError(err, "subscription")
	}
	s.invalidate(ctx, userID)

	logger.Info("Subscription extended", map[string]interface{}{
		"user_id":         userID,
		"subscription_id": sub.ID,
		"expires_at":      expires,
	})
	return true, nil
}

// Cancel moves the row to cancelled whatever the gateway says.
func (s *subscriptionService) Cancel(ctx context.Context, userID uint, input dto.SubscriptionActionInput) (*model.Subscription, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	sub, err := s.repo.FindByID(ctx, userID, input.SubscriptionID)
	if err != nil {
		return nil, dbError(err, "subscription")
	}

	if sub.RazorpaySubscriptionID != "" {
		if _, err := s.gateway.CancelSubscription(ctx, sub.RazorpaySubscriptionID); err != nil {
			logger.Warn("Gateway cancellation failed; cancelling locally", map[string]interface{}{
				"subscription_id":         sub.ID,
				"gateway_subscription_id": sub.RazorpaySubscriptionID,
				"error":                   err.Error(),
			})
		}
	}

	now := s.now()
	sub.Status = model.SubscriptionStatusCancelled
	sub.IsActive = false
	sub.CancelledAt = &now
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, dbError(err, "subscription")
	}
	s.invalidate(ctx, userID)

	logger.Info("Subscription cancelled", map[string]interface{}{
		"user_id":         userID,
		"subscription_id": sub.ID,
	})
	return sub, nil
}

// Renew opens a new order for an existing row. A pending or active row keeps
// its status until the payment is captured; a cancelled or expired row is left
// untouched and the order is attached to a new pending row.
func (s *subscriptionService) Renew(ctx context.Context, userID uint, input dto.SubscriptionActionInput) (*CheckoutResult, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	sub, err := s.repo.FindByID(ctx, userID, input.SubscriptionID)
	if err != nil {
		return nil, dbError(err, "subscription")
	}

	plan, ok := Plans[sub.PlanName]
	if !ok {
		plan = PlanPrice{Name: sub.PlanName, Amount: sub.Price, Currency: sub.Currency}
	}

	order, receipt, err := s.createOrder(ctx, userID, plan)
	if err != nil {
		return nil, err
	}

	if sub.IsTerminal() {
		sub = &model.Subscription{
			UserID:       userID,
			PlanName:     plan.Name,
			Status:       model.SubscriptionStatusInactive,
			Price:        plan.Amount,
			Currency:     plan.Currency,
			BillingCycle: sub.BillingCycle,
		}
	}
	sub.RazorpayOrderID = order.ID
	sub.Receipt = receipt

	if sub.ID == 0 {
		err = s.repo.Create(ctx, sub)
	} else {
		err = s.repo.Update(ctx, sub)
	}
	if err != nil {
		return nil, dbError(err, "subscription")
	}
	s.invalidate(ctx, userID)

	logger.Info("Subscription renewal order created", map[string]interface{}{
		"user_id":         userID,
		"subscription_id": sub.ID,
		"order_id":        order.ID,
	})
	return &CheckoutResult{
		OrderID:        order.ID,
		KeyID:          s.gateway.KeyID(),
		Amount:         plan.Amount,
		Currency:       plan.Currency,
		SubscriptionID: sub.ID,
	}, nil
}

// Status returns the caller's latest subscription row, or nil.
func (s *subscriptionService) Status(ctx context.Context, userID uint) (*model.Subscription, error) {
	sub, err := s.repo.FindLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err, "subscription")
	}
	return sub, nil
}

// CurrentPlan reads the cached active subscription, falling back to the
// database. Any lookup failure yields the free plan.
func (s *subscriptionService) CurrentPlan(ctx context.Context, userID uint) access.Plan {
	if s.cache != nil {
		sub, found, err := s.cache.GetSubscription(ctx, userID)
		if err == nil && found {
			return access.GetUserPlan(sub, s.now())
		}
		if err != nil {
			logger.Warn("Subscription cache lookup failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}

	sub, err := s.repo.FindLatestActive(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("Subscription lookup failed; treating as free", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return access.PlanFree
	}
	if err != nil {
		sub = nil
	}

	if s.cache != nil {
		if err := s.cache.SetSubscription(ctx, userID, sub); err != nil {
			logger.Warn("Failed to cache subscription", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return access.GetUserPlan(sub, s.now())
}

// ExpireDue is run by the scheduler.
func (s *subscriptionService) ExpireDue(ctx context.Context) (int, error) {
	userIDs, err := s.repo.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, dbError(err, "subscription")
	}
	for _, id := range userIDs {
		s.invalidate(ctx, id)
	}
	return len(userIDs), nil
}

func (s *subscriptionService) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSubscription(ctx, userID); err != nil {
		logger.Warn("Failed to invalidate subscription cache", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

// buildReceipt encodes the owner: <plan>_<userID>_<unix millis>.
func buildReceipt(plan string, userID uint, at time.Time) string {
	return fmt.Sprintf("%s_%d_%d", plan, userID, at.UnixMilli())
}

func userFromReceipt(receipt string) (uint, bool) {
	parts := strings.Split(receipt, "_")
	if len(parts) != 3 {
		return 0, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func userFromNotes(notes razorpay.Notes) (uint, bool) {
	raw, ok := notes["user_id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
