package controller

import (
	"io"
	"net/http"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/payment/razorpay"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type SubscriptionController struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionController(subscriptionService service.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subscriptionService: subscriptionService}
}

// Checkout creates a gateway order for the plan
// POST /api/v1/subscriptions/checkout
func (ctrl *SubscriptionController) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CheckoutInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.subscriptionService.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Checkout failed", err, map[string]interface{}{
			"user_id": userID,
			"plan":    req.Plan,
		})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Checkout order created", map[string]interface{}{
		"user_id":  userID,
		"order_id": result.OrderID,
	})
	c.JSON(http.StatusOK, result)
}

// Status returns the latest subscription or null
// GET /api/v1/subscriptions/status
func (ctrl *SubscriptionController) Status(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sub, err := ctrl.subscriptionService.Status(c.Request.Context(), userID)
	if err != nil {
		fail(c, "Failed to load subscription", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// POST /api/v1/subscriptions/cancel
func (ctrl *SubscriptionController) Cancel(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.SubscriptionActionInput
	if !bindJSON(c, &req) {
		return
	}

	sub, err := ctrl.subscriptionService.Cancel(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Cancel failed", err, map[string]interface{}{
			"user_id":         userID,
			"subscription_id": req.SubscriptionID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscription cancelled", "subscription": sub})
}

// Renew issues a fresh order for an existing subscription row
// POST /api/v1/subscriptions/renew
func (ctrl *SubscriptionController) Renew(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.SubscriptionActionInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.subscriptionService.Renew(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Renew failed", err, map[string]interface{}{
			"user_id":         userID,
			"subscription_id": req.SubscriptionID,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Webhook receives gateway events. Anything other than a bad signature is
// acknowledged so the gateway does not redeliver.
// POST /api/v1/webhooks/razorpay
func (ctrl *SubscriptionController) Webhook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Warn("Unreadable webhook body", map[string]interface{}{"error": err.Error()})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "unreadable body")
		return
	}

	signature := c.GetHeader(razorpay.SignatureHeader)
	if err := ctrl.subscriptionService.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		fail(c, "Webhook rejected", err, map[string]interface{}{"body_size": len(body)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
