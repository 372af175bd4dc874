package controller

import (
	"net/http"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	"github.com/gin-gonic/gin"
)

// PageController backs the browser pages that sit behind the route gate.
// Each returns the data its page renders.
type PageController struct {
	authService         service.AuthService
	invoiceService      service.InvoiceService
	subscriptionService service.SubscriptionService
}

func NewPageController(
	authService service.AuthService,
	invoiceService service.InvoiceService,
	subscriptionService service.SubscriptionService,
) *PageController {
	return &PageController{
		authService:         authService,
		invoiceService:      invoiceService,
		subscriptionService: subscriptionService,
	}
}

// GET /dashboard
func (ctrl *PageController) Dashboard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	summary, err := ctrl.invoiceService.Summary(c.Request.Context(), userID)
	if err != nil {
		fail(c, "Failed to load dashboard", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "dashboard", "summary": summary})
}

// GET /analytics
func (ctrl *PageController) Analytics(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	months, ok := monthsParam(c)
	if !ok {
		return
	}

	analytics, err := ctrl.invoiceService.Analytics(c.Request.Context(), userID, months)
	if err != nil {
		fail(c, "Failed to load analytics", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "analytics", "analytics": analytics})
}

// GET /settings
func (ctrl *PageController) Settings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := ctrl.authService.GetCurrentUser(ctx, userID)
	if err != nil {
		fail(c, "Failed to load settings", err, map[string]interface{}{"user_id": userID})
		return
	}
	sub, err := ctrl.subscriptionService.Status(ctx, userID)
	if err != nil {
		fail(c, "Failed to load settings", err, map[string]interface{}{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":         "settings",
		"user":         user,
		"subscription": sub,
		"plan":         ctrl.subscriptionService.CurrentPlan(ctx, userID),
	})
}

// Pricing lists the purchasable plans; public
// GET /pricing
func (ctrl *PageController) Pricing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":    "pricing",
		"plans":   service.Plans,
		"upgrade": c.Query("upgrade"),
		"feature": c.Query("feature"),
	})
}
