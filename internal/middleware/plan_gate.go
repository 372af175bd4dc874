package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/access"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/monitoring"
	"github.com/gin-gonic/gin"
)

// PlanResolver returns the caller's plan. Implementations report free on any
// lookup failure.
type PlanResolver interface {
	CurrentPlan(ctx context.Context, userID uint) access.Plan
}

// UpgradeResponse is the 403 body for API calls above the caller's plan.
type UpgradeResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	Feature    string `json:"feature"`
	Required   string `json:"required_plan"`
	UpgradeURL string `json:"upgrade_url"`
}

// UpgradeURL is where blocked users are sent to buy the feature.
func UpgradeURL(feature string) string {
	return "/pricing?upgrade=required&feature=" + url.QueryEscape(feature)
}

// RequirePlan rejects API requests whose path needs a higher plan than the
// caller holds. It must run after Authenticate.
func RequirePlan(plans PlanResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		required, feature := access.RequiredPlan(path)
		if feature == "" {
			c.Next()
			return
		}

		userID, ok := GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		plan := plans.CurrentPlan(c.Request.Context(), userID)
		if access.CanAccessRoute(plan, path) {
			c.Next()
			return
		}

		monitoring.PlanGateDenialsTotal.WithLabelValues(feature).Inc()
		GetLoggerFromContext(c).Info("Plan upgrade required", map[string]interface{}{
			"user_id": userID,
			"plan":    plan,
			"feature": feature,
		})
		c.AbortWithStatusJSON(http.StatusForbidden, UpgradeResponse{
			Error:      "this feature requires the " + string(required) + " plan",
			Code:       errors.AuthzUpgradeRequired,
			Feature:    feature,
			Required:   string(required),
			UpgradeURL: UpgradeURL(feature),
		})
	}
}
