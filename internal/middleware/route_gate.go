package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/access"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/monitoring"
	"github.com/gin-gonic/gin"
)

const (
	SignInPath    = "/auth/signin"
	DashboardPath = "/dashboard"
)

// protectedPages need a session.
var protectedPages = []string{
	"/dashboard",
	"/invoices",
	"/analytics",
	"/settings",
	"/businesses",
	"/customers",
	"/items",
}

// authPages bounce signed-in users to the dashboard.
var authPages = []string{
	"/auth/signin",
	"/auth/signup",
	"/auth/forgot-password",
}

// RouteGate redirects browser page requests: anonymous users to sign-in,
// signed-in users away from the auth pages, and free users away from premium
// pages. API paths are left to Authenticate and RequirePlan.
type RouteGate struct {
	auth  *AuthMiddleware
	plans PlanResolver
}

func NewRouteGate(auth *AuthMiddleware, plans PlanResolver) *RouteGate {
	return &RouteGate{auth: auth, plans: plans}
}

func (g *RouteGate) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		switch {
		case matchesAny(path, authPages):
			if g.auth.session(c) != nil {
				c.Redirect(http.StatusFound, DashboardPath)
				c.Abort()
				return
			}

		case matchesAny(path, protectedPages):
			claims := g.auth.session(c)
			if claims == nil {
				c.Redirect(http.StatusFound, SignInPath+"?redirectTo="+url.QueryEscape(c.Request.URL.RequestURI()))
				c.Abort()
				return
			}
			setClaims(c, claims)

			if _, feature := access.RequiredPlan(path); feature != "" {
				plan := g.plans.CurrentPlan(c.Request.Context(), claims.UserID)
				if !access.CanAccessRoute(plan, path) {
					monitoring.PlanGateDenialsTotal.WithLabelValues(feature).Inc()
					c.Redirect(http.StatusFound, UpgradeURL(feature))
					c.Abort()
					return
				}
			}
		}

		c.Next()
	}
}

// matchesAny matches on path-segment boundaries.
func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
