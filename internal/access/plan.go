// Package access decides which plan tier a user is on and which routes that
// tier may reach. Everything here is pure.
package access

import (
	"sort"
	"strings"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

var planRank = map[Plan]int{
	PlanFree:    0,
	PlanPremium: 1,
}

// routeRequirements maps path prefixes to the minimum tier. Paths not listed are free.
var routeRequirements = map[string]Plan{
	"/analytics":        PlanPremium,
	"/api/v1/analytics": PlanPremium,
	"/api/v1/exports":   PlanPremium,
}

// prefixes sorted longest first so the most specific rule wins
var prefixes = sortedPrefixes(routeRequirements)

func sortedPrefixes(m map[string]Plan) []string {
	out := make([]string, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// GetUserPlan returns premium only for an active, paid subscription whose
// window (if any) has not elapsed at now. A nil subscription is free.
func GetUserPlan(sub *model.Subscription, now time.Time) Plan {
	if sub == nil {
		return PlanFree
	}
	if !sub.IsActive || sub.Status != model.SubscriptionStatusActive {
		return PlanFree
	}
	if sub.ExpiresAt != nil && !now.Before(*sub.ExpiresAt) {
		return PlanFree
	}
	return PlanPremium
}

// RequiredPlan returns the tier a path needs and the prefix that matched.
// An empty prefix means no rule applies.
func RequiredPlan(path string) (Plan, string) {
	for _, prefix := range prefixes {
		if matchesPrefix(path, prefix) {
			return routeRequirements[prefix], prefix
		}
	}
	return PlanFree, ""
}

// CanAccessRoute reports whether plan may reach path. Unknown plans rank as free.
func CanAccessRoute(plan Plan, path string) bool {
	required, _ := RequiredPlan(path)
	return planRank[plan] >= planRank[required]
}

// matchesPrefix matches on path-segment boundaries: "/analytics" covers
// "/analytics" and "/analytics/x" but not "/analyticsx".
func matchesPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/' || path[len(prefix)] == '?'
}
