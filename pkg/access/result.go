package access

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/entitlements/pkg/feature"
	"github.com/dmitrymomot/entitlements/pkg/quota"
)

// DenyReason is the categorical cause of a denied decision.
type DenyReason string

const (
	ReasonMissingScope  DenyReason = "MISSING_SCOPE"
	ReasonQuotaExceeded DenyReason = "QUOTA_EXCEEDED"
	ReasonFeatureOff    DenyReason = "FEATURE_OFF"

	// Reserved. Nothing in this package produces them yet.
	ReasonUserSuspended   DenyReason = "USER_SUSPENDED"
	ReasonMaintenanceMode DenyReason = "MAINTENANCE_MODE"
	ReasonRateLimited     DenyReason = "RATE_LIMITED"
)

// String implements fmt.Stringer.
func (r DenyReason) String() string {
	return string(r)
}

// Result is the outcome of a single access decision.
type Result struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`

	// Set on QUOTA_EXCEEDED.
	Quota *quota.Info `json:"quota,omitempty"`
	// Set on FEATURE_OFF.
	Feature *feature.Info `json:"feature,omitempty"`
	// Set when a size-based storage check denied the request.
	RequestedMB int64 `json:"requested_mb,omitempty"`
	// Set on MISSING_SCOPE when some plan grants the action.
	RecommendedPlan string `json:"recommended_plan,omitempty"`
}

func allowed() Result {
	return Result{Allowed: true}
}

func featureOff(info feature.Info) Result {
	return Result{
		Reason:  ReasonFeatureOff,
		Message: fmt.Sprintf("feature %q is currently disabled", info.Key),
		Feature: &info,
	}
}

func missingScope(action, planID, planName string) Result {
	res := Result{Reason: ReasonMissingScope, RecommendedPlan: planID}
	if planID == "" {
		res.Message = action + " is not available on any plan"
		return res
	}
	if planName == "" {
		planName = planID
	}
	res.Message = fmt.Sprintf("upgrade to %s to unlock %s", planName, action)
	return res
}

func quotaExceeded(info quota.Info) Result {
	return Result{
		Reason:  ReasonQuotaExceeded,
		Message: quotaMessage(info),
		Quota:   &info,
	}
}

func quotaMessage(info quota.Info) string {
	used := fmt.Sprintf("%s quota used (%d/%d)", info.Key, info.Current, info.Limit)
	switch {
	case strings.HasSuffix(info.Key, quota.SuffixDay):
		return "daily " + used + ", resets at midnight"
	case strings.HasSuffix(info.Key, quota.SuffixMonth):
		return "monthly " + used + ", resets at start of month"
	case strings.HasSuffix(info.Key, quota.SuffixYear):
		return "yearly " + used + ", resets at start of year"
	default:
		return "quota exceeded for " + info.Key
	}
}
