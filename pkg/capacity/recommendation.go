package capacity

import (
	"context"

	"github.com/dmitrymomot/entitlements/pkg/quota"
)

// Urgency grades how pressing an upgrade is.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// NearLimitPercent is the utilization at which a quota is flagged.
const NearLimitPercent = 80

// WatchedQuotas are inspected by UpgradeRecommendation, in this order.
var WatchedQuotas = []string{QuotaSnaps, QuotaAnalysis, QuotaStorage, QuotaExport, QuotaBackup}

// Recommendation summarizes quota pressure for a user.
type Recommendation struct {
	CurrentPlan     string       `json:"current_plan"`
	RecommendedPlan string       `json:"recommended_plan,omitempty"` // empty on the top tier
	Urgency         Urgency      `json:"urgency"`
	NearLimit       []quota.Info `json:"near_limit,omitempty"`
}

// Needed reports whether any quota is near its limit.
func (r Recommendation) Needed() bool {
	return len(r.NearLimit) > 0
}

// UpgradeRecommendation flags watched quotas at or above NearLimitPercent.
// Unlimited and zero limits are skipped.
func (g *Guard) UpgradeRecommendation(ctx context.Context, userID string) (Recommendation, error) {
	plan, err := g.access.CurrentPlan(ctx, userID)
	if err != nil {
		return Recommendation{}, err
	}

	rec := Recommendation{CurrentPlan: plan.ID}
	for _, key := range WatchedQuotas {
		info, err := g.access.QuotaInfo(ctx, userID, key)
		if err != nil {
			return Recommendation{}, err
		}
		if info == nil || info.Unlimited() || info.Limit == 0 {
			continue
		}
		if info.Percent() >= NearLimitPercent {
			rec.NearLimit = append(rec.NearLimit, *info)
		}
	}

	rec.Urgency = urgencyFor(len(rec.NearLimit))
	if next, ok := g.access.Plans().NextTier(plan.ID); ok {
		rec.RecommendedPlan = next
	}
	return rec, nil
}

func urgencyFor(flagged int) Urgency {
	switch {
	case flagged >= 3:
		return UrgencyHigh
	case flagged >= 2:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
