package paywall

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/entitlements/pkg/access"
)

// Restriction describes why an action is blocked. The set of implementations
// is closed to this package.
type Restriction interface {
	// Message is a user-facing explanation, including the upgrade hint.
	Message() string
	// Upgrade returns the suggested plan, zero when none applies.
	Upgrade() Upgrade

	restriction()
}

// Upgrade is a suggested plan.
type Upgrade struct {
	PlanID       string `json:"plan_id"`
	PlanName     string `json:"plan_name"`
	MonthlyPrice string `json:"monthly_price,omitempty"` // formatted, empty when the plan has no monthly price
}

// IsZero reports whether no plan is suggested.
func (u Upgrade) IsZero() bool {
	return u.PlanID == ""
}

func (u Upgrade) hint() string {
	switch {
	case u.IsZero():
		return ""
	case u.MonthlyPrice != "":
		return fmt.Sprintf(" Upgrade to %s for %s/month.", u.PlanName, u.MonthlyPrice)
	default:
		return fmt.Sprintf(" Upgrade to %s.", u.PlanName)
	}
}

// SnapsCapacity is shown when the snap count is at its limit.
type SnapsCapacity struct {
	Current int64   `json:"current"`
	Limit   int64   `json:"limit"`
	Plan    Upgrade `json:"upgrade"`
}

func (r SnapsCapacity) Message() string {
	return fmt.Sprintf("You have reached the limit of %d snaps.", r.Limit) + r.Plan.hint()
}

func (r SnapsCapacity) Upgrade() Upgrade { return r.Plan }
func (SnapsCapacity) restriction() {}

// AIDailyLimit is shown when the daily analysis quota is used up.
type AIDailyLimit struct {
	Used    int64     `json:"used"`
	Limit   int64     `json:"limit"`
	ResetAt time.Time `json:"reset_at,omitzero"`
	Plan    Upgrade   `json:"upgrade"`
}

func (r AIDailyLimit) Message() string {
	return fmt.Sprintf("You have used all %d AI analyses for today. More are available after midnight.", r.Limit) + r.Plan.hint()
}

func (r AIDailyLimit) Upgrade() Upgrade { return r.Plan }
func (AIDailyLimit) restriction() {}

// StorageLimit is shown when a new item would not fit.
type StorageLimit struct {
	UsedMB      int64   `json:"used_mb"`
	RequestedMB int64   `json:"requested_mb"`
	LimitMB     int64   `json:"limit_mb"`
	Plan        Upgrade `json:"upgrade"`
}

func (r StorageLimit) Message() string {
	if r.RequestedMB <= 0 {
		return fmt.Sprintf("You have reached the storage limit of %d MB.", r.LimitMB) + r.Plan.hint()
	}
	return fmt.Sprintf("Not enough storage: %d MB needed, %d MB of %d MB available.",
		r.RequestedMB, max(0, r.LimitMB-r.UsedMB), r.LimitMB) + r.Plan.hint()
}

func (r StorageLimit) Upgrade() Upgrade { return r.Plan }
func (StorageLimit) restriction() {}

// FeatureRestriction is shown when the plan lacks the action or the feature
// is switched off.
type FeatureRestriction struct {
	Action  string            `json:"action"`
	Feature string            `json:"feature,omitempty"` // toggle key when switched off
	Reason  access.DenyReason `json:"reason"`
	Plan    Upgrade           `json:"upgrade"`
}

func (r FeatureRestriction) Message() string {
	if r.Reason == access.ReasonFeatureOff {
		return fmt.Sprintf("%s is temporarily unavailable.", r.Action)
	}
	if r.Plan.IsZero() {
		return fmt.Sprintf("%s is not available on any plan.", r.Action)
	}
	return fmt.Sprintf("%s is not included in your plan.", r.Action) + r.Plan.hint()
}

func (r FeatureRestriction) Upgrade() Upgrade { return r.Plan }
func (FeatureRestriction) restriction() {}

// GenericRestriction covers every other denial.
type GenericRestriction struct {
	Reason access.DenyReason `json:"reason,omitempty"`
	Text   string            `json:"message"`
	Plan   Upgrade           `json:"upgrade"`
}

func (r GenericRestriction) Message() string { return r.Text + r.Plan.hint() }
func (r GenericRestriction) Upgrade() Upgrade { return r.Plan }
func (GenericRestriction) restriction() {}
