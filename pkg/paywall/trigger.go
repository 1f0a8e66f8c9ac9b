package paywall

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/entitlements/pkg/access"
	"github.com/dmitrymomot/entitlements/pkg/capacity"
	"github.com/dmitrymomot/entitlements/pkg/logger"
)

// UnavailableMessage is the text of the restriction returned when a check
// fails and fail-open is disabled.
const UnavailableMessage = "This action is unavailable right now. Please try again later."

// Request describes the action to pre-check.
type Request struct {
	UserID   string
	Action   string
	QuotaKey string // optional
	FlagKey  string // optional
	Amount   int64  // defaults to 1
}

// Trigger maps access decisions to restrictions.
type Trigger struct {
	guard    *access.Guard
	failOpen bool
	lang     language.Tag
	logger   *slog.Logger
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithFailOpen sets what Check returns when the check itself fails:
// nil (allowed) when true, a GenericRestriction when false. Defaults to true.
func WithFailOpen(on bool) Option {
	return func(t *Trigger) {
		t.failOpen = on
	}
}

// WithLanguage sets the locale used for prices. Defaults to English.
func WithLanguage(tag language.Tag) Option {
	return func(t *Trigger) {
		t.lang = tag
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trigger) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTrigger creates a Trigger over guard.
func NewTrigger(guard *access.Guard, opts ...Option) *Trigger {
	t := &Trigger{
		guard:    guard,
		failOpen: true,
		lang:     language.English,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(logger.Component("paywall"))
	return t
}

// FailOpen reports the configured failure policy.
func (t *Trigger) FailOpen() bool {
	return t.failOpen
}

// Check runs the access checks without consuming quota and returns the
// restriction to show, or nil when the action is allowed.
func (t *Trigger) Check(ctx context.Context, req Request) (r Restriction) {
	defer func() {
		if rec := recover(); rec != nil {
			r = t.fail(ctx, req, fmt.Errorf("%w: %v", ErrCheckPanicked, rec))
		}
	}()

	var opts []access.CheckOption
	if req.QuotaKey != "" {
		opts = append(opts, access.WithQuota(req.QuotaKey))
	}
	if req.FlagKey != "" {
		opts = append(opts, access.WithFlag(req.FlagKey))
	}
	if req.Amount > 0 {
		opts = append(opts, access.WithAmount(req.Amount))
	}

	res, err := t.guard.CanPerformAction(ctx, req.UserID, req.Action, opts...)
	if err != nil {
		return t.fail(ctx, req, err)
	}
	return t.FromResult(ctx, req.UserID, req.Action, res)
}

// FromResult maps a decision to a restriction. Allowed results map to nil.
func (t *Trigger) FromResult(ctx context.Context, userID, action string, res access.Result) Restriction {
	if res.Allowed {
		return nil
	}

	switch res.Reason {
	case access.ReasonFeatureOff:
		r := FeatureRestriction{Action: action, Reason: res.Reason}
		if res.Feature != nil {
			r.Feature = res.Feature.Key
		}
		return r

	case access.ReasonMissingScope:
		return FeatureRestriction{
			Action: action,
			Reason: res.Reason,
			Plan:   t.upgradeTo(res.RecommendedPlan),
		}

	case access.ReasonQuotaExceeded:
		if res.Quota != nil {
			return t.quotaRestriction(ctx, userID, res)
		}
	}

	return GenericRestriction{Reason: res.Reason, Text: res.Message}
}

func (t *Trigger) quotaRestriction(ctx context.Context, userID string, res access.Result) Restriction {
	info := res.Quota
	up := t.nextTier(ctx, userID)

	switch info.Key {
	case capacity.QuotaSnaps:
		return SnapsCapacity{Current: info.Current, Limit: info.Limit, Plan: up}
	case capacity.QuotaAnalysis:
		return AIDailyLimit{Used: info.Current, Limit: info.Limit, ResetAt: info.ResetTime, Plan: up}
	case capacity.QuotaStorage:
		return StorageLimit{
			UsedMB:      info.Current * MBPerGB,
			RequestedMB: res.RequestedMB,
			LimitMB:     info.Limit * MBPerGB,
			Plan:        up,
		}
	default:
		return GenericRestriction{Reason: res.Reason, Text: res.Message, Plan: up}
	}
}

func (t *Trigger) fail(ctx context.Context, req Request, err error) Restriction {
	t.logger.WarnContext(ctx, "entitlement check failed",
		logger.UserID(req.UserID),
		logger.Action(req.Action),
		logger.QuotaKey(req.QuotaKey),
		logger.FlagKey(req.FlagKey),
		slog.Bool("fail_open", t.failOpen),
		logger.Error(err),
	)
	if t.failOpen {
		return nil
	}
	return GenericRestriction{Text: UnavailableMessage}
}

func (t *Trigger) upgradeTo(planID string) Upgrade {
	if planID == "" {
		return Upgrade{}
	}
	plan, ok := t.guard.Plans().Plan(planID)
	if !ok {
		return Upgrade{}
	}
	up := Upgrade{PlanID: plan.ID, PlanName: plan.Name}
	if plan.Pricing != nil && plan.Pricing.Monthly != nil {
		up.MonthlyPrice = FormatPrice(t.lang, *plan.Pricing.Monthly)
	}
	return up
}

func (t *Trigger) nextTier(ctx context.Context, userID string) Upgrade {
	plan, err := t.guard.CurrentPlan(ctx, userID)
	if err != nil {
		t.logger.WarnContext(ctx, "cannot resolve plan for upgrade hint", logger.UserID(userID), logger.Error(err))
		return Upgrade{}
	}
	next, ok := t.guard.Plans().NextTier(plan.ID)
	if !ok {
		return Upgrade{}
	}
	return t.upgradeTo(next)
}
