package plans

import (
	"maps"
	"slices"
)

// Unlimited marks a quota with no ceiling (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// Money represents a monetary amount in the smallest currency unit.
// For example, $4.99 USD would be Amount: 499, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// Pricing lists the optional price points of a plan.
type Pricing struct {
	Monthly  *Money `yaml:"monthly,omitempty"`
	Yearly   *Money `yaml:"yearly,omitempty"`
	Lifetime *Money `yaml:"lifetime,omitempty"`
}

// PlanDefinition describes one subscription tier.
type PlanDefinition struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Tier        int              `yaml:"tier"`     // position in the upgrade hierarchy, lowest first
	Scopes      []string         `yaml:"scopes"`   // literal, "x.*" or legacy "x.basic"
	Quotas      map[string]int64 `yaml:"quotas"`   // -1 represents unlimited
	Features    map[string]bool  `yaml:"features"` // plan default for each feature key
	Pricing     *Pricing         `yaml:"pricing,omitempty"`
}

// QuotaLimit returns the plan's limit for key. Absent keys have zero quota.
func (p PlanDefinition) QuotaLimit(key string) (int64, bool) {
	limit, ok := p.Quotas[key]
	return limit, ok
}

// IsFree reports whether the plan has no price points.
func (p PlanDefinition) IsFree() bool {
	return p.Pricing == nil || (p.Pricing.Monthly == nil && p.Pricing.Yearly == nil && p.Pricing.Lifetime == nil)
}

// clone returns a deep copy so callers cannot mutate registry state.
func (p PlanDefinition) clone() PlanDefinition {
	cp := p
	cp.Scopes = slices.Clone(p.Scopes)
	cp.Quotas = maps.Clone(p.Quotas)
	cp.Features = maps.Clone(p.Features)
	if p.Pricing != nil {
		pricing := Pricing{
			Monthly:  cloneMoney(p.Pricing.Monthly),
			Yearly:   cloneMoney(p.Pricing.Yearly),
			Lifetime: cloneMoney(p.Pricing.Lifetime),
		}
		cp.Pricing = &pricing
	}
	return cp
}

func cloneMoney(m *Money) *Money {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}
