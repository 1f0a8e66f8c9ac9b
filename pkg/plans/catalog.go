package plans

import (
	"slices"
	"time"
)

// Plan identifiers of the default catalog.
const (
	PlanGuest      = "GUEST"
	PlanFree       = "FREE_USER"
	PlanPremium    = "PREMIUM_USER"
	PlanEnterprise = "ENTERPRISE_USER"
)

// Catalog is the ordered set of plan definitions plus metadata.
type Catalog struct {
	Version       string           `yaml:"version"`
	LastUpdated   time.Time        `yaml:"last_updated"`
	DefaultPlanID string           `yaml:"default_plan"`
	Priority      []string         `yaml:"priority"` // recommendation order, independent of Plans order
	Plans         []PlanDefinition `yaml:"plans"`
}

func (c Catalog) clone() Catalog {
	cp := c
	cp.Priority = slices.Clone(c.Priority)
	cp.Plans = make([]PlanDefinition, len(c.Plans))
	for i, p := range c.Plans {
		cp.Plans[i] = p.clone()
	}
	return cp
}

// DefaultPriority is the recommendation order of the default catalog.
//
// FREE_USER is ranked ahead of GUEST even though GUEST is the lower tier. The
// order is kept as shipped so existing upgrade prompts stay stable.
var DefaultPriority = []string{PlanFree, PlanGuest, PlanPremium, PlanEnterprise}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	premiumScopes := []string{
		"memory.*",
		"quiz.*",
		"dashboard.*",
		"analysis.*",
		"export.*",
		"backup.*",
		"location.*",
		"audio.*",
	}

	return Catalog{
		Version:       "2024.06",
		LastUpdated:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		DefaultPlanID: PlanFree,
		Priority:      slices.Clone(DefaultPriority),
		Plans: []PlanDefinition{
			{
				ID:          PlanGuest,
				Name:        "Guest",
				Description: "Try the app without an account",
				Tier:        0,
				Scopes:      []string{"memory.view", "quiz.take", "dashboard.view"},
				Quotas: map[string]int64{
					"snaps.capacity": 5,
					"analysis.day":   1,
					"storage.gb":     0,
				},
				Features: map[string]bool{},
			},
			{
				ID:          PlanFree,
				Name:        "Free",
				Description: "Everyday journaling with daily insights",
				Tier:        1,
				Scopes: []string{
					"memory.view",
					"memory.create",
					"memory.edit",
					"quiz.*",
					"dashboard.view",
					"analysis.run.single",
					"export.basic",
					"location.search",
				},
				Quotas: map[string]int64{
					"snaps.capacity": 50,
					"analysis.day":   5,
					"storage.gb":     1,
					"export.month":   3,
					"backup.month":   0,
				},
				Features: map[string]bool{"insights.weekly": false},
			},
			{
				ID:          PlanPremium,
				Name:        "Premium",
				Description: "Unlimited exports, backups and full analysis",
				Tier:        2,
				Scopes:      slices.Clone(premiumScopes),
				Quotas: map[string]int64{
					"snaps.capacity": 1000,
					"analysis.day":   50,
					"storage.gb":     10,
					"export.month":   Unlimited,
					"backup.month":   30,
				},
				Features: map[string]bool{"insights.weekly": true},
				Pricing: &Pricing{
					Monthly:  &Money{Amount: 499, Currency: "USD"},
					Yearly:   &Money{Amount: 3999, Currency: "USD"},
					Lifetime: &Money{Amount: 9999, Currency: "USD"},
				},
			},
			{
				ID:          PlanEnterprise,
				Name:        "Enterprise",
				Description: "Teams, reporting and API access",
				Tier:        3,
				Scopes:      append(slices.Clone(premiumScopes), "api.*", "team.*", "admin.reports"),
				Quotas: map[string]int64{
					"snaps.capacity": Unlimited,
					"analysis.day":   Unlimited,
					"storage.gb":     100,
					"export.month":   Unlimited,
					"backup.month":   Unlimited,
				},
				Features: map[string]bool{"insights.weekly": true},
				Pricing: &Pricing{
					Monthly: &Money{Amount: 1999, Currency: "USD"},
					Yearly:  &Money{Amount: 19999, Currency: "USD"},
				},
			},
		},
	}
}
