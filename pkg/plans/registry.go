package plans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/dmitrymomot/entitlements/pkg/logger"
	"github.com/dmitrymomot/entitlements/pkg/scopes"
)

// Reader is the read-only view of the plan catalog consumed by the policies.
type Reader interface {
	// Plan returns a copy of the plan definition, or false for an unknown id.
	Plan(id string) (PlanDefinition, bool)

	// PlanIDs returns all plan ids in catalog order.
	PlanIDs() []string

	// DefaultPlanID is the plan used when a user has no valid plan.
	DefaultPlanID() string

	// ResolvePlan returns the plan for id, falling back to the default plan.
	ResolvePlan(id string) PlanDefinition

	// RecommendedPlanForAction returns the first plan in priority order whose
	// scopes grant action.
	RecommendedPlanForAction(action string) (string, bool)

	// NextTier returns the closest plan above id in the tier hierarchy.
	NextTier(id string) (string, bool)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used to report catalog warnings.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithDefaultPlan overrides the catalog's default plan id.
func WithDefaultPlan(id string) RegistryOption {
	return func(r *Registry) {
		if id != "" {
			r.defaultOverride = id
		}
	}
}

// Registry is an immutable plan catalog loaded from a Source.
// It is safe for concurrent use because nothing is modified after NewRegistry returns.
type Registry struct {
	plans         map[string]PlanDefinition
	order         []string
	priority      []string
	defaultPlanID string
	version       string
	lastUpdated   time.Time

	defaultOverride string
	log             *slog.Logger
}

// NewRegistry loads and validates the catalog from src.
func NewRegistry(ctx context.Context, src Source, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	catalog, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	if r.defaultOverride != "" {
		catalog.DefaultPlanID = r.defaultOverride
	}

	if err := validateCatalog(catalog); err != nil {
		return nil, err
	}

	r.plans = make(map[string]PlanDefinition, len(catalog.Plans))
	r.order = make([]string, 0, len(catalog.Plans))
	for _, p := range catalog.Plans {
		r.plans[p.ID] = p.clone()
		r.order = append(r.order, p.ID)

		for _, s := range p.Scopes {
			if scopes.IsLegacy(s) {
				r.log.InfoContext(ctx, "plan uses legacy scope form",
					logger.Component("plans"),
					logger.PlanID(p.ID),
					slog.String("scope", s),
					slog.String("canonical", scopes.Canonical(s)),
				)
			}
		}
	}
	r.priority = slices.Clone(catalog.Priority)
	r.defaultPlanID = catalog.DefaultPlanID
	r.version = catalog.Version
	r.lastUpdated = catalog.LastUpdated

	return r, nil
}

// Plan returns a copy of the plan definition for id.
func (r *Registry) Plan(id string) (PlanDefinition, bool) {
	p, ok := r.plans[id]
	if !ok {
		return PlanDefinition{}, false
	}
	return p.clone(), true
}

// PlanIDs returns all plan ids in catalog order.
func (r *Registry) PlanIDs() []string {
	return slices.Clone(r.order)
}

// DefaultPlanID returns the designated fallback plan.
func (r *Registry) DefaultPlanID() string {
	return r.defaultPlanID
}

// ResolvePlan returns the plan for id or the default plan when id is empty or unknown.
func (r *Registry) ResolvePlan(id string) PlanDefinition {
	if p, ok := r.plans[id]; ok {
		return p.clone()
	}
	return r.plans[r.defaultPlanID].clone()
}

// RecommendedPlanForAction scans the priority list and returns the first plan
// granting action. The result never depends on map iteration order.
func (r *Registry) RecommendedPlanForAction(action string) (string, bool) {
	for _, id := range r.priority {
		if scopes.HasScope(r.plans[id].Scopes, action) {
			return id, true
		}
	}
	return "", false
}

// NextTier returns the lowest plan whose tier is above the tier of id.
// Ties go to the plan listed first in the catalog.
func (r *Registry) NextTier(id string) (string, bool) {
	current := r.ResolvePlan(id)

	next, found := "", false
	for _, candidateID := range r.order {
		candidate := r.plans[candidateID]
		if candidate.Tier <= current.Tier {
			continue
		}
		if !found || candidate.Tier < r.plans[next].Tier {
			next, found = candidateID, true
		}
	}
	return next, found
}

// Version returns the catalog version.
func (r *Registry) Version() string {
	return r.version
}

// LastUpdated returns the catalog timestamp.
func (r *Registry) LastUpdated() time.Time {
	return r.lastUpdated
}

func validateCatalog(c Catalog) error {
	if len(c.Plans) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(c.Plans))
	for _, p := range c.Plans {
		if p.ID == "" {
			return errors.Join(ErrInvalidPlanConfiguration, errors.New("plan id cannot be empty"))
		}
		if _, dup := seen[p.ID]; dup {
			return errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("duplicate plan id %s", p.ID))
		}
		seen[p.ID] = struct{}{}

		for _, s := range p.Scopes {
			if err := scopes.Validate(s); err != nil {
				return errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("plan %s scope %q", p.ID, s), err)
			}
		}
		for key, limit := range p.Quotas {
			if limit < Unlimited {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s has invalid limit for %s: %d", p.ID, key, limit))
			}
		}
	}

	if _, ok := seen[c.DefaultPlanID]; !ok {
		return errors.Join(ErrDefaultPlanNotFound, fmt.Errorf("default plan %q", c.DefaultPlanID))
	}

	if len(c.Priority) == 0 {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("priority list cannot be empty"))
	}
	for _, id := range c.Priority {
		if _, ok := seen[id]; !ok {
			return errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("priority references unknown plan %s", id))
		}
	}
	return nil
}
