package plans

import (
	"context"
	"errors"
	"sync"
)

// PlanIDResolver resolves the current plan id for a user.
// An empty id with a nil error means "no plan", which falls back to the default plan.
type PlanIDResolver func(ctx context.Context, userID string) (string, error)

// Assignments is an in-memory user to plan mapping.
type Assignments struct {
	mu    sync.RWMutex
	plans map[string]string
}

// NewAssignments returns an empty Assignments.
func NewAssignments() *Assignments {
	return &Assignments{plans: make(map[string]string)}
}

// SetUserPlan records planID as the current plan of userID.
func (a *Assignments) SetUserPlan(userID, planID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.plans[userID] = planID
}

// ClearUserPlan removes the assignment, e.g. on logout.
func (a *Assignments) ClearUserPlan(userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.plans, userID)
}

// CurrentPlanID returns the recorded plan id or an empty string.
func (a *Assignments) CurrentPlanID(ctx context.Context, userID string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.plans[userID], nil
}

// Resolver exposes the assignments as a PlanIDResolver.
func (a *Assignments) Resolver() PlanIDResolver {
	return a.CurrentPlanID
}

// Static returns a resolver that reports planID for every user.
func Static(planID string) PlanIDResolver {
	return func(context.Context, string) (string, error) {
		return planID, nil
	}
}

// Resolve returns the current plan of userID, re-reading the resolver every time.
// Resolver failures are returned wrapped in ErrFailedToResolvePlanID.
func Resolve(ctx context.Context, reg Reader, resolve PlanIDResolver, userID string) (PlanDefinition, error) {
	if resolve == nil {
		return reg.ResolvePlan(""), nil
	}
	id, err := resolve(ctx, userID)
	if err != nil {
		return PlanDefinition{}, errors.Join(ErrFailedToResolvePlanID, err)
	}
	return reg.ResolvePlan(id), nil
}
