// Package plans holds the plan catalog of the entitlement engine and answers
// lookups against it.
//
// A PlanDefinition bundles scopes, quota limits, default feature values and
// pricing for one subscription tier. A Catalog is the ordered, versioned set of
// definitions plus the designated default plan and the explicit priority list
// used for upgrade suggestions. Catalogs come from a Source (the built-in
// default catalog, a static value, or a YAML file) and are loaded once into a
// Registry, which is read-only afterwards.
//
// The current plan of a user is external state. It is read through a
// PlanIDResolver on every decision; Assignments is an in-memory implementation
// suitable for tests and single-process apps.
//
// Basic usage:
//
//	reg, err := plans.NewRegistry(ctx, plans.DefaultSource())
//	if err != nil {
//	    return err
//	}
//
//	assignments := plans.NewAssignments()
//	assignments.SetUserPlan(userID, plans.PlanPremium)
//
//	plan, err := plans.Resolve(ctx, reg, assignments.Resolver(), userID)
//
// Unknown or empty plan ids never fail: they resolve to the catalog's default
// plan so a stale reference degrades to the most restrictive tier.
package plans
