// Package access decides whether a user may perform an action.
//
// A Guard combines three checks in a fixed order, stopping at the first one
// that fails:
//
//  1. feature toggle, when a flag key is given (FEATURE_OFF)
//  2. scope of the user's current plan (MISSING_SCOPE)
//  3. quota, when a quota key is given (QUOTA_EXCEEDED)
//
// AllowAction consumes quota when all three pass. CanPerformAction runs the
// same checks and never consumes.
//
//	guard := access.NewGuard(registry, assignments.Resolver(), quotaPolicy, flags)
//
//	res, err := guard.AllowAction(ctx, userID, "analysis.run.single",
//	    access.WithQuota("analysis.day"),
//	    access.WithFlag("emergency.analysis.off"),
//	)
//	if err != nil {
//	    return err // plan source or store failure
//	}
//	if !res.Allowed {
//	    // res.Reason, res.Message, res.RecommendedPlan
//	}
//
// Denials are values, never errors. The error return is reserved for
// infrastructure failures.
//
// Flags prefixed with "emergency." are kill switches: a stored true means the
// guarded feature is off. EffectiveEnabled applies that inversion.
package access
