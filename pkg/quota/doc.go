// Package quota tracks per-user usage counters against plan limits.
//
// Each (user, quota key) pair has a counter that is created on first
// consumption and lives until its reset time. The reset cadence is inferred from
// the key's suffix, a naming convention rather than a parsed schedule:
//
//	"analysis.day"   -> DAILY,   window of 24h
//	"export.month"   -> MONTHLY, window of 30 days
//	"storage.year"   -> YEARLY,  window of 365 days
//	anything else    -> DAILY
//
// Policy reads the user's current plan on every call and asks a Store to
// consume atomically: the check against the limit and the increment happen in
// one critical section, so two concurrent callers can never both take the last
// unit. A denied consumption leaves the counter untouched.
//
// Stores are ports. MemoryStore serves a single process; RedisStore and
// PostgresStore let the counters live in an external system without changing
// the decision logic.
//
//	policy := quota.NewPolicy(registry, assignments.Resolver(), quota.NewMemoryStore())
//
//	ok, err := policy.CheckAndConsume(ctx, userID, "analysis.day", 1)
//	if err != nil {
//	    return err // store or plan source failure
//	}
//	if !ok {
//	    // limit reached
//	}
//
// Keys missing from the plan have zero quota. A limit of -1 is unbounded and
// Remaining reports Unbounded for it.
package quota
