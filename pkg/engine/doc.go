// Package engine assembles the entitlement services into one value.
//
// It reads a Config from ENTITLEMENT_* environment variables, loads the plan
// catalog, selects quota and feature backends, and wires plans, quotas,
// feature toggles, the access guard, capacity checks and the paywall trigger
// together. Nothing here is global: every Engine owns its services and closes
// the connections it opened.
//
// Basic usage:
//
//	var cfg engine.Config
//	if err := engine.LoadConfig(&cfg); err != nil {
//		return err
//	}
//	eng, err := engine.New(ctx, cfg, engine.WithRegisterer(prometheus.DefaultRegisterer))
//	if err != nil {
//		return err
//	}
//	defer eng.Close()
//
//	res, err := eng.Access.AllowAction(ctx, userID, "analysis.run.single",
//		access.WithQuota("analysis.day"), access.WithFlag("emergency.analysis.off"))
//
// Backends are chosen with ENTITLEMENT_QUOTA_BACKEND (memory, redis, postgres)
// and ENTITLEMENT_FEATURE_BACKEND (memory, redis).
package engine
