// Package feature provides the global feature toggles of the entitlement engine.
//
// A toggle is a flat key to bool switch shared by every user. There are no
// rollout strategies and no per-user variation: toggles are flipped by
// administrative action or populated from an external remote-config source.
//
// Keys prefixed with "emergency." are kill switches. The store keeps their raw
// value like any other key; callers that gate functionality on them (see package
// access) read a stored true as "feature forced off". IsEmergencyKey exposes the
// naming convention.
//
// # Providers
//
// MemoryProvider keeps toggles in a map guarded by a RWMutex. RedisProvider keeps
// them in a Redis hash so several processes can share one set of switches.
//
//	provider, err := feature.NewMemoryProvider(
//	    &feature.Flag{Key: "analysis.ai", Enabled: true},
//	    &feature.Flag{Key: "emergency.analysis.off", Description: "kill switch for AI analysis"},
//	)
//	if err != nil {
//	    return err
//	}
//
//	on, err := provider.IsOn(ctx, "analysis.ai")
//
// Unknown keys are not errors for IsOn: they read as off. GetFlag returns
// ErrFlagNotFound so administrative tooling can tell the two apart.
package feature
