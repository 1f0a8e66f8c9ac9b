// Package paywall turns denied access decisions into upgrade prompts.
//
// A Restriction is one of SnapsCapacity, AIDailyLimit, StorageLimit,
// FeatureRestriction or GenericRestriction. Each carries the numbers the UI
// needs and, when an upgrade would help, the suggested plan with its monthly
// price.
//
// Trigger.Check runs the access checks without consuming quota and maps a
// denial. When the check itself fails (plan source down, store unreachable,
// panic) the trigger fails open by default: the failure is logged at warn
// level and the action is treated as allowed. WithFailOpen(false) returns a
// GenericRestriction instead.
//
// CheckSnapsCapacity, CheckAIDaily and CheckStorage compare raw numbers and
// are meant for UI-side pre-checks that do not go through the engine.
package paywall
