// Package capacity answers storage and usage capacity questions by composing
// access.Guard calls.
//
// Can* methods never consume quota. Record* and Consume* methods consume on
// success. CanAddSnapWithSize additionally compares the requested size against
// the plan's storage limit, converted from GB to MB.
//
// UpgradeRecommendation inspects the watched quotas, flags those at or above
// 80% of their limit and escalates urgency with the number of flagged quotas.
package capacity
