package quota

import (
	"math"
	"strings"
	"time"
)

// Unbounded is what Remaining reports for unlimited quotas.
const Unbounded int64 = math.MaxInt64

// ResetType is the replenishment cadence of a quota.
type ResetType string

const (
	ResetDaily   ResetType = "DAILY"
	ResetWeekly  ResetType = "WEEKLY" // reserved, no key suffix maps to it
	ResetMonthly ResetType = "MONTHLY"
	ResetYearly  ResetType = "YEARLY"
	ResetNever   ResetType = "NEVER" // reserved
)

// Key suffixes that select the reset cadence.
const (
	SuffixDay   = ".day"
	SuffixMonth = ".month"
	SuffixYear  = ".year"
)

// Window lengths per cadence.
const (
	DayPeriod   = 24 * time.Hour
	MonthPeriod = 30 * DayPeriod
	YearPeriod  = 365 * DayPeriod
)

// ResetTypeForKey derives the cadence from the key suffix. Defaults to daily.
func ResetTypeForKey(key string) ResetType {
	switch {
	case strings.HasSuffix(key, SuffixMonth):
		return ResetMonthly
	case strings.HasSuffix(key, SuffixYear):
		return ResetYearly
	default:
		return ResetDaily
	}
}

// PeriodForKey returns the window length for key.
func PeriodForKey(key string) time.Duration {
	switch ResetTypeForKey(key) {
	case ResetMonthly:
		return MonthPeriod
	case ResetYearly:
		return YearPeriod
	default:
		return DayPeriod
	}
}

// NextReset returns the reset time of a window for key opened at from.
func NextReset(key string, from time.Time) time.Time {
	return from.Add(PeriodForKey(key))
}

// Usage is the counter state a Store reports.
type Usage struct {
	Used    int64
	ResetAt time.Time // zero when no window is open
}

// Info is a point-in-time snapshot of a user's quota.
type Info struct {
	Key       string    `json:"key"`
	Current   int64     `json:"current"`
	Limit     int64     `json:"limit"` // -1 for unlimited
	ResetTime time.Time `json:"reset_time"`
	ResetType ResetType `json:"reset_type"`
}

// Unlimited reports whether the snapshot has no ceiling.
func (i Info) Unlimited() bool {
	return i.Limit < 0
}

// Remaining returns the units left, or Unbounded.
func (i Info) Remaining() int64 {
	if i.Unlimited() {
		return Unbounded
	}
	if i.Current <= 0 {
		return i.Limit
	}
	return max(0, i.Limit-i.Current)
}

// Percent returns usage as a percentage (0-100), -1 for unlimited and 100 for a zero limit.
func (i Info) Percent() int {
	if i.Unlimited() {
		return -1
	}
	if i.Limit == 0 {
		return 100
	}
	return int(min((i.Current*100)/i.Limit, 100))
}
