package paywall

// MBPerGB converts storage limits to megabytes.
const MBPerGB = 1024

// CheckSnapsCapacity returns a restriction when current has reached limit.
// A negative limit is unlimited.
func CheckSnapsCapacity(current, limit int64) Restriction {
	if limit < 0 || current < limit {
		return nil
	}
	return SnapsCapacity{Current: current, Limit: limit}
}

// CheckAIDaily returns a restriction when used has reached limit.
func CheckAIDaily(used, limit int64) Restriction {
	if limit < 0 || used < limit {
		return nil
	}
	return AIDailyLimit{Used: used, Limit: limit}
}

// CheckStorage returns a restriction when requestMB does not fit next to
// usedMB within limitGB.
func CheckStorage(usedMB, requestMB, limitGB int64) Restriction {
	if limitGB < 0 {
		return nil
	}
	limitMB := limitGB * MBPerGB
	if usedMB+requestMB <= limitMB {
		return nil
	}
	return StorageLimit{UsedMB: usedMB, RequestedMB: requestMB, LimitMB: limitMB}
}
