package access

import "errors"

var (
	ErrPlanLookupFailed   = errors.New("access: failed to resolve user plan")
	ErrFeatureCheckFailed = errors.New("access: failed to read feature toggle")
	ErrQuotaCheckFailed   = errors.New("access: failed to check quota")
)
