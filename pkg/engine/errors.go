package engine

import "errors"

var (
	ErrInvalidConfig       = errors.New("engine: invalid configuration")
	ErrFailedToLoadPlans   = errors.New("engine: failed to load plan catalog")
	ErrFailedToOpenBackend = errors.New("engine: failed to open backend")
	ErrHealthcheckFailed   = errors.New("engine: healthcheck failed")
)
