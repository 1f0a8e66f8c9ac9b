package plans

import "errors"

var (
	ErrFailedToLoadCatalog      = errors.New("plans.errors.failed_to_load_catalog")
	ErrInvalidPlanConfiguration = errors.New("plans.errors.invalid_plan_configuration")
	ErrEmptyCatalog             = errors.New("plans.errors.empty_catalog")
	ErrDefaultPlanNotFound      = errors.New("plans.errors.default_plan_not_found")
	ErrFailedToResolvePlanID    = errors.New("plans.errors.failed_to_resolve_plan_id")
)
