package paywall

import "errors"

// ErrCheckPanicked marks a recovered panic inside an entitlement check.
var ErrCheckPanicked = errors.New("paywall: entitlement check panicked")
