package scopes

import "errors"

// ErrInvalidScope is returned by Validate for empty scopes, whitespace or empty segments.
var ErrInvalidScope = errors.New("scopes: invalid scope")
