// Package scopes implements the permission-string matcher shared by every part of
// the entitlement engine.
//
// A scope is an opaque string such as "memory.create". Plans carry scope lists and
// callers ask whether a requested action is covered by one of them. Three forms are
// understood:
//
//   - Literal: "memory.create" matches only "memory.create".
//   - Wildcard suffix: "memory.*" matches every action starting with "memory.".
//   - Legacy basic suffix: "export.basic" matches "export.basic" itself and every
//     action starting with "export.". New plans should use the wildcard form.
//
// A prefix never matches without the trailing separator, so "exporting" is not
// covered by "export.*".
//
// # Usage
//
//	import "github.com/dmitrymomot/entitlements/pkg/scopes"
//
//	granted := scopes.ParseScopes("memory.* quiz.take export.basic")
//	if scopes.HasScope(granted, "export.pdf") {
//	    // …
//	}
//
// Canonical rewrites the legacy form into the wildcard form and is used by the
// plan registry to report catalogs that still rely on it.
package scopes
