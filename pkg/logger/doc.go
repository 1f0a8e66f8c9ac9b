// Package logger builds the *slog.Logger used across the entitlement engine and
// provides attribute constructors so decision logs share the same keys.
//
// New applies functional options (format, level, output, static attributes,
// context extractors) and wraps the chosen slog handler with a decorator that
// pulls request-scoped values out of context.Context on every record.
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithAttr(logger.Component("entitlements")),
//	)
//
//	log.DebugContext(ctx, "access denied",
//	    logger.UserID(userID),
//	    logger.Action("export.pdf"),
//	    logger.Reason("MISSING_SCOPE"),
//	)
//
// Attribute helpers return an empty slog.Attr for nil or empty input, which slog
// drops silently.
package logger
