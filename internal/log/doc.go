// Package log provides secure logging for privacyscan, built on top of the
// standard slog package.
//
// Evidence handled by privacyscan is collected from real websites, so it
// routinely contains cookie values, session identifiers and the occasional
// bearer token. The SecureHandler keeps those out of log output:
//   - Cookie attributes keep their names but lose their values
//     ("session=abc123; theme=dark" is logged as "session=***; theme=***")
//   - Authorization, session and token attributes are replaced entirely
//   - Token-shaped values (JWTs, bearer and basic credentials, long keys)
//     are replaced regardless of the attribute name
//
// Verbose mode only lowers the log level; it never disables sanitization.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("cookie observed", "cookie", "sid=abc123")
package log
