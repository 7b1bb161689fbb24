// Package log provides the application's slog setup.
//
// RedactingHandler wraps any slog.Handler and rewrites attributes before
// they reach it:
//   - Values under credential keys (apiKey, token, password, ...) are replaced
//     with MaskValue.
//   - The key query parameter of URL values is masked, so Shadertoy API
//     requests can be logged as-is.
//   - Long string values, such as shader code blocks, are truncated to
//     MaxValueLength characters.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("lookup request", "url", "https://www.shadertoy.com/api/v1/shaders/XsXXDn?key=abc")
//	// url=https://www.shadertoy.com/api/v1/shaders/XsXXDn?key=***REDACTED***
package log
