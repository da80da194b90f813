// Package log provides secure logging built on top of the standard slog package.
//
// SecureHandler masks sensitive attribute values before they reach the
// underlying handler:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - values that look like credentials (bearer tokens, JWTs, basic auth)
//   - credential query parameters inside logged URLs (token=, key=, sig=, ...)
//
// Cookies and headers come from the per-site configuration file, so even in
// verbose mode they never appear in log output.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("navigating", "url", "https://docs.example.com/docs?token=abc")
//	// url=https://docs.example.com/docs?token=%2A%2A%2AREDACTED%2A%2A%2A
package log
