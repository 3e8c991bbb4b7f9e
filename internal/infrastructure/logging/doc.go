// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr so the CLI can keep stdout for command output.
// Components take a child logger named after themselves:
//
//	logger := logging.NewDefault().Component("guard")
//	logger.Warn("remote unreachable", zap.String("url", u), zap.Error(err))
package logging
