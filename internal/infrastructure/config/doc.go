// Package config provides 12-factor configuration management for the PhishGuard agent.
//
// Configuration is loaded from environment variables with sensible defaults.
// A .env file is honoured when present, and a guard profile file (YAML or
// TOML) can override navigation guard policy without touching the environment.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Remote: Remote analysis service base URL, timeout, endpoint paths
//   - Guard: Danger action, overlay delay, debounce window, extension origin
//   - Store: Client identity persistence (file, redis, memory)
//   - Bridge: Extension WebSocket bridge settings
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	_ = config.LoadDotEnv()
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Agent listening on %s\n", cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST
//   - REMOTE_BASE_URL, REMOTE_TIMEOUT, REMOTE_RETRIES, REMOTE_RPS, REMOTE_*_PATH
//   - GUARD_PROFILE, GUARD_DANGER_ACTION, GUARD_OVERLAY_DELAY, GUARD_DEBOUNCE
//   - EXTENSION_ORIGIN, BLOCK_PAGE_URL, SYSTEM_SCORE_THRESHOLD, GUARD_ENRICH
//   - KV_BACKEND, KV_PATH, REDIS_ADDR, REDIS_PASSWORD, REDIS_KEY_PREFIX
//   - BRIDGE_COMMAND_TIMEOUT, BRIDGE_ALLOWED_ORIGINS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
