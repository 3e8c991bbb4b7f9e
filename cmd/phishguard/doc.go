// Command phishguard runs the PhishGuard navigation guard agent.
//
// Usage:
//
//	phishguard serve [--port 8765]
//	phishguard check <url>
//	phishguard id
//	phishguard blocked list|add <url>|remove <url>
//
// See internal/infrastructure/config for the environment variables.
package main
