// Package http provides the agent's HTTP handlers.
//
//	GET  /health       liveness plus bridge and remote breaker state
//	POST /v1/messages  one extension message, answered with its response
//	GET  /blocked      server-rendered block page
package http
