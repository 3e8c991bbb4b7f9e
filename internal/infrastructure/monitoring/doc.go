/*
Package monitoring provides Prometheus metrics for the agent.

# Overview

Metrics live on a dedicated registry so several agents (or tests) can coexist
in one process. A nil *Metrics is accepted everywhere and records nothing.

# Metrics

  - phishguard_http_requests_total, phishguard_http_request_duration_seconds
  - phishguard_guard_evaluations_total{rating,path}
  - phishguard_guard_pending_evaluations
  - phishguard_guard_tab_actions_total{action,result}
  - phishguard_guard_dropped_actions_total{reason}
  - phishguard_remote_calls_total{endpoint,status}
  - phishguard_overrides_total{decision,result}
  - phishguard_bridge_connections, phishguard_bridge_messages_total

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "analyze")
	// ... call remote ...
	timer.Stop("ok")
*/
package monitoring
