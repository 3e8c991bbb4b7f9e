/*
Package remote is the client for the remote analysis service.

All operations are JSON POSTs under a configurable base URL:

  - CheckBlocked: block-list lookup, answered as {is_blocked: 0|1} or {blocked: bool}
  - Analyze: full verdict {decision, reason, score?, suggested_official_url?, block_origin?}
  - GlobalInfo: cached verdict {ai_score?, ai_reason?, official_url?}
  - Report, SetOverride, RemoveOverride, ListOverrides: personal block list

# Errors

Failures are classified into sentinels callers branch on with errors.Is:

  - ErrUnreachable: connection failure, timeout, rate limiter or open circuit
  - ErrServer: any non-2xx answer, carried as *StatusError
  - ErrMalformed: a 2xx answer that is not JSON or lacks a required field
  - ErrAlreadyReported: a 409 from Report

# Transport

Requests go through resty on the pooled retryablehttp transport. Retries use
the retryablehttp policy and stay inside the per-call deadline. A token bucket
limits the request rate and a circuit breaker opens after consecutive
failures so a dead service fails fast. A 4xx does not trip the breaker.
*/
package remote
