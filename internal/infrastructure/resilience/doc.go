/*
Package resilience provides the circuit breaker in front of the remote
analysis service.

When the service is down the breaker opens and calls fail immediately with
ErrCircuitOpen, which the navigation guard handles like any other unreachable
backend: it fails open to a warning instead of leaving tabs waiting on a
connect timeout.

# Usage

	breaker := resilience.New("remote-analysis", resilience.Settings{
		MaxRequests: 3,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	resp, err := resilience.Execute(breaker, func() (*resty.Response, error) {
		return req.Post(path)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience
