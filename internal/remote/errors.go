package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/resilience"
)

var (
	// ErrUnreachable covers connection failures, timeouts and an open circuit.
	ErrUnreachable = errors.New("analysis service unreachable")
	// ErrServer is matched by every *StatusError.
	ErrServer = errors.New("analysis service error")
	// ErrMalformed means the body was not JSON or lacked a required field.
	ErrMalformed = errors.New("malformed analysis service response")
	// ErrAlreadyReported is returned by Report for a 409.
	ErrAlreadyReported = errors.New("url already reported")
	// ErrNotApplied means the service acknowledged an override with success=false.
	ErrNotApplied = errors.New("override not applied")
)

// StatusError is a non-2xx answer from the analysis service.
type StatusError struct {
	Endpoint Endpoint
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d %s", e.Endpoint, e.Code, http.StatusText(e.Code))
}

// Is makes errors.Is(err, ErrServer) true for any status error.
func (e *StatusError) Is(target error) bool {
	return target == ErrServer
}

// Temporary reports whether the failure is on the server side.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500
}

// statusLabel maps an error to the metrics status label.
func statusLabel(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		if se.Code >= 500 {
			return "status_5xx"
		}
		return "status_4xx"
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unreachable"
	}
}
