package inflight

import "errors"

// ErrInFlight is returned when the same operation is already being submitted.
var ErrInFlight = errors.New("operation already in progress")
