package service

import (
	"errors"
	"net/http"
)

// KindBusy is the error kind reported for admission rejections.
const KindBusy = "busy"

// tooBusyError signals that every in-flight slot is taken (429).
type tooBusyError struct{}

func (tooBusyError) Error() string   { return "Server is busy, retry later." }
func (tooBusyError) StatusCode() int { return http.StatusTooManyRequests }
func (tooBusyError) Kind() string    { return KindBusy }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// drainingError signals that the service is shutting down.
type drainingError struct{}

func (drainingError) Error() string   { return "Server is shutting down." }
func (drainingError) StatusCode() int { return http.StatusServiceUnavailable }
func (drainingError) Kind() string    { return KindBusy }

// IsDraining reports whether err was returned because Close was called.
func IsDraining(err error) bool {
	var e drainingError
	return errors.As(err, &e)
}
