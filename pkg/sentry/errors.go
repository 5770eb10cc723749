package sentry

import "github.com/cockroachdb/errors"

var (
	ErrNilConfig     = errors.New("sentry: config is nil")
	ErrInvalidDSN    = errors.New("sentry: dsn is required")
	ErrInvalidConfig = errors.New("sentry: invalid config")
	ErrClientClosed  = errors.New("sentry: client closed")
)
