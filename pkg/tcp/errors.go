package tcp

import "github.com/cockroachdb/errors"

var (
	ErrInvalidConfig = errors.New("tcp: invalid config")

	ErrServerAlreadyStarted = errors.New("tcp: server already started")
	ErrServerNotStarted     = errors.New("tcp: server not started")

	// 准入拒绝
	ErrServerBusy  = errors.New("tcp: worker pool exhausted")
	ErrRateLimited = errors.New("tcp: accept rate limited")

	ErrReadTimeout    = errors.New("tcp: read timeout")
	ErrWriteTimeout   = errors.New("tcp: write timeout")
	ErrHandlerPanic   = errors.New("tcp: handler panic")
	ErrSessionClosed  = errors.New("tcp: session closed")
	ErrResponseTooBig = errors.New("tcp: response too large")
)
