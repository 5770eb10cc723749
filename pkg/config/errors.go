package config

import "github.com/cockroachdb/errors"

var (
	ErrConfigFileNotFound = errors.New("config: file not found")
	ErrValidationFailed   = errors.New("config: validation failed")
	ErrNilConfig          = errors.New("config: config cannot be nil")
	ErrMergeFailed        = errors.New("config: merge failed")
)
