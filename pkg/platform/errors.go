package platform

import "github.com/cockroachdb/errors"

var (
	ErrEmptyPath       = errors.New("platform: executable path is empty")
	ErrNegativeDelay   = errors.New("platform: negative shutdown delay")
	ErrProcessNotFound = errors.New("platform: process not found")
)
