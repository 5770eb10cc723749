package session

import "github.com/cockroachdb/errors"

// ErrSessionNotFound 会话不存在或已关闭
var ErrSessionNotFound = errors.New("session: not found")
