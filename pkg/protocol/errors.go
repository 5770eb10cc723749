package protocol

import "github.com/cockroachdb/errors"

var (
	// ErrTruncatedFrame 缓冲区不足 header + content_length 字节
	ErrTruncatedFrame = errors.New("protocol: truncated frame")
	// ErrInvalidEncoding payload 不是合法的 UTF-8
	ErrInvalidEncoding = errors.New("protocol: invalid encoding")
	// ErrPayloadTooLarge payload 超过单字节长度上限
	ErrPayloadTooLarge = errors.New("protocol: payload too large")
	// ErrFrameTooLarge 帧超过监听端允许的最大长度
	ErrFrameTooLarge = errors.New("protocol: frame too large")
)

// IsFramingError 判断是否为帧层错误（连接应直接关闭，不回显）
func IsFramingError(err error) bool {
	return errors.Is(err, ErrTruncatedFrame) ||
		errors.Is(err, ErrInvalidEncoding) ||
		errors.Is(err, ErrFrameTooLarge)
}
