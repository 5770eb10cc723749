package protocol

import (
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// FrameSize 在头部可用时返回整帧长度，头部不足时 ok 为 false
func FrameSize(buf []byte) (size int, ok bool) {
	if len(buf) < HeaderSize {
		return 0, false
	}
	return HeaderSize + int(buf[2]), true
}

// Decode 从缓冲区解析请求。
// 未知的头部编码不会报错，而是解析为对应枚举的 Unsupported；
// content_length 之后的多余字节被忽略。
func Decode(buf []byte) (*Request, error) {
	size, ok := FrameSize(buf)
	if !ok {
		return nil, errors.Wrapf(ErrTruncatedFrame, "header needs %d bytes, got %d", HeaderSize, len(buf))
	}
	if len(buf) < size {
		return nil, errors.Wrapf(ErrTruncatedFrame, "frame needs %d bytes, got %d", size, len(buf))
	}

	payload := buf[HeaderSize:size]
	if !utf8.Valid(payload) {
		return nil, ErrInvalidEncoding
	}

	return &Request{
		Payload:       string(payload),
		Info:          ParseInfoType(buf[1]),
		ContentType:   ParseContentType(buf[0]),
		ContentLength: buf[2],
	}, nil
}

// ReadRequest 从流中读取恰好一帧并解析，流提前结束返回 ErrTruncatedFrame
func ReadRequest(r io.Reader) (*Request, error) {
	return ReadRequestLimit(r, 0)
}

// ReadRequestLimit 同 ReadRequest，整帧超过 maxFrame 字节时在读取 payload 前返回
// ErrFrameTooLarge。maxFrame <= 0 表示不限制
func ReadRequestLimit(r io.Reader, maxFrame int) (*Request, error) {
	var head [HeaderSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, readError(err)
	}

	size, _ := FrameSize(head[:])
	if maxFrame > 0 && size > maxFrame {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d > %d", size, maxFrame)
	}

	buf := make([]byte, size)
	copy(buf, head[:])
	if _, err := io.ReadFull(r, buf[HeaderSize:]); err != nil {
		return nil, readError(err)
	}
	return Decode(buf)
}

func readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrap(ErrTruncatedFrame, err.Error())
	}
	return err
}
