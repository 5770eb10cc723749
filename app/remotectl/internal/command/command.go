// Package command 将命令行参数组装为请求帧。
package command

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/protocol"
)

var ErrInvalidHeader = errors.New("command: invalid header value")

var (
	contentTypeNames = map[string]byte{
		"operagx": protocol.ContentTypeOperaGx.Code(),
		"opera":   protocol.ContentTypeOperaGx.Code(),
		"os":      protocol.ContentTypeOS.Code(),
	}
	infoNames = map[string]byte{
		"instant": protocol.InfoInstant.Code(),
		"delayed": protocol.InfoDelayed.Code(),
	}
)

// Options 一次发送的参数
type Options struct {
	// Type 名称（operagx/os）或数字编码（2、0x02）
	Type string
	// Info 名称（instant/delayed）或数字编码
	Info    string
	Payload string
	// Raw 十六进制原始帧，设置后忽略其余字段
	Raw string
}

// BuildFrame 生成待发送的字节
func BuildFrame(o Options) ([]byte, error) {
	if o.Raw != "" {
		raw := strings.NewReplacer(" ", "", ":", "", "0x", "").Replace(o.Raw)
		frame, err := hex.DecodeString(raw)
		if err != nil {
			return nil, errors.Wrap(err, "decode raw frame")
		}
		return frame, nil
	}

	ct, err := ParseHeaderByte(o.Type, contentTypeNames)
	if err != nil {
		return nil, errors.Wrap(err, "type")
	}
	info, err := ParseHeaderByte(o.Info, infoNames)
	if err != nil {
		return nil, errors.Wrap(err, "info")
	}
	return protocol.EncodeRaw(ct, info, o.Payload)
}

// ParseHeaderByte 解析名称或 0-255 的数字
func ParseHeaderByte(s string, names map[string]byte) (byte, error) {
	s = strings.TrimSpace(s)
	if b, ok := names[strings.ToLower(s)]; ok {
		return b, nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidHeader, "%q", s)
	}
	return byte(n), nil
}

// FormatEcho JSON 回显缩进输出，非 JSON 原样返回
func FormatEcho(body []byte, pretty bool) string {
	if !pretty || !json.Valid(body) {
		return string(body)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}
