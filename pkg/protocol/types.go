// Package protocol 定义远程控制协议的帧格式与解析。
//
// 帧格式（单次请求，无握手）：
//
//	byte 0    content_type
//	byte 1    info
//	byte 2    content_length (N, 0-255)
//	byte 3..  payload, N 字节 UTF-8 文本
package protocol

import (
	"encoding/json"
	"strings"
)

const (
	// HeaderSize 固定头部长度
	HeaderSize = 3
	// MaxPayloadSize content_length 为单字节，payload 最多 255 字节
	MaxPayloadSize = 255
	// ArgSeparator payload 分段分隔符
	ArgSeparator = ";"
)

// ContentType 请求的目标域
type ContentType uint8

const (
	ContentTypeUnsupported ContentType = iota
	ContentTypeOperaGx
	ContentTypeOS
)

// 头部字节编码
const (
	codeOperaGx byte = 0x01
	codeOS      byte = 0x02
	codeInstant byte = 0x01
	codeDelayed byte = 0x02
)

// ParseContentType 将头部字节转换为 ContentType，未知值返回 ContentTypeUnsupported
func ParseContentType(b byte) ContentType {
	switch b {
	case codeOperaGx:
		return ContentTypeOperaGx
	case codeOS:
		return ContentTypeOS
	default:
		return ContentTypeUnsupported
	}
}

// Code 返回线上字节编码，Unsupported 编码为 0x00
func (c ContentType) Code() byte {
	switch c {
	case ContentTypeOperaGx:
		return codeOperaGx
	case ContentTypeOS:
		return codeOS
	default:
		return 0x00
	}
}

func (c ContentType) String() string {
	switch c {
	case ContentTypeOperaGx:
		return "OperaGx"
	case ContentTypeOS:
		return "OS"
	default:
		return "Unsupported"
	}
}

// MarshalText 以名称形式序列化
func (c ContentType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// InfoType 请求的执行时机
type InfoType uint8

const (
	InfoUnsupported InfoType = iota
	InfoInstant
	InfoDelayed
)

// ParseInfoType 将头部字节转换为 InfoType，未知值返回 InfoUnsupported
func ParseInfoType(b byte) InfoType {
	switch b {
	case codeInstant:
		return InfoInstant
	case codeDelayed:
		return InfoDelayed
	default:
		return InfoUnsupported
	}
}

// Code 返回线上字节编码，Unsupported 编码为 0x00
func (i InfoType) Code() byte {
	switch i {
	case InfoInstant:
		return codeInstant
	case InfoDelayed:
		return codeDelayed
	default:
		return 0x00
	}
}

func (i InfoType) String() string {
	switch i {
	case InfoInstant:
		return "Instant"
	case InfoDelayed:
		return "Delayed"
	default:
		return "Unsupported"
	}
}

// MarshalText 以名称形式序列化
func (i InfoType) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// ActionKind 由 payload 文本决定的动作，与头部字节无关
type ActionKind uint8

const (
	ActionUnsupported ActionKind = iota
	ActionOpen
	ActionShutDown
)

// ParseAction 取 payload 第一个 ';' 之前的片段，忽略大小写匹配动作关键字
func ParseAction(payload string) ActionKind {
	keyword, _, _ := strings.Cut(payload, ArgSeparator)
	switch strings.ToLower(keyword) {
	case "open":
		return ActionOpen
	case "off":
		return ActionShutDown
	default:
		return ActionUnsupported
	}
}

func (a ActionKind) String() string {
	switch a {
	case ActionOpen:
		return "Open"
	case ActionShutDown:
		return "ShutDown"
	default:
		return "Unsupported"
	}
}

// MarshalText 以名称形式序列化
func (a ActionKind) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Request 一次连接对应的请求，构造后不可修改
type Request struct {
	Payload       string      `json:"payload"`
	Info          InfoType    `json:"info"`
	ContentType   ContentType `json:"content_type"`
	ContentLength uint8       `json:"content_length"`
}

// Action 解析 payload 得到的动作
func (r *Request) Action() ActionKind {
	return ParseAction(r.Payload)
}

// Args 返回动作关键字之后的参数片段
func (r *Request) Args() []string {
	_, rest, found := strings.Cut(r.Payload, ArgSeparator)
	if !found {
		return nil
	}
	return strings.Split(rest, ArgSeparator)
}

// JSON 返回回显给调用方的 JSON 文本
func (r *Request) JSON() ([]byte, error) {
	return json.Marshal(r)
}
