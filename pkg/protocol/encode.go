package protocol

// NewRequest 根据枚举与 payload 构造请求
func NewRequest(ct ContentType, info InfoType, payload string) (*Request, error) {
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	return &Request{
		Payload:       payload,
		Info:          info,
		ContentType:   ct,
		ContentLength: uint8(len(payload)),
	}, nil
}

// Encode 将请求编码为线上帧
func Encode(req *Request) ([]byte, error) {
	return EncodeRaw(req.ContentType.Code(), req.Info.Code(), req.Payload)
}

// EncodeRaw 使用原始头部字节编码，可用于发送未知编码
func EncodeRaw(contentType, info byte, payload string) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	buf := make([]byte, 0, HeaderSize+len(payload))
	buf = append(buf, contentType, info, byte(len(payload)))
	buf = append(buf, payload...)
	return buf, nil
}
