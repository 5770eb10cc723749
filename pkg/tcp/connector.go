package tcp

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/protocol"
)

// Connector 客户端：每次请求新建连接，发送一帧并读取回显直到服务端关闭
type Connector struct {
	config *ClientConfig
}

// NewConnector 创建客户端
func NewConnector(cfg *ClientConfig) (*Connector, error) {
	merged, err := config.MergeConfig(DefaultClientConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &Connector{config: merged}, nil
}

// Do 编码并发送请求，返回服务端回显（回显关闭时为空）
func (c *Connector) Do(ctx context.Context, req *protocol.Request) ([]byte, error) {
	frame, err := protocol.Encode(req)
	if err != nil {
		return nil, err
	}
	return c.SendRaw(ctx, frame)
}

// SendRaw 发送任意字节，用于调试畸形帧
func (c *Connector) SendRaw(ctx context.Context, frame []byte) ([]byte, error) {
	d := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := d.DialContext(ctx, c.config.Network, c.config.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", c.config.Addr)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if c.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	if _, err := conn.Write(frame); err != nil {
		return nil, errors.Wrap(err, "write frame")
	}

	if c.config.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	}
	resp, err := io.ReadAll(io.LimitReader(conn, c.config.MaxResponseSize+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if isTimeout(err) {
			return nil, errors.Wrapf(ErrReadTimeout, "read response: %v", err)
		}
		return nil, errors.Wrap(err, "read response")
	}
	if int64(len(resp)) > c.config.MaxResponseSize {
		return nil, errors.Wrapf(ErrResponseTooBig, "> %d bytes", c.config.MaxResponseSize)
	}
	return resp, nil
}
