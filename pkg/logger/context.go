package logger

import (
	"context"

	"go.uber.org/zap"
)

// ContextFieldExtractor 从 context 提取字段的函数类型
type ContextFieldExtractor func(ctx context.Context) []zap.Field

type connIDKey struct{}
type remoteAddrKey struct{}

// WithConn 将连接标识写入 context，供 *Context 日志方法提取
func WithConn(ctx context.Context, connID, remoteAddr string) context.Context {
	ctx = context.WithValue(ctx, connIDKey{}, connID)
	return context.WithValue(ctx, remoteAddrKey{}, remoteAddr)
}

// ConnContextExtractor 提取 conn_id 与 remote_addr
func ConnContextExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fields []zap.Field
	if id, ok := ctx.Value(connIDKey{}).(string); ok && id != "" {
		fields = append(fields, zap.String("conn_id", id))
	}
	if addr, ok := ctx.Value(remoteAddrKey{}).(string); ok && addr != "" {
		fields = append(fields, zap.String("remote_addr", addr))
	}
	return fields
}
