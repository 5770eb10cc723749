package app

import (
	"github.com/google/wire"
)

// Components Wire 注入后需要挂到 BaseApp 上的组件
type Components struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 导出给 Wire 使用
var ProviderSet = wire.NewSet(
	NewBaseApp,
)

// InitApp 将注入的组件绑定到 BaseApp
func InitApp(a *BaseApp, comps Components) *BaseApp {
	a.AppendServer(comps.Servers...)
	a.AppendCloser(comps.Closers...)
	return a
}

// CloserFunc 函数式 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
