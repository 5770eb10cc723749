package tcp

import (
	"fmt"

	"github.com/lk2023060901/xremote/pkg/logger"
)

// gnetLogger 将 gnet 的 printf 风格日志转到 logger.Logger
type gnetLogger struct {
	l logger.Logger
}

func (g gnetLogger) Debugf(format string, args ...interface{}) { g.l.Debug(fmt.Sprintf(format, args...)) }
func (g gnetLogger) Infof(format string, args ...interface{})  { g.l.Info(fmt.Sprintf(format, args...)) }
func (g gnetLogger) Warnf(format string, args ...interface{})  { g.l.Warn(fmt.Sprintf(format, args...)) }
func (g gnetLogger) Errorf(format string, args ...interface{}) { g.l.Error(fmt.Sprintf(format, args...)) }

// Fatalf gnet 仅在不可恢复的内部错误时调用，这里只记录不退出进程
func (g gnetLogger) Fatalf(format string, args ...interface{}) {
	g.l.Error(fmt.Sprintf(format, args...), "fatal", true)
}

// antsLogger ants 工作池日志
type antsLogger struct {
	l logger.Logger
}

func (a antsLogger) Printf(format string, args ...interface{}) {
	a.l.Warn(fmt.Sprintf(format, args...))
}
