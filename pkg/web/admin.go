package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xremote/pkg/app"
	"github.com/lk2023060901/xremote/pkg/session"
)

// HealthFunc 返回 nil 表示健康
type HealthFunc func() error

// Admin 管理接口依赖
type Admin struct {
	// Sessions 在线会话，nil 时 /sessions 不注册
	Sessions session.SessionManager
	// Metrics 指标导出 Handler，nil 时 /metrics 不注册
	Metrics http.Handler
	// Health 健康检查，nil 时总是健康
	Health HealthFunc
	// System 主机与进程资源快照，nil 时 /system 不注册
	System func() any
}

// sessionsView /sessions 响应体
type sessionsView struct {
	Count    int            `json:"count"`
	Sessions []session.Info `json:"sessions"`
}

// Register 注册 /healthz、/version 以及已提供依赖的 /metrics、/sessions、/system
func (a *Admin) Register(r gin.IRoutes) {
	r.GET("/healthz", a.healthz)
	r.GET("/version", func(c *gin.Context) {
		Success(c, app.GetInfo())
	})
	if a.Metrics != nil {
		r.GET("/metrics", gin.WrapH(a.Metrics))
	}
	if a.Sessions != nil {
		r.GET("/sessions", a.sessions)
		r.GET("/sessions/:id", a.session)
	}
	if a.System != nil {
		r.GET("/system", func(c *gin.Context) {
			Success(c, a.System())
		})
	}
}

func (a *Admin) healthz(c *gin.Context) {
	if a.Health != nil {
		if err := a.Health(); err != nil {
			Error(c, http.StatusServiceUnavailable, CodeUnavailable, err.Error())
			return
		}
	}
	Success(c, gin.H{"status": "ok"})
}

func (a *Admin) sessions(c *gin.Context) {
	list := a.Sessions.List()
	if list == nil {
		list = []session.Info{}
	}
	Success(c, sessionsView{Count: len(list), Sessions: list})
}

func (a *Admin) session(c *gin.Context) {
	s, ok := a.Sessions.Get(c.Param("id"))
	if !ok {
		Error(c, http.StatusNotFound, CodeNotFound, session.ErrSessionNotFound.Error())
		return
	}
	Success(c, session.Snapshot(s))
}
