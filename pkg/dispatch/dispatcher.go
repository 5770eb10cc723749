// Package dispatch 将解码后的请求路由到固定的系统动作。
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/protocol"
)

// Effect 已执行的副作用
type Effect uint8

const (
	EffectNone Effect = iota
	EffectSpawn
	EffectKill
	EffectShutdown
)

func (e Effect) String() string {
	switch e {
	case EffectSpawn:
		return "spawn"
	case EffectKill:
		return "kill"
	case EffectShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

// Result 一次分发的结果
type Result struct {
	Effect Effect
	Action protocol.ActionKind
	// Processes 启动或已结束的进程
	Processes []ProcessHandle
	// DelaySeconds 关机延迟，nil 表示使用默认值
	DelaySeconds *int
}

// Route 路由键，由头部编码的域与 payload 解析出的动作组成
type Route struct {
	ContentType protocol.ContentType
	Action      protocol.ActionKind
}

// Handler 路由处理函数
type Handler func(ctx context.Context, req *protocol.Request) (*Result, error)

// Dispatcher 请求分发器，路由表在 New 中固定，可并发使用
type Dispatcher struct {
	config   *Config
	platform Platform
	logger   logger.Logger
	routes   map[Route]Handler
}

// New 创建分发器并注册固定路由表
func New(cfg *Config, p Platform, l logger.Logger) (*Dispatcher, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge dispatch config")
	}
	if p == nil {
		return nil, errors.New("dispatch: platform is required")
	}
	if l == nil {
		l = logger.NewNoop()
	}

	d := &Dispatcher{
		config:   newCfg,
		platform: p,
		logger:   l.Named("dispatch"),
		routes:   make(map[Route]Handler),
	}

	d.register(Route{protocol.ContentTypeOperaGx, protocol.ActionOpen}, d.spawnTarget)
	d.register(Route{protocol.ContentTypeOperaGx, protocol.ActionShutDown}, d.killTarget)
	d.register(Route{protocol.ContentTypeOS, protocol.ActionShutDown}, d.shutdownHost)

	return d, nil
}

func (d *Dispatcher) register(route Route, h Handler) {
	d.routes[route] = h
}

// Dispatch 执行请求对应的动作。
// 未注册的组合返回 ErrUnsupportedCommand；系统调用失败时返回包装后的错误，不重试也不回滚。
func (d *Dispatcher) Dispatch(ctx context.Context, req *protocol.Request) (*Result, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	route := Route{ContentType: req.ContentType, Action: req.Action()}

	h, ok := d.routes[route]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedCommand, "content_type=%s action=%s", route.ContentType, route.Action)
	}
	return h(ctx, req)
}

// Config 返回分发器配置
func (d *Dispatcher) Config() *Config {
	return d.config
}

func (d *Dispatcher) spawnTarget(ctx context.Context, req *protocol.Request) (*Result, error) {
	path := d.config.Target.Executable
	h, err := d.platform.Spawn(ctx, path)
	if err != nil {
		return nil, failure(ErrSpawnFailed, errors.Wrapf(err, "spawn %q", path))
	}

	d.logger.Info("target spawned", "path", path, "pid", h.PID)
	return &Result{
		Effect:    EffectSpawn,
		Action:    protocol.ActionOpen,
		Processes: []ProcessHandle{h},
	}, nil
}

func (d *Dispatcher) killTarget(ctx context.Context, req *protocol.Request) (*Result, error) {
	name := d.config.Target.ProcessName
	handles, err := d.platform.ListProcesses(ctx, name)
	if err != nil {
		return nil, failure(ErrListFailed, errors.Wrapf(err, "list %q", name))
	}

	res := &Result{Effect: EffectKill, Action: protocol.ActionShutDown}
	var killErr error
	for _, h := range handles {
		if err := d.platform.Kill(ctx, h); err != nil {
			killErr = errors.CombineErrors(killErr, errors.Wrapf(err, "kill pid %d", h.PID))
			continue
		}
		res.Processes = append(res.Processes, h)
	}

	d.logger.Info("target processes killed", "name", name, "matched", len(handles), "killed", len(res.Processes))
	if killErr != nil {
		return res, failure(ErrKillFailed, killErr)
	}
	return res, nil
}

func (d *Dispatcher) shutdownHost(ctx context.Context, req *protocol.Request) (*Result, error) {
	delay := shutdownDelay(req)
	if err := d.platform.ScheduleShutdown(ctx, delay); err != nil {
		return nil, failure(ErrScheduleFailed, errors.Wrap(err, "schedule shutdown"))
	}
	return &Result{
		Effect:       EffectShutdown,
		Action:       protocol.ActionShutDown,
		DelaySeconds: delay,
	}, nil
}

// failure 以分类错误为主，同时保留底层原因，两者都能被 errors.Is 匹配
func failure(kind, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}

// shutdownDelay Delayed 请求从 "off;<seconds>" 中读取延迟，其余情况返回 nil
func shutdownDelay(req *protocol.Request) *int {
	if req.Info != protocol.InfoDelayed {
		return nil
	}
	args := req.Args()
	if len(args) == 0 {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
