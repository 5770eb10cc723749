package session

import (
	"sort"
	"sync"
)

// SessionManager 在线会话管理
type SessionManager interface {
	Add(s Session)
	Remove(id string)
	Get(id string) (Session, bool)
	Count() int
	// Range 遍历所有会话，f 返回 false 时停止
	Range(f func(s Session) bool)
	// List 按建立时间排序的快照
	List() []Info
}

// BaseSessionManager SessionManager 的基础实现
type BaseSessionManager struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewBaseSessionManager 创建会话管理器
func NewBaseSessionManager() *BaseSessionManager {
	return &BaseSessionManager{
		sessions: make(map[string]Session),
	}
}

func (m *BaseSessionManager) Add(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

func (m *BaseSessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *BaseSessionManager) Get(id string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *BaseSessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Range 在快照上遍历，f 内可以安全地调用 Remove
func (m *BaseSessionManager) Range(f func(s Session) bool) {
	m.mu.RLock()
	snapshot := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		snapshot = append(snapshot, s)
	}
	m.mu.RUnlock()

	for _, s := range snapshot {
		if !f(s) {
			return
		}
	}
}

func (m *BaseSessionManager) List() []Info {
	infos := make([]Info, 0, m.Count())
	m.Range(func(s Session) bool {
		infos = append(infos, Snapshot(s))
		return true
	})
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].OpenedAt.Before(infos[j].OpenedAt)
	})
	return infos
}

var _ SessionManager = (*BaseSessionManager)(nil)
