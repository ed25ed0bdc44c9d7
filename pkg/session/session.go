package session

import (
	"sync"

	"github.com/kitchensync/pkg/logger"
	"go.uber.org/zap"
)

// Session 客户端持有的登录凭据
// 字段名与持久化存储中的key保持一致
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"` // 写入但当前没有刷新流程，过期靠下一次401兜底
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	Role         string `json:"userRole"`
}

// Valid 会话是否有效
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != ""
}

// Event 会话事件类型
type Event int

const (
	EventLogin    Event = iota + 1 // 本进程登录成功
	EventLogout                    // 本进程登出或认证失败清除
	EventExternal                  // 外部进程修改了持久化会话
)

// Listener 会话事件监听器
// sess 为事件发生后的会话状态，登出时为nil
type Listener func(event Event, sess *Session)

// Storage 会话持久化后端
type Storage interface {
	Load() (*Session, error)
	Save(sess *Session) error
	Clear() error
	Close() error
}

// Notifier 支持外部变更通知的存储后端
type Notifier interface {
	Watch(onChange func()) error
}

// Store 会话存储
// 统一管理会话读写和三类事件信号：登录、登出、外部变更
type Store struct {
	mu        sync.RWMutex
	storage   Storage
	current   *Session
	listeners map[int]Listener
	nextID    int
	log       *zap.Logger
}

// NewStore 创建会话存储并恢复已持久化的会话
func NewStore(storage Storage) (*Store, error) {
	cur, err := storage.Load()
	if err != nil {
		return nil, err
	}

	s := &Store{
		storage:   storage,
		current:   cur,
		listeners: make(map[int]Listener),
		log:       logger.Named("session"),
	}

	// 监听外部变更（跨进程的存储修改）
	if notifier, ok := storage.(Notifier); ok {
		if err := notifier.Watch(s.onExternalChange); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Get 获取当前会话快照，未登录时返回nil
func (s *Store) Get() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.current.Valid() {
		return nil
	}
	cp := *s.current
	return &cp
}

// Token 获取当前访问令牌，未登录时返回空串
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.current.Valid() {
		return ""
	}
	return s.current.AccessToken
}

// Authenticated 是否处于已登录状态
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Valid()
}

// Role 当前用户角色，未登录时返回空串
func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.current.Valid() {
		return ""
	}
	return s.current.Role
}

// Set 写入会话并广播登录事件
func (s *Store) Set(sess *Session) error {
	if !sess.Valid() {
		return s.Clear()
	}

	if err := s.storage.Save(sess); err != nil {
		return err
	}

	s.mu.Lock()
	cp := *sess
	s.current = &cp
	s.mu.Unlock()

	s.log.Info("会话已建立",
		zap.String("username", sess.Username),
		zap.String("role", sess.Role))
	s.notify(EventLogin, sess)
	return nil
}

// Clear 清除会话并广播登出事件
// 已经是未登录状态时不重复广播
func (s *Store) Clear() error {
	s.mu.Lock()
	wasValid := s.current.Valid()
	s.current = nil
	s.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		return err
	}

	if wasValid {
		s.log.Info("会话已清除")
		s.notify(EventLogout, nil)
	}
	return nil
}

// Subscribe 订阅会话事件，返回取消订阅函数
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close 关闭存储后端
func (s *Store) Close() error {
	return s.storage.Close()
}

// onExternalChange 外部进程修改持久化会话后重新加载
func (s *Store) onExternalChange() {
	loaded, err := s.storage.Load()
	if err != nil {
		s.log.Warn("重新加载会话失败", zap.Error(err))
		return
	}

	s.mu.Lock()
	changed := !sessionEqual(s.current, loaded)
	if changed {
		s.current = loaded
	}
	s.mu.Unlock()

	if changed {
		s.log.Info("检测到外部会话变更")
		s.notify(EventExternal, loaded)
	}
}

// notify 广播事件
func (s *Store) notify(event Event, sess *Session) {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(event, sess)
	}
}

// sessionEqual 比较两个会话是否等价
func sessionEqual(a, b *Session) bool {
	if !a.Valid() && !b.Valid() {
		return true
	}
	if !a.Valid() || !b.Valid() {
		return false
	}
	return *a == *b
}
