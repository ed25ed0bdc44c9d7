package session

import "sync"

// MemoryStorage 内存会话存储（测试和一次性进程使用）
type MemoryStorage struct {
	mu   sync.Mutex
	sess *Session
}

// NewMemoryStorage 创建内存会话存储
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load 读取会话
func (m *MemoryStorage) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.sess.Valid() {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

// Save 写入会话
func (m *MemoryStorage) Save(sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *sess
	m.sess = &cp
	return nil
}

// Clear 清除会话
func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sess = nil
	return nil
}

// Close 关闭
func (m *MemoryStorage) Close() error {
	return nil
}
