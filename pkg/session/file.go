package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStorage 基于JSON文件的会话存储（默认后端）
type FileStorage struct {
	path     string
	mu       sync.Mutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewFileStorage 创建文件会话存储
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path:     path,
		interval: 2 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Load 读取会话文件
// 文件不存在视为未登录
func (f *FileStorage) Load() (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// 损坏的会话文件按未登录处理
		return nil, nil
	}
	if !sess.Valid() {
		return nil, nil
	}
	return &sess, nil
}

// Save 写入会话文件
// 先写临时文件再改名，避免读到半截内容
func (f *FileStorage) Save(sess *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Clear 删除会话文件
func (f *FileStorage) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Watch 轮询文件修改时间，发现外部变更时回调
func (f *FileStorage) Watch(onChange func()) error {
	var lastMod time.Time
	if info, err := os.Stat(f.path); err == nil {
		lastMod = info.ModTime()
	}

	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				var mod time.Time
				if info, err := os.Stat(f.path); err == nil {
					mod = info.ModTime()
				}
				if mod != lastMod {
					lastMod = mod
					onChange()
				}
			case <-f.stopCh:
				return
			}
		}
	}()
	return nil
}

// Close 停止轮询
func (f *FileStorage) Close() error {
	f.stopOnce.Do(func() {
		close(f.stopCh)
	})
	return nil
}
