package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kitchensync/pkg/config"
	"github.com/kitchensync/pkg/logger"
	"go.uber.org/zap"
)

// Key 缓存key：资源名 + 稳定顺序的参数片段
// 深度相等的参数组合必须产生相同的key
type Key []string

// NewKey 创建缓存key
func NewKey(resource string, params ...string) Key {
	return append(Key{resource}, params...)
}

// String key的字符串形式
func (k Key) String() string {
	return strings.Join(k, ":")
}

// entry 缓存条目
type entry struct {
	data       []byte
	fetchedAt  time.Time // 零值表示已失效，下次读取必须重新拉取
	lastAccess time.Time
}

// Store 查询缓存
// 读取结果在新鲜期内直接命中；失效采用按资源名前缀标脏
// 每个key带版本号，旧的在途响应不能覆盖新数据（last request wins）
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	versions map[string]uint64

	staleAfter time.Duration // 新鲜期
	retention  time.Duration // 闲置保留期
	retries    int           // 读取失败的重试次数

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	log             *zap.Logger
}

// New 按配置创建查询缓存
func New(cfg *config.CacheConfig) *Store {
	return NewWithOptions(
		time.Duration(cfg.StaleSeconds)*time.Second,
		time.Duration(cfg.RetentionSeconds)*time.Second,
		time.Duration(cfg.CleanupSeconds)*time.Second,
		cfg.RetryCount,
	)
}

// NewWithOptions 创建查询缓存
func NewWithOptions(staleAfter, retention, cleanupInterval time.Duration, retries int) *Store {
	s := &Store{
		entries:         make(map[string]*entry),
		versions:        make(map[string]uint64),
		staleAfter:      staleAfter,
		retention:       retention,
		retries:         retries,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
		log:             logger.Named("querycache"),
	}

	if cleanupInterval > 0 {
		go s.cleanupLoop()
	}

	return s
}

// cleanupLoop 定期清理闲置条目
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictIdle()
		case <-s.stopCleanup:
			return
		}
	}
}

// evictIdle 清除超过保留期未访问的条目
func (s *Store) evictIdle() {
	deadline := time.Now().Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if e.lastAccess.Before(deadline) {
			delete(s.entries, key)
		}
	}
}

// Fetch 读取缓存，未命中或已失效时调用fetcher拉取
// 失败按配置重试；后台不做任何自动刷新，失效只在下一次读取时解决
func (s *Store) Fetch(ctx context.Context, key Key, dest interface{}, fetcher func(context.Context) (interface{}, error)) error {
	keyStr := key.String()

	// 新鲜命中
	s.mu.Lock()
	if e, ok := s.entries[keyStr]; ok && s.fresh(e) {
		e.lastAccess = time.Now()
		data := e.data
		s.mu.Unlock()
		return json.Unmarshal(data, dest)
	}
	// 记下本次拉取的版本，拉取期间key被失效或被更新的拉取抢先则放弃写入
	s.versions[keyStr]++
	version := s.versions[keyStr]
	s.mu.Unlock()

	value, err := s.fetchWithRetry(ctx, fetcher)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	s.mu.Lock()
	if s.versions[keyStr] == version {
		s.entries[keyStr] = &entry{
			data:       data,
			fetchedAt:  time.Now(),
			lastAccess: time.Now(),
		}
	} else {
		// 过期响应，只返回给调用方，不写入缓存
		s.log.Debug("丢弃过期的在途响应", zap.String("key", keyStr))
	}
	s.mu.Unlock()

	return json.Unmarshal(data, dest)
}

// fetchWithRetry 执行拉取，失败按配置重试
func (s *Store) fetchWithRetry(ctx context.Context, fetcher func(context.Context) (interface{}, error)) (interface{}, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		value, err := fetcher(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// fresh 条目是否仍在新鲜期内
func (s *Store) fresh(e *entry) bool {
	if e.fetchedAt.IsZero() {
		return false
	}
	if s.staleAfter <= 0 {
		return true
	}
	return time.Since(e.fetchedAt) < s.staleAfter
}

// Invalidate 按资源名前缀标脏
// 命中前缀的条目下次读取必须重新拉取；其他资源的条目不受影响
func (s *Store) Invalidate(resources ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, e := range s.entries {
		for _, resource := range resources {
			if key == resource || strings.HasPrefix(key, resource+":") {
				e.fetchedAt = time.Time{}
				s.versions[key]++
				count++
				break
			}
		}
	}
	return count
}

// InvalidateKey 精确标脏单个key
func (s *Store) InvalidateKey(key Key) {
	keyStr := key.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[keyStr]; ok {
		e.fetchedAt = time.Time{}
		s.versions[keyStr]++
	}
}

// Stale 指定key是否需要重新拉取（不存在也算）
func (s *Store) Stale(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key.String()]
	return !ok || !s.fresh(e)
}

// Count 条目数量
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear 清空缓存
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	for key := range s.versions {
		s.versions[key]++
	}
}

// Close 停止清理协程
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		if s.cleanupInterval > 0 {
			close(s.stopCleanup)
		}
	})
}
