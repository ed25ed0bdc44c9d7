package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kitchensync/pkg/config"
	"github.com/kitchensync/pkg/utils"
	"github.com/redis/go-redis/v9"
)

// redis 哈希字段名，与其他后端的持久化key一致
const (
	fieldAccessToken  = "accessToken"
	fieldRefreshToken = "refreshToken"
	fieldUserID       = "userId"
	fieldUsername     = "username"
	fieldRole         = "userRole"
)

// RedisStorage 基于Redis的会话存储
// 多个客户端进程共享一份会话时使用，外部变更通过pub/sub通知
type RedisStorage struct {
	client   *redis.Client
	mini     *miniredis.Miniredis // 内存模式
	key      string
	channel  string
	nodeID   string // 过滤自己发出的变更通知
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewRedisStorage 创建Redis会话存储
func NewRedisStorage(cfg *config.RedisConfig, prefix string) (*RedisStorage, error) {
	s := &RedisStorage{
		key:     prefix,
		channel: prefix + ":changes",
		nodeID:  utils.UUID(),
	}

	if cfg.Mode == "memory" {
		// 使用内存模式（miniredis）
		mini, err := miniredis.Run()
		if err != nil {
			return nil, err
		}
		s.mini = mini
		s.client = redis.NewClient(&redis.Options{
			Addr: mini.Addr(),
		})
	} else {
		s.client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.client.Ping(ctx).Result(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Load 读取会话哈希
func (s *RedisStorage) Load() (*Session, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 || fields[fieldAccessToken] == "" {
		return nil, nil
	}

	userID, _ := strconv.ParseInt(fields[fieldUserID], 10, 64)
	return &Session{
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
		UserID:       userID,
		Username:     fields[fieldUsername],
		Role:         fields[fieldRole],
	}, nil
}

// Save 写入会话哈希并发布变更通知
func (s *RedisStorage) Save(sess *Session) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	err := s.client.HSet(ctx, s.key,
		fieldAccessToken, sess.AccessToken,
		fieldRefreshToken, sess.RefreshToken,
		fieldUserID, strconv.FormatInt(sess.UserID, 10),
		fieldUsername, sess.Username,
		fieldRole, sess.Role,
	).Err()
	if err != nil {
		return err
	}

	return s.publishChange(ctx)
}

// Clear 删除会话哈希并发布变更通知
func (s *RedisStorage) Clear() error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return err
	}
	return s.publishChange(ctx)
}

// Watch 订阅变更通知，收到其他进程的变更时回调
func (s *RedisStorage) Watch(onChange func()) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	sub := s.client.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		return err
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				// 自己发出的变更已经反映在本地状态里
				if msg.Payload == s.nodeID {
					continue
				}
				onChange()
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Close 关闭连接
func (s *RedisStorage) Close() error {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
	if err := s.client.Close(); err != nil {
		return err
	}
	if s.mini != nil {
		s.mini.Close()
	}
	return nil
}

// publishChange 发布变更通知，载荷为发送者节点ID
func (s *RedisStorage) publishChange(ctx context.Context) error {
	return s.client.Publish(ctx, s.channel, s.nodeID).Err()
}

// opCtx 单次redis操作的超时上下文
func (s *RedisStorage) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}
