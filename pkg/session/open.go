package session

import (
	"fmt"

	"github.com/kitchensync/pkg/config"
)

// Open 按配置选择存储后端并创建会话存储
func Open(cfg *config.SessionConfig, redisCfg *config.RedisConfig) (*Store, error) {
	var (
		storage Storage
		err     error
	)

	switch cfg.Driver {
	case "", "file":
		storage = NewFileStorage(cfg.Path)
	case "sqlite":
		storage, err = NewSqliteStorage(cfg.Path)
	case "redis":
		storage, err = NewRedisStorage(redisCfg, cfg.Prefix)
	case "memory":
		storage = NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unknown session driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return NewStore(storage)
}
