package session

import (
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/kitchensync/pkg/logger"
	"gorm.io/gorm"
)

// sessionRecord 本地sqlite库中的会话行，固定只有一行
type sessionRecord struct {
	ID           int64  `gorm:"primaryKey"`
	AccessToken  string `gorm:"column:access_token"`
	RefreshToken string `gorm:"column:refresh_token"`
	UserID       int64  `gorm:"column:user_id"`
	Username     string `gorm:"column:username"`
	Role         string `gorm:"column:user_role"`
	UpdatedAt    time.Time
}

// TableName 表名
func (sessionRecord) TableName() string {
	return "client_session"
}

// SqliteStorage 基于本地sqlite文件的会话存储
type SqliteStorage struct {
	db       *gorm.DB
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSqliteStorage 创建sqlite会话存储
func NewSqliteStorage(path string) (*SqliteStorage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLogger("warn"),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, err
	}

	return &SqliteStorage{
		db:       db,
		interval: 2 * time.Second,
		stopCh:   make(chan struct{}),
	}, nil
}

// Load 读取会话行
func (s *SqliteStorage) Load() (*Session, error) {
	var rec sessionRecord
	err := s.db.First(&rec, "id = ?", 1).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if rec.AccessToken == "" {
		return nil, nil
	}

	return &Session{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		UserID:       rec.UserID,
		Username:     rec.Username,
		Role:         rec.Role,
	}, nil
}

// Save 写入会话行
func (s *SqliteStorage) Save(sess *Session) error {
	rec := sessionRecord{
		ID:           1,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		UserID:       sess.UserID,
		Username:     sess.Username,
		Role:         sess.Role,
	}
	return s.db.Save(&rec).Error
}

// Clear 删除会话行
func (s *SqliteStorage) Clear() error {
	return s.db.Delete(&sessionRecord{}, "id = ?", 1).Error
}

// Watch 轮询会话行更新时间，发现外部变更时回调
func (s *SqliteStorage) Watch(onChange func()) error {
	last := s.lastUpdated()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cur := s.lastUpdated()
				if !cur.Equal(last) {
					last = cur
					onChange()
				}
			case <-s.stopCh:
				return
			}
		}
	}()
	return nil
}

// Close 停止轮询并关闭数据库
func (s *SqliteStorage) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// lastUpdated 会话行的更新时间，无会话时返回零值
func (s *SqliteStorage) lastUpdated() time.Time {
	var rec sessionRecord
	if err := s.db.First(&rec, "id = ?", 1).Error; err != nil {
		return time.Time{}
	}
	return rec.UpdatedAt
}
