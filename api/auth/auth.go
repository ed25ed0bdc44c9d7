package auth

import (
	"context"

	"github.com/kitchensync/pkg/httpc"
	"github.com/kitchensync/pkg/logger"
	"github.com/kitchensync/pkg/session"
	"go.uber.org/zap"
)

// LoginRequest 登录请求
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// LoginResult 登录响应
type LoginResult struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken,omitempty"`
	TokenType        string `json:"tokenType"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
	UserID           int64  `json:"userId"`
	Username         string `json:"username"`
	Role             string `json:"role"`
}

// Client 认证接口
type Client struct {
	http    *httpc.Client
	session *session.Store
	log     *zap.Logger
}

// New 创建认证接口
func New(http *httpc.Client, sess *session.Store) *Client {
	return &Client{
		http:    http,
		session: sess,
		log:     logger.Named("auth"),
	}
}

// Login 登录并持久化会话
// 成功后会话存储广播登录事件，订阅方据此切换状态
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error) {
	result, err := httpc.Post[*LoginResult](ctx, c.http, "/auth/login", &LoginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	})
	if err != nil {
		return nil, err
	}

	err = c.session.Set(&session.Session{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		UserID:       result.UserID,
		Username:     result.Username,
		Role:         result.Role,
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("登录成功",
		zap.String("username", result.Username),
		zap.String("role", result.Role))
	return result, nil
}

// Logout 登出
// 后端登出失败不阻塞本地会话清除
func (c *Client) Logout(ctx context.Context) error {
	if _, err := httpc.Post[any](ctx, c.http, "/auth/logout", nil); err != nil {
		c.log.Warn("后端登出失败", zap.Error(err))
	}
	return c.session.Clear()
}
