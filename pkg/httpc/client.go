package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kitchensync/pkg/errors"
	"github.com/kitchensync/pkg/logger"
	"github.com/kitchensync/pkg/response"
	"github.com/kitchensync/pkg/utils"
	"go.uber.org/zap"
)

// SessionStore 客户端依赖的会话能力
// 读取令牌、认证失败时清除会话
type SessionStore interface {
	Token() string
	Clear() error
}

// Options 客户端配置
// 通用接口和管理接口各建一个实例，只有BaseURL不同，拦截逻辑完全一致
type Options struct {
	BaseURL string
	Timeout time.Duration
	Session SessionStore
	// OnAuthFailure 认证失败的跳转回调（对应跳转登录页）
	// 每次失败调用触发一次，触发后错误仍然返回给调用方
	OnAuthFailure func()
	// HTTPClient 自定义底层客户端，测试用
	HTTPClient *http.Client
}

// Client 统一HTTP客户端
type Client struct {
	baseURL       string
	http          *http.Client
	session       SessionStore
	onAuthFailure func()
	log           *zap.Logger
}

// New 创建客户端
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		http:          httpClient,
		session:       opts.Session,
		onAuthFailure: opts.OnAuthFailure,
		log:           logger.Named("httpc"),
	}
}

// Get 发送GET请求并解析data
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var zero T
	body, status, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return zero, err
	}
	return response.Decode[T](body, status)
}

// Post 发送POST请求并解析data
func Post[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var zero T
	body, status, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return zero, err
	}
	return response.Decode[T](body, status)
}

// Put 发送PUT请求并解析data
func Put[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var zero T
	body, status, err := c.do(ctx, http.MethodPut, path, nil, payload)
	if err != nil {
		return zero, err
	}
	return response.Decode[T](body, status)
}

// Delete 发送DELETE请求，忽略data
func (c *Client) Delete(ctx context.Context, path string) error {
	body, status, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	_, err = response.Decode[json.RawMessage](body, status)
	return err
}

// do 执行请求
// 401统一处理：清会话、触发跳转回调、继续把错误抛给调用方
// 其余错误只记日志并分类返回
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, int, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, 0, err
	}

	requestID := utils.UUID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		if tok := c.session.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// 请求已发出但没有响应
		c.log.Error("网络请求失败",
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.String("requestId", requestID),
			zap.Error(err))
		return nil, 0, errors.Network(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Network(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.Warn("认证失败，清除会话",
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.String("requestId", requestID))
		if c.session != nil {
			if clearErr := c.session.Clear(); clearErr != nil {
				c.log.Error("清除会话失败", zap.Error(clearErr))
			}
		}
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return nil, resp.StatusCode, statusError(resp.StatusCode, body)

	case resp.StatusCode >= 400:
		c.log.Warn("请求返回错误状态",
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.Int("status", resp.StatusCode),
			zap.String("requestId", requestID))
		return nil, resp.StatusCode, statusError(resp.StatusCode, body)
	}

	return body, resp.StatusCode, nil
}

// statusError 从错误响应体里尽量取出后端消息
func statusError(status int, body []byte) error {
	var env response.Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Message != nil && *env.Message != "" {
		appErr := errors.FromStatus(status, *env.Message)
		if env.ErrorCode != nil {
			appErr.ErrorCode = *env.ErrorCode
		}
		appErr.Details = env.Errors
		appErr.FieldErrors = env.FieldErrors
		return appErr
	}
	return errors.FromStatus(status, "")
}
