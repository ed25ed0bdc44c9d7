package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// 错误码定义
// 4xx/5xx 对应后端HTTP状态码，负值表示未到达后端的本地错误
const (
	CodeNetwork    = -1 // 请求已发出但无响应
	CodeValidation = -2 // 本地校验失败，未发起请求
)

// 预定义错误
var (
	ErrUnauthorized   = New(401, "未授权或登录已过期")
	ErrForbidden      = New(403, "没有操作权限")
	ErrNotFound       = New(404, "资源不存在")
	ErrServer         = New(500, "服务器内部错误")
	ErrNetwork        = New(CodeNetwork, "网络不可达")
	ErrSessionMissing = New(401, "未登录")
)

// AppError 应用错误
type AppError struct {
	Code        int                 `json:"code"`
	Message     string              `json:"message"`
	ErrorCode   string              `json:"errorCode,omitempty"`   // 后端业务错误码
	Details     []string            `json:"details,omitempty"`     // 后端返回的明细
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"` // 后端字段级校验错误
	Err         error               `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 解包错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 支持与预定义错误按错误码匹配
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromStatus 根据HTTP状态码创建错误
func FromStatus(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Code:    status,
		Message: message,
	}
}

// Network 创建网络错误（请求未到达后端）
func Network(err error) *AppError {
	return &AppError{
		Code:    CodeNetwork,
		Message: "网络不可达",
		Err:     err,
	}
}

// Validation 创建本地校验错误（不会发起网络请求）
func Validation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// Aggregate 聚合批量操作中的多个错误
// 任意子调用失败即视为整体失败，成功的部分不回滚
func Aggregate(errs []error) error {
	nonNil := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}

	msgs := make([]string, len(nonNil))
	for i, err := range nonNil {
		msgs[i] = err.Error()
	}
	return &AppError{
		Code:    GetCode(nonNil[0]),
		Message: fmt.Sprintf("%d个操作失败: %s", len(nonNil), strings.Join(msgs, "; ")),
		Err:     errors.Join(nonNil...),
	}
}

// IsAuthFailure 是否为认证失败（401）
func IsAuthFailure(err error) bool {
	return GetCode(err) == 401
}

// IsNetwork 是否为网络错误
func IsNetwork(err error) bool {
	return GetCode(err) == CodeNetwork
}

// IsValidation 是否为本地校验错误
func IsValidation(err error) bool {
	return GetCode(err) == CodeValidation
}

// GetCode 获取错误码
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 500
}

// GetMessage 获取错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Is 检查是否为指定错误
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As 类型转换错误
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
