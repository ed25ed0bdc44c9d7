package response

import (
	"encoding/json"

	"github.com/kitchensync/pkg/errors"
)

// Envelope 后端统一响应结构
type Envelope[T any] struct {
	Success     bool                `json:"success"`
	Message     *string             `json:"message"`
	ErrorCode   *string             `json:"errorCode"`
	Data        T                   `json:"data"`
	Errors      []string            `json:"errors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// Page 分页数据结构
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// Decode 解析响应体并拆出data
// success=false 时转换为带业务错误码的AppError
func Decode[T any](body []byte, status int) (T, error) {
	var env Envelope[T]
	var zero T

	if err := json.Unmarshal(body, &env); err != nil {
		return zero, errors.Wrap(err, status, "响应解析失败")
	}

	if !env.Success {
		msg := "请求失败"
		if env.Message != nil && *env.Message != "" {
			msg = *env.Message
		}
		appErr := errors.FromStatus(status, msg)
		if env.ErrorCode != nil {
			appErr.ErrorCode = *env.ErrorCode
		}
		appErr.Details = env.Errors
		appErr.FieldErrors = env.FieldErrors
		return zero, appErr
	}

	return env.Data, nil
}

// OK 构造成功响应（测试后端使用）
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{
		Success: true,
		Data:    data,
	}
}

// Fail 构造失败响应（测试后端使用）
func Fail(message, errorCode string) Envelope[any] {
	return Envelope[any]{
		Success:   false,
		Message:   &message,
		ErrorCode: &errorCode,
	}
}

// FailFields 构造带字段错误的失败响应（测试后端使用）
func FailFields(message string, fieldErrors map[string][]string) Envelope[any] {
	return Envelope[any]{
		Success:     false,
		Message:     &message,
		FieldErrors: fieldErrors,
	}
}

// NewPage 构造分页数据
func NewPage[T any](items []T, page, pageSize int, total int64) *Page[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
