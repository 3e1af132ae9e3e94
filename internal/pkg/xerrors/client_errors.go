package xerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError 单个字段的校验失败
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationError 请求发出前的本地校验失败，列出全部违规字段
type ValidationError struct {
	Operation string       `json:"operation"`
	Fields    []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	if e.Operation == "" {
		return "validation failed: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Operation, strings.Join(parts, "; "))
}

// Has 判断某字段是否违规
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// FieldNames 返回违规字段名（按出现顺序）
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

// AsAppError 转换为 AppError，便于统一记录日志
func (e *ValidationError) AsAppError() *AppError {
	appErr := FromCode(CodeInvalidParams).WithOperation(e.Operation)
	appErr.Err = e
	return appErr.WithMetadata("fields", e.FieldNames())
}

// APIError 非 2xx 响应或网络失败。StatusCode 为 0 表示请求未到达服务端。
type APIError struct {
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	Code       ErrorCode `json:"-"`
	Method     string    `json:"-"`
	Path       string    `json:"-"`
	Err        error     `json:"-"`
}

// NewAPIError 根据状态码构造 APIError，消息为空时回落到 HTTP 状态文本
func NewAPIError(status int, message string) *APIError {
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(status)
		if message == "" {
			message = codeMessages[CodeExternalServiceError]
		}
	}
	return &APIError{
		Message:    message,
		StatusCode: status,
		Code:       CodeFromHTTPStatus(status),
	}
}

// NewNetworkError 请求未得到任何 HTTP 响应
func NewNetworkError(err error) *APIError {
	apiErr := NewAPIError(0, "network error")
	apiErr.Err = err
	return apiErr
}

func (e *APIError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsUnauthorized 是否为 401
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// AsAppError 转换为 AppError
func (e *APIError) AsAppError() *AppError {
	appErr := New(e.Code, e.Message).
		WithMetadata("status_code", e.StatusCode).
		WithMetadata("path", e.Path)
	appErr.Err = e.Err
	return appErr
}

// ErrCanceled 表示被取代或被拆除的操作。它不是用户可见的错误。
var ErrCanceled = errors.New("request canceled")

// ErrSessionChanged 刷新期间会话被清除或被新的登录替换，刷新结果作废
var ErrSessionChanged = errors.New("session changed during token refresh")

type canceledError struct {
	cause error
}

func (e *canceledError) Error() string {
	if e.cause == nil {
		return ErrCanceled.Error()
	}
	return ErrCanceled.Error() + ": " + e.cause.Error()
}

func (e *canceledError) Is(target error) bool {
	return target == ErrCanceled
}

func (e *canceledError) Unwrap() error {
	return e.cause
}

// Canceled 包装取消原因，errors.Is(err, ErrCanceled) 恒为 true
func Canceled(cause error) error {
	return &canceledError{cause: cause}
}

// IsCanceled 识别取消信号：ErrCanceled 或由 context 取消引起的异常
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsValidation 是否为本地校验失败
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// AsAPIError 提取 APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// UserMessage 返回面向用户的消息：优先使用错误自身的消息，否则使用 fallback
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		if len(vErr.Fields) > 0 && vErr.Fields[0].Message != "" {
			return vErr.Fields[0].Message
		}
		return fallback
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
