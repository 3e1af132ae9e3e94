// File: internal/pkg/xerrors/codes.go
package xerrors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在预定义列表中
func (c ErrorCode) IsValid() bool {
	_, exists := codeMessages[c]
	return exists
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (未定义的错误码)", c)
}

// Message 返回错误码对应的消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "未知错误"
}

// -----------------------------------------------------------------------------
// 客户端错误码
// 1xxxxx 本地错误（校验、取消），2xxxxx 认证，3xxxxx 权限，7xxxxx 远端/传输错误。
// -----------------------------------------------------------------------------
const (
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 客户端内部错误
	CodeInvalidParams     ErrorCode = 100002 // 参数校验失败
	CodeInvalidResponse   ErrorCode = 100003 // 响应格式错误
	CodeCanceled          ErrorCode = 100004 // 请求已取消
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源冲突
	CodeRateLimitExceeded ErrorCode = 100429 // 请求频率限制

	CodeAuthenticationFailed ErrorCode = 200001 // 未认证
	CodeInvalidToken         ErrorCode = 200002 // 无效令牌
	CodeTokenExpired         ErrorCode = 200003 // 令牌过期
	CodeSessionExpired       ErrorCode = 200007 // 会话过期

	CodePermissionDenied ErrorCode = 300001 // 权限不足

	CodeBusinessLogicError ErrorCode = 600001 // 业务规则拒绝（4xx）

	CodeExternalServiceError ErrorCode = 700001 // 远端服务错误（5xx / 网络）
	CodeServiceUnavailable   ErrorCode = 700002 // 熔断打开
	CodeStorageError         ErrorCode = 700004 // 本地存储错误
	CodeRealtimeError        ErrorCode = 700005 // 实时通道错误
)

var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "操作成功",
	CodeInternalError:     "客户端内部错误",
	CodeInvalidParams:     "参数错误",
	CodeInvalidResponse:   "响应格式错误",
	CodeCanceled:          "请求已取消",
	CodeResourceNotFound:  "资源不存在",
	CodeDuplicateResource: "资源已存在",
	CodeRateLimitExceeded: "请求频率限制",

	CodeAuthenticationFailed: "认证失败",
	CodeInvalidToken:         "无效令牌",
	CodeTokenExpired:         "令牌过期",
	CodeSessionExpired:       "会话过期",

	CodePermissionDenied: "权限不足",

	CodeBusinessLogicError: "请求被拒绝",

	CodeExternalServiceError: "外部服务错误",
	CodeServiceUnavailable:   "服务暂不可用",
	CodeStorageError:         "本地存储错误",
	CodeRealtimeError:        "实时通道错误",
}

// CodeFromHTTPStatus 将远端 HTTP 状态码映射为客户端错误码
func CodeFromHTTPStatus(status int) ErrorCode {
	switch {
	case status == 0:
		return CodeExternalServiceError
	case status == http.StatusUnauthorized:
		return CodeAuthenticationFailed
	case status == http.StatusForbidden:
		return CodePermissionDenied
	case status == http.StatusNotFound:
		return CodeResourceNotFound
	case status == http.StatusConflict:
		return CodeDuplicateResource
	case status == http.StatusTooManyRequests:
		return CodeRateLimitExceeded
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return CodeInvalidParams
	case status >= 400 && status < 500:
		return CodeBusinessLogicError
	case status == http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	case status >= 500:
		return CodeExternalServiceError
	default:
		return CodeInvalidResponse
	}
}

// getCategoryByCode 根据错误码获取分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "client"
	case code >= 200000 && code < 300000:
		return "authentication"
	case code >= 300000 && code < 400000:
		return "authorization"
	case code >= 600000 && code < 700000:
		return "business"
	case code >= 700000 && code < 800000:
		return "external"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码获取级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch {
	case code == CodeSuccess, code == CodeCanceled:
		return LevelInfo
	case code == CodeInvalidParams, code == CodeResourceNotFound, code == CodeBusinessLogicError:
		return LevelWarn
	case code >= 700001:
		return LevelCritical
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码判断是否可重试
func isRetryableByCode(code ErrorCode) bool {
	switch code {
	case CodeExternalServiceError, CodeServiceUnavailable, CodeRateLimitExceeded, CodeRealtimeError:
		return true
	default:
		return false
	}
}
