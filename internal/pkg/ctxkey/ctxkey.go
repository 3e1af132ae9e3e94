// File: internal/pkg/ctxkey/ctxkey.go
package ctxkey

import "context"

// ContextKey 统一的 context key 类型
type ContextKey string

const (
	// Language 语言偏好（golang.org/x/text/language.Tag）
	Language ContextKey = "language"

	// TraceID 请求追踪 ID，随出站请求写入 X-Trace-Id
	TraceID ContextKey = "trace_id"

	// Operation 当前逻辑操作名（如 cart.add），用于日志
	Operation ContextKey = "operation"
)

// WithValue 在 context 中设置指定 key 的值
func WithValue(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// GetString 从 context 中获取字符串类型的值
func GetString(ctx context.Context, key ContextKey) string {
	if value, ok := ctx.Value(key).(string); ok {
		return value
	}
	return ""
}

// WithOperation 标记当前逻辑操作
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, Operation, operation)
}
