// File: internal/pkg/trace/trace.go
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"shopfront/internal/pkg/ctxkey"
)

const (
	// HeaderTraceID 出站请求携带的追踪头
	HeaderTraceID = "X-Trace-Id"
	// HeaderRequestID 每次 HTTP 尝试唯一
	HeaderRequestID = "X-Request-Id"
)

// WithTraceID 在 context 中设置 trace ID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return ctxkey.WithValue(ctx, ctxkey.TraceID, traceID)
}

// GetTraceID 从 context 中获取 trace ID
func GetTraceID(ctx context.Context) string {
	return ctxkey.GetString(ctx, ctxkey.TraceID)
}

// Ensure 确保 context 中存在 trace ID，不存在时生成
func Ensure(ctx context.Context) (context.Context, string) {
	if id := GetTraceID(ctx); id != "" {
		return ctx, id
	}
	id := GenerateTraceID()
	return WithTraceID(ctx, id), id
}

// GenerateTraceID 生成新的 trace ID
// 格式: 32 个字符的十六进制字符串 (类似 OpenTelemetry trace ID)
func GenerateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// 降级到基于时间的 ID
		return fmt.Sprintf("%032x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// Inject 将 trace ID 与新的 request ID 写入请求头，返回 request ID
func Inject(req *http.Request, traceID string) string {
	requestID := uuid.NewString()
	if traceID != "" {
		req.Header.Set(HeaderTraceID, traceID)
	}
	req.Header.Set(HeaderRequestID, requestID)
	return requestID
}
