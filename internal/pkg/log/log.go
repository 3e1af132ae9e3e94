// File: internal/pkg/log/log.go
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"shopfront/internal/pkg/ctxkey"
	"shopfront/internal/pkg/xerrors"
)

// Logger 接口定义（在消费端定义）
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

// StructuredLogger slog的包装器
type StructuredLogger struct {
	logger *slog.Logger
}

var (
	globalMu     sync.RWMutex
	globalLogger Logger
)

// Init 初始化日志器，输出到 stderr（stdout 留给 CLI 输出）
func Init(level slog.Level, environment string) {
	InitWithWriter(os.Stderr, level, environment)
}

// InitWithWriter 初始化日志器到指定 writer
func InitWithWriter(w io.Writer, level slog.Level, environment string) {
	var handler slog.Handler

	if environment == "production" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: level <= slog.LevelDebug,
		})
	}

	logger := slog.New(NewContextHandler(handler))

	globalMu.Lock()
	globalLogger = &StructuredLogger{logger: logger}
	globalMu.Unlock()

	slog.SetDefault(logger)
}

// ParseLevel 解析配置中的日志级别，未知值回落到 info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogger 获取全局logger
func GetLogger() Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l == nil {
		Init(slog.LevelInfo, "development")
		globalMu.RLock()
		l = globalLogger
		globalMu.RUnlock()
	}
	return l
}

// NewLogger 创建新的logger实例
func NewLogger(handler slog.Handler) Logger {
	return &StructuredLogger{
		logger: slog.New(NewContextHandler(handler)),
	}
}

// Discard 丢弃所有输出，测试使用
func Discard() Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// OrDefault 组件构造时的兜底：nil 时使用全局 logger 并标注 component
func OrDefault(l Logger, component string) Logger {
	if l == nil {
		l = GetLogger()
	}
	return l.With("component", component)
}

func (l *StructuredLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *StructuredLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *StructuredLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *StructuredLogger) Error(msg string, err error, args ...any) {
	args = append(args, slog.Any("error", err))
	l.logger.Error(msg, args...)
}

func (l *StructuredLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *StructuredLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *StructuredLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *StructuredLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *StructuredLogger) With(args ...any) Logger {
	return &StructuredLogger{
		logger: l.logger.With(args...),
	}
}

func (l *StructuredLogger) WithGroup(name string) Logger {
	return &StructuredLogger{
		logger: l.logger.WithGroup(name),
	}
}

// ContextHandler 上下文感知的handler
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler 创建上下文handler
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if traceID := ctxkey.GetString(ctx, ctxkey.TraceID); traceID != "" {
			r.AddAttrs(slog.String("trace_id", traceID))
		}
		if op := ctxkey.GetString(ctx, ctxkey.Operation); op != "" {
			r.AddAttrs(slog.String("operation", op))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

// 便捷函数，使用全局logger

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, err error, args ...any) {
	GetLogger().Error(msg, err, args...)
}

// LogAppError 记录AppError，利用其LogValue方法
func LogAppError(ctx context.Context, logger Logger, msg string, appErr *xerrors.AppError) {
	if logger == nil {
		logger = GetLogger()
	}
	switch appErr.Level {
	case xerrors.LevelCritical, xerrors.LevelError:
		logger.ErrorContext(ctx, msg, slog.Any("app_error", appErr))
	case xerrors.LevelWarn:
		logger.WarnContext(ctx, msg, slog.Any("app_error", appErr))
	default:
		logger.InfoContext(ctx, msg, slog.Any("app_error", appErr))
	}
}

// LogAPIRequest 记录一次出站 API 调用。status 为 0 表示网络失败。
func LogAPIRequest(ctx context.Context, logger Logger, method, path string, statusCode int, durationMs int64) {
	if logger == nil {
		logger = GetLogger()
	}
	args := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status_code", statusCode),
		slog.Int64("duration_ms", durationMs),
	}

	switch {
	case statusCode == 0 || statusCode >= 500:
		logger.ErrorContext(ctx, "api request failed", args...)
	case statusCode >= 400:
		logger.WarnContext(ctx, "api request rejected", args...)
	default:
		logger.DebugContext(ctx, "api request completed", args...)
	}
}

// LogEventDropped 记录被丢弃的实时事件（不会向上传播）
func LogEventDropped(ctx context.Context, logger Logger, event, reason string, err error) {
	if logger == nil {
		logger = GetLogger()
	}
	args := []any{
		slog.String("event", event),
		slog.String("reason", reason),
	}
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	logger.WarnContext(ctx, "realtime event dropped", args...)
}

// String 字符串属性
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Int 整数属性
func Int(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

// Bool 布尔属性
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Any 任意类型属性
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Err 错误属性
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
