package realtime

import (
	"time"

	"shopfront/internal/pkg/log"
)

// ToastKind 提示级别
type ToastKind string

const (
	ToastInfo  ToastKind = "info"
	ToastAlert ToastKind = "alert"
)

// 图标
const (
	IconPackage = "package"
	IconBell    = "bell"
	IconWarning = "alert-triangle"
)

// 提示停留时间，低库存告警更久
const (
	NotificationDuration = 5 * time.Second
	LowStockDuration     = 10 * time.Second
)

// Toast 一条瞬时提示
type Toast struct {
	Kind     ToastKind
	Event    string
	Title    string
	Message  string
	Icon     string
	Link     string
	Duration time.Duration
}

// Notifier 提示的接收端
type Notifier interface {
	Toast(t Toast)
}

// NotifierFunc 函数适配器
type NotifierFunc func(Toast)

// Toast 实现 Notifier
func (f NotifierFunc) Toast(t Toast) { f(t) }

// LogNotifier 把提示写入日志，CLI 的默认实现
type LogNotifier struct {
	logger log.Logger
}

// NewLogNotifier 创建日志提示
func NewLogNotifier(logger log.Logger) *LogNotifier {
	return &LogNotifier{logger: log.OrDefault(logger, "toast")}
}

// Toast 实现 Notifier
func (n *LogNotifier) Toast(t Toast) {
	args := []any{
		log.String("kind", string(t.Kind)),
		log.String("event", t.Event),
		log.String("icon", t.Icon),
		log.String("title", t.Title),
		log.String("message", t.Message),
	}
	if t.Kind == ToastAlert {
		n.logger.Warn("toast", args...)
		return
	}
	n.logger.Info("toast", args...)
}

// ChanNotifier 投递到 channel，供嵌入方渲染。channel 满时丢弃，事件处理永不阻塞。
type ChanNotifier struct {
	C       chan Toast
	dropped func(Toast)
}

// NewChanNotifier buffer 为 channel 容量；onDrop 可为空
func NewChanNotifier(buffer int, onDrop func(Toast)) *ChanNotifier {
	return &ChanNotifier{C: make(chan Toast, buffer), dropped: onDrop}
}

// Toast 实现 Notifier
func (n *ChanNotifier) Toast(t Toast) {
	select {
	case n.C <- t:
	default:
		if n.dropped != nil {
			n.dropped(t)
		}
	}
}
