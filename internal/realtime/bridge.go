package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shopfront/internal/pkg/ctxkey"
	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/metrics"
	"shopfront/internal/session"
	"shopfront/internal/validation"
)

// 丢弃原因（日志与指标标签）
const (
	DropMalformed = "malformed_json"
	DropInvalid   = "invalid_payload"
	DropRole      = "role_not_permitted"
	DropInactive  = "bridge_inactive"
	DropPanic     = "handler_panic"
)

// SessionView 桥需要的会话能力，由 *session.AuthStore 实现
type SessionView interface {
	Snapshot() session.Session
	Subscribe(fn func(session.Session)) (unsubscribe func())
	OnBeforeClear(fn func(session.Session)) (remove func())
}

// BridgeOptions 可选配置
type BridgeOptions struct {
	Logger  log.Logger
	Metrics *metrics.ClientMetrics
}

// Bridge 实时事件桥。只有在通道已连接且会话已登录时才订阅；
// 断线、登出（在会话被清空之前）或 Close 时取消订阅。
// 事件处理函数从不向通道抛出 panic 或错误，所有负载问题都降级为丢弃。
type Bridge struct {
	source   Source
	session  SessionView
	notifier Notifier
	logger   log.Logger
	metrics  *metrics.ClientMetrics

	mu       sync.Mutex
	subs     []Subscription
	active   bool
	attached bool
	closed   bool
	detach   []func()
}

// NewBridge 创建事件桥，调用 Attach 后开始跟随会话与连接状态
func NewBridge(source Source, sess SessionView, notifier Notifier, opts BridgeOptions) *Bridge {
	if notifier == nil {
		notifier = NewLogNotifier(opts.Logger)
	}
	return &Bridge{
		source:   source,
		session:  sess,
		notifier: notifier,
		logger:   log.OrDefault(opts.Logger, "realtime"),
		metrics:  opts.Metrics,
	}
}

// Attach 注册会话与连接状态观察者，并按当前状态决定是否订阅
func (b *Bridge) Attach() {
	b.mu.Lock()
	if b.attached || b.closed {
		b.mu.Unlock()
		return
	}
	b.attached = true
	b.mu.Unlock()

	// 登出时先停止桥，再清空会话
	removeBefore := b.session.OnBeforeClear(func(session.Session) {
		b.Stop()
	})
	unsubscribe := b.session.Subscribe(func(s session.Session) {
		b.sync(s.IsAuthenticated)
	})
	removeState := b.source.OnStateChange(func(bool) {
		b.sync(b.session.Snapshot().IsAuthenticated)
	})

	b.mu.Lock()
	b.detach = append(b.detach, removeBefore, unsubscribe, removeState)
	b.mu.Unlock()

	b.sync(b.session.Snapshot().IsAuthenticated)
}

// Start 条件满足时订阅事件；已订阅时什么也不做
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.active {
		return nil
	}
	if !b.source.Connected() || !b.session.Snapshot().IsAuthenticated {
		return nil
	}

	routes := map[string]func(context.Context, []byte) (string, error){
		EventNotification: b.routeNotification,
		EventLowStock:     b.routeLowStock,
	}
	for _, event := range []string{EventNotification, EventLowStock} {
		sub, err := b.source.Subscribe(event, b.handler(event, routes[event]))
		if err != nil {
			b.unsubscribeLocked()
			return err
		}
		b.subs = append(b.subs, sub)
	}
	b.active = true
	b.logger.Info("realtime bridge started")
	return nil
}

// Stop 取消全部订阅
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return
	}
	b.unsubscribeLocked()
	b.logger.Info("realtime bridge stopped")
}

// Active 是否处于订阅状态
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Close 拆除：先取消订阅，再移除会话与连接观察者
func (b *Bridge) Close() {
	b.Stop()

	b.mu.Lock()
	b.closed = true
	detach := b.detach
	b.detach = nil
	b.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
}

func (b *Bridge) sync(authenticated bool) {
	if authenticated && b.source.Connected() {
		if err := b.Start(); err != nil {
			b.logger.Error("realtime bridge start failed", err)
		}
		return
	}
	b.Stop()
}

func (b *Bridge) unsubscribeLocked() {
	for _, sub := range b.subs {
		if err := sub.Unsubscribe(); err != nil {
			b.logger.Warn("realtime unsubscribe failed", log.Err(err))
		}
	}
	b.subs = nil
	b.active = false
}

// handler 包装路由函数：恢复 panic、统计、丢弃无效负载
func (b *Bridge) handler(event string, route func(context.Context, []byte) (string, error)) Handler {
	return func(payload []byte) {
		ctx := ctxkey.WithOperation(context.Background(), "realtime."+event)
		defer func() {
			if r := recover(); r != nil {
				b.drop(ctx, event, DropPanic, fmt.Errorf("panic: %v", r))
			}
		}()

		b.metrics.IncEventReceived(event)
		if !b.Active() {
			b.drop(ctx, event, DropInactive, nil)
			return
		}
		if reason, err := route(ctx, payload); reason != "" {
			b.drop(ctx, event, reason, err)
		}
	}
}

func (b *Bridge) drop(ctx context.Context, event, reason string, err error) {
	b.metrics.IncEventDropped(event, reason)
	if reason == DropRole || reason == DropInactive {
		b.logger.DebugContext(ctx, "realtime event ignored", log.String("event", event), log.String("reason", reason))
		return
	}
	log.LogEventDropped(ctx, b.logger, event, reason, err)
}

// decode 解析并校验负载，失败时返回丢弃原因
func decode[T any](ctx context.Context, payload []byte) (T, string, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, DropMalformed, err
	}
	v, err := validation.ParseContext(ctx, v)
	if err != nil {
		return v, DropInvalid, err
	}
	return v, "", nil
}

func (b *Bridge) routeNotification(ctx context.Context, payload []byte) (string, error) {
	n, reason, err := decode[validation.NotificationPayload](ctx, payload)
	if reason != "" {
		return reason, err
	}

	icon := IconBell
	if n.Type == "order_status" {
		icon = IconPackage
	}
	b.notifier.Toast(Toast{
		Kind:     ToastInfo,
		Event:    EventNotification,
		Title:    n.Title,
		Message:  n.Message,
		Icon:     icon,
		Link:     n.Link,
		Duration: NotificationDuration,
	})
	return "", nil
}

func (b *Bridge) routeLowStock(ctx context.Context, payload []byte) (string, error) {
	// 通道会把低库存事件推给所有客户端，只有特权角色处理
	if !b.session.Snapshot().Role().Privileged() {
		return DropRole, nil
	}
	p, reason, err := decode[validation.LowStockPayload](ctx, payload)
	if reason != "" {
		return reason, err
	}

	b.notifier.Toast(Toast{
		Kind:     ToastAlert,
		Event:    EventLowStock,
		Title:    "Low stock: " + p.ProductName,
		Message:  fmt.Sprintf("%s (SKU %s) has %d left, threshold %d", p.ProductName, p.SKU, *p.CurrentStock, *p.Threshold),
		Icon:     IconWarning,
		Duration: LowStockDuration,
	})
	return "", nil
}
