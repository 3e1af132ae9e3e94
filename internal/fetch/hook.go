package fetch

import (
	"context"
	"sync"

	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/metrics"
	"shopfront/internal/pkg/xerrors"
)

// DefaultErrorMessage 错误本身没有可读消息时的兜底文案
const DefaultErrorMessage = "Something went wrong. Please try again."

// Status hook 状态
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State hook 状态快照。Version 每次状态变更递增，观察者可用它丢弃乱序的通知。
type State[T any] struct {
	Status  Status
	Data    T
	Err     error
	Message string
	Version uint64
}

// Loading 是否加载中
func (s State[T]) Loading() bool { return s.Status == StatusLoading }

// Fetcher 实际的获取函数，通常是某个服务方法
type Fetcher[P, T any] func(ctx context.Context, params P) (T, error)

// Options hook 可选配置
type Options struct {
	// Parent 所属作用域的 context，取消时等同于 Close
	Parent          context.Context
	Logger          log.Logger
	Metrics         *metrics.ClientMetrics
	FallbackMessage string
}

// Hook 一个 hook 实例：idle -> loading -> success | error。
// 被取消的获取不改变状态；Close 之后任何迟到的结果都被忽略，观察者也不再被调用。
type Hook[P, T any] struct {
	name     string
	fetch    Fetcher[P, T]
	arena    *Arena
	logger   log.Logger
	metrics  *metrics.ClientMetrics
	fallback string

	mu        sync.Mutex
	state     State[T]
	params    P
	hasParams bool
	closed    bool
	nextID    int
	observers []hookObserver[T]
}

type hookObserver[T any] struct {
	id int
	fn func(State[T])
}

// NewHook 创建 hook，name 用于日志与指标
func NewHook[P, T any](name string, fetch Fetcher[P, T], opts Options) *Hook[P, T] {
	fallback := opts.FallbackMessage
	if fallback == "" {
		fallback = DefaultErrorMessage
	}
	return &Hook[P, T]{
		name:     name,
		fetch:    fetch,
		arena:    NewArena(opts.Parent),
		logger:   log.OrDefault(opts.Logger, "fetch"),
		metrics:  opts.Metrics,
		fallback: fallback,
	}
}

// Run 以新参数发起获取，取消仍在进行的上一次获取。
// 返回的 channel 在本次获取结束（提交或丢弃）后关闭。
func (h *Hook[P, T]) Run(params P) <-chan struct{} {
	done := make(chan struct{})

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(done)
		return done
	}
	h.params = params
	h.hasParams = true
	handle := h.arena.Begin(h.name)
	h.state.Status = StatusLoading
	h.state.Err = nil
	h.state.Message = ""
	h.state.Version++
	snapshot, observers := h.state, h.snapshotObservers()
	h.mu.Unlock()

	h.notify(observers, snapshot)

	go func() {
		defer close(done)
		defer h.arena.Release(handle)
		data, err := h.fetch(handle.Context(), params)
		h.commit(handle, data, err)
	}()
	return done
}

// Refetch 用上一次的参数重新获取；从未 Run 过时什么也不做
func (h *Hook[P, T]) Refetch() <-chan struct{} {
	h.mu.Lock()
	params, ok := h.params, h.hasParams
	h.mu.Unlock()
	if !ok {
		done := make(chan struct{})
		close(done)
		return done
	}
	return h.Run(params)
}

// State 当前状态
func (h *Hook[P, T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe 注册状态观察者
func (h *Hook[P, T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.observers = append(h.observers, hookObserver[T]{id: id, fn: fn})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, o := range h.observers {
			if o.id == id {
				h.observers = append(h.observers[:i:i], h.observers[i+1:]...)
				return
			}
		}
	}
}

// Close 卸载：取消进行中的获取并移除观察者
func (h *Hook[P, T]) Close() {
	h.mu.Lock()
	h.closed = true
	h.observers = nil
	h.mu.Unlock()
	h.arena.Close()
}

func (h *Hook[P, T]) commit(handle *Handle, data T, err error) {
	h.mu.Lock()
	// 过期或已卸载：结果直接丢弃
	if h.closed || !h.arena.IsCurrent(handle) {
		h.mu.Unlock()
		if err != nil && isCancellation(err) {
			h.metrics.IncFetchCanceled(h.name)
		}
		return
	}
	if err != nil && isCancellation(err) {
		h.mu.Unlock()
		h.metrics.IncFetchCanceled(h.name)
		return
	}

	if err != nil {
		h.state.Status = StatusError
		h.state.Err = err
		h.state.Message = xerrors.UserMessage(err, h.fallback)
	} else {
		h.state.Status = StatusSuccess
		h.state.Data = data
		h.state.Err = nil
		h.state.Message = ""
	}
	h.state.Version++
	snapshot, observers := h.state, h.snapshotObservers()
	h.mu.Unlock()

	if err != nil {
		h.logger.WarnContext(handle.Context(), "fetch failed",
			log.String("hook", h.name),
			log.String("message", snapshot.Message),
			log.Err(err),
		)
	}
	h.notify(observers, snapshot)
}

func (h *Hook[P, T]) snapshotObservers() []func(State[T]) {
	fns := make([]func(State[T]), 0, len(h.observers))
	for _, o := range h.observers {
		fns = append(fns, o.fn)
	}
	return fns
}

// notify 逐个调用观察者；每次调用前确认 hook 未被 Close（观察者自身可能阻塞或触发 Close）
func (h *Hook[P, T]) notify(observers []func(State[T]), s State[T]) {
	for _, fn := range observers {
		h.mu.Lock()
		closed := h.closed
		h.mu.Unlock()
		if closed {
			return
		}
		fn(s)
	}
}

// isCancellation 传输层的取消信号与 context 取消都视为取消
func isCancellation(err error) bool {
	return xerrors.IsCanceled(err)
}
