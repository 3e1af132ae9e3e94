// Package fetch 数据获取 hook：每个 hook 实例同一时间只有一个有效请求，
// 后发起的请求总是覆盖先发起的请求，过期结果在提交前被丢弃。
package fetch

import (
	"context"
	"sync"
)

// Handle 一次逻辑获取的中止句柄
type Handle struct {
	key    string
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Context 传给服务调用的 context，句柄被取代或 arena 关闭时取消
func (h *Handle) Context() context.Context { return h.ctx }

// Key 逻辑操作名
func (h *Handle) Key() string { return h.key }

// Generation 句柄代数，同一个 key 下单调递增
func (h *Handle) Generation() uint64 { return h.gen }

type arenaEntry struct {
	gen    uint64
	cancel context.CancelFunc
}

// Arena 按逻辑操作管理中止句柄。Begin 取消同 key 的旧句柄并递增代数，
// 提交结果前用 IsCurrent 判断句柄是否仍然有效。
type Arena struct {
	parent context.Context

	mu      sync.Mutex
	closed  bool
	entries map[string]*arenaEntry
}

// NewArena parent 取消时所有句柄一并取消
func NewArena(parent context.Context) *Arena {
	if parent == nil {
		parent = context.Background()
	}
	return &Arena{
		parent:  parent,
		entries: make(map[string]*arenaEntry),
	}
}

// Begin 开始 key 的新一轮获取。arena 已关闭时返回一个已取消的句柄。
func (a *Arena) Begin(key string) *Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, cancel := context.WithCancel(a.parent)
	if a.closed {
		cancel()
		return &Handle{key: key, ctx: ctx, cancel: cancel}
	}

	entry, ok := a.entries[key]
	if !ok {
		entry = &arenaEntry{}
		a.entries[key] = entry
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	entry.gen++
	entry.cancel = cancel
	return &Handle{key: key, gen: entry.gen, ctx: ctx, cancel: cancel}
}

// IsCurrent 句柄是否仍是该 key 的最新句柄且 arena 未关闭
func (a *Arena) IsCurrent(h *Handle) bool {
	if h == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	entry, ok := a.entries[h.key]
	return ok && entry.gen == h.gen && h.gen != 0
}

// Release 获取结束后释放句柄的 context；句柄仍为最新时保留代数，只清理取消函数
func (a *Arena) Release(h *Handle) {
	if h == nil {
		return
	}
	h.cancel()
	a.mu.Lock()
	defer a.mu.Unlock()
	if entry, ok := a.entries[h.key]; ok && entry.gen == h.gen {
		entry.cancel = nil
	}
}

// Cancel 取消 key 的当前句柄，之后该句柄不再是最新
func (a *Arena) Cancel(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.entries[key]
	if !ok {
		return
	}
	if entry.cancel != nil {
		entry.cancel()
		entry.cancel = nil
	}
	entry.gen++
}

// Close 拆除：取消全部句柄，之后的 Begin 都返回已取消的句柄
func (a *Arena) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	for _, entry := range a.entries {
		if entry.cancel != nil {
			entry.cancel()
			entry.cancel = nil
		}
	}
}

// Closed 是否已拆除
func (a *Arena) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
