package apiclient

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"shopfront/internal/pkg/i18n"
)

// requestQueue 合并相同的并发 GET（method + path + 排序后的参数 + 语言 + 额外请求头）。
// 与 singleflight 不同，每个等待者可以单独取消；全部等待者离开后才取消底层请求。
// 共享请求只携带首个调用方的 trace ID。
type requestQueue struct {
	mu    sync.Mutex
	calls map[string]*queuedCall
}

type queuedCall struct {
	done    chan struct{}
	cancel  context.CancelFunc
	waiters int
	resp    *RawResponse
	err     error
}

func newRequestQueue() *requestQueue {
	return &requestQueue{calls: make(map[string]*queuedCall)}
}

// Queued 发送可合并的 GET。返回的 RawResponse 在等待者之间共享，调用方不得修改 Body。
func (c *Client) Queued(ctx context.Context, path string, opts ...RequestOption) (*RawResponse, error) {
	if ctx.Err() != nil {
		return nil, ctxError(ctx)
	}

	ro := buildOptions(opts)
	key := queueKey(ctx, path, ro)
	q := c.queue

	q.mu.Lock()
	call, joined := q.calls[key]
	if !joined {
		// 底层请求继承首个调用方的 trace，但生命周期由等待者计数决定
		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		call = &queuedCall{done: make(chan struct{}), cancel: cancel}
		q.calls[key] = call

		go func() {
			resp, err := c.Request(callCtx, http.MethodGet, path, nil, opts...)

			q.mu.Lock()
			call.resp, call.err = resp, err
			if q.calls[key] == call {
				delete(q.calls, key)
			}
			q.mu.Unlock()

			close(call.done)
			cancel()
		}()
	} else {
		c.metrics.IncCoalesced(path)
	}
	call.waiters++
	q.mu.Unlock()

	select {
	case <-call.done:
		return call.resp, call.err
	case <-ctx.Done():
		q.mu.Lock()
		call.waiters--
		if call.waiters == 0 {
			call.cancel()
			if q.calls[key] == call {
				delete(q.calls, key)
			}
		}
		q.mu.Unlock()
		return nil, ctxError(ctx)
	}
}

// queueKey 响应内容可能随之变化的部分都计入键：参数、Accept-Language、WithHeader 追加的头
func queueKey(ctx context.Context, path string, ro requestOptions) string {
	var b strings.Builder
	b.WriteString(http.MethodGet + " " + path + "?" + ro.query.Encode())
	b.WriteString(" lang=" + i18n.GetLanguageCode(i18n.GetLanguage(ctx)))

	names := make([]string, 0, len(ro.header))
	for name := range ro.header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(" " + name + "=" + strings.Join(ro.header[name], ","))
	}
	return b.String()
}

// QueuedDo 合并 GET 并返回 data
func QueuedDo[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (T, error) {
	var zero T
	raw, err := c.Queued(ctx, path, opts...)
	if err != nil {
		return zero, err
	}
	env, err := DecodeEnvelope[T](raw)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}

// QueuedList 合并 GET 并返回列表
func QueuedList[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (Page[T], error) {
	raw, err := c.Queued(ctx, path, opts...)
	if err != nil {
		return Page[T]{}, err
	}
	env, err := DecodeList[T](raw)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: env.Data, Pagination: env.Pagination}, nil
}

// inflight 当前未完成的合并请求数
func (q *requestQueue) inflight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}
