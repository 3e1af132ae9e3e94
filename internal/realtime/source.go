// Package realtime 把服务端推送的事件转换为提示（toast），并按会话角色过滤
package realtime

import (
	"sync"
)

// 订阅的事件名
const (
	EventNotification = "notification"
	EventLowStock     = "lowStock"
)

// Handler 收到一条事件的原始 JSON 负载
type Handler func(payload []byte)

// Subscription 单个事件的订阅句柄
type Subscription interface {
	Unsubscribe() error
}

// Source 实时通道。连接管理由具体实现负责，桥只关心订阅与连接状态。
type Source interface {
	Subscribe(event string, h Handler) (Subscription, error)
	Connected() bool
	// OnStateChange 连接建立或断开时回调
	OnStateChange(fn func(connected bool)) (remove func())
	Close() error
}

// stateListeners 连接状态观察者列表，按注册顺序回调
type stateListeners struct {
	mu     sync.Mutex
	nextID int
	fns    []stateListener
}

type stateListener struct {
	id int
	fn func(bool)
}

func (s *stateListeners) add(fn func(bool)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.fns = append(s.fns, stateListener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.fns {
			if l.id == id {
				s.fns = append(s.fns[:i:i], s.fns[i+1:]...)
				return
			}
		}
	}
}

func (s *stateListeners) emit(connected bool) {
	s.mu.Lock()
	fns := make([]func(bool), 0, len(s.fns))
	for _, l := range s.fns {
		fns = append(fns, l.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(connected)
	}
}

// handlerSet 事件名 -> 处理函数，供没有原生订阅概念的通道使用
type handlerSet struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

func newHandlerSet() *handlerSet {
	return &handlerSet{handlers: make(map[string]map[int]Handler)}
}

func (hs *handlerSet) add(event string, h Handler) Subscription {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.nextID++
	id := hs.nextID
	if hs.handlers[event] == nil {
		hs.handlers[event] = make(map[int]Handler)
	}
	hs.handlers[event][id] = h
	return &handlerSubscription{set: hs, event: event, id: id}
}

func (hs *handlerSet) get(event string) []Handler {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	out := make([]Handler, 0, len(hs.handlers[event]))
	for _, h := range hs.handlers[event] {
		out = append(out, h)
	}
	return out
}

func (hs *handlerSet) count() int {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	n := 0
	for _, m := range hs.handlers {
		n += len(m)
	}
	return n
}

type handlerSubscription struct {
	set   *handlerSet
	event string
	id    int
}

func (s *handlerSubscription) Unsubscribe() error {
	s.set.mu.Lock()
	defer s.set.mu.Unlock()
	delete(s.set.handlers[s.event], s.id)
	return nil
}

// LocalSource 进程内通道：嵌入方或测试直接 Emit 事件
type LocalSource struct {
	handlers *handlerSet
	states   stateListeners

	mu        sync.RWMutex
	connected bool
}

// NewLocalSource 创建进程内通道，初始为已连接
func NewLocalSource() *LocalSource {
	return &LocalSource{handlers: newHandlerSet(), connected: true}
}

// Subscribe 订阅事件
func (s *LocalSource) Subscribe(event string, h Handler) (Subscription, error) {
	return s.handlers.add(event, h), nil
}

// Connected 是否已连接
func (s *LocalSource) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// OnStateChange 连接状态观察者
func (s *LocalSource) OnStateChange(fn func(bool)) func() {
	return s.states.add(fn)
}

// SetConnected 模拟连接建立或断开
func (s *LocalSource) SetConnected(connected bool) {
	s.mu.Lock()
	changed := s.connected != connected
	s.connected = connected
	s.mu.Unlock()
	if changed {
		s.states.emit(connected)
	}
}

// Emit 同步投递一条事件；未连接时丢弃
func (s *LocalSource) Emit(event string, payload []byte) {
	if !s.Connected() {
		return
	}
	for _, h := range s.handlers.get(event) {
		h(payload)
	}
}

// Subscribers 当前订阅数
func (s *LocalSource) Subscribers() int {
	return s.handlers.count()
}

// Close 断开
func (s *LocalSource) Close() error {
	s.SetConnected(false)
	return nil
}
