package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/xerrors"
)

// Frame WebSocket 上的消息帧
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebSocketOptions WebSocket 通道配置
type WebSocketOptions struct {
	URL string
	// Header 握手时附带的请求头（例如 Authorization）
	Header       http.Header
	PingInterval time.Duration
	Logger       log.Logger
}

// WebSocketSource 基于 WebSocket 的实时通道，服务端推送 {"event": ..., "data": {...}} 帧
type WebSocketSource struct {
	handlers     *handlerSet
	states       stateListeners
	logger       log.Logger
	pingInterval time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	done      chan struct{}
	loopDone  chan struct{}
}

// DialWebSocket 建立连接并启动读循环
func DialWebSocket(ctx context.Context, opts WebSocketOptions) (*WebSocketSource, error) {
	wsURL := opts.URL
	if strings.HasPrefix(wsURL, "https") {
		wsURL = "wss" + wsURL[len("https"):]
	} else if strings.HasPrefix(wsURL, "http") {
		wsURL = "ws" + wsURL[len("http"):]
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, wsURL, opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, xerrors.NewRealtimeError("websocket dial", err)
	}

	pingInterval := opts.PingInterval
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}

	s := &WebSocketSource{
		handlers:     newHandlerSet(),
		logger:       log.OrDefault(opts.Logger, "realtime.websocket"),
		pingInterval: pingInterval,
		conn:         conn,
		connected:    true,
		done:         make(chan struct{}),
		loopDone:     make(chan struct{}),
	}
	go s.readLoop()
	go s.heartbeat()
	return s, nil
}

// Subscribe 订阅事件
func (s *WebSocketSource) Subscribe(event string, h Handler) (Subscription, error) {
	return s.handlers.add(event, h), nil
}

// Connected 读循环是否仍在运行
func (s *WebSocketSource) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// OnStateChange 连接状态观察者
func (s *WebSocketSource) OnStateChange(fn func(bool)) func() {
	return s.states.add(fn)
}

// Close 发送关闭帧并等待读循环退出
func (s *WebSocketSource) Close() error {
	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return nil
	}
	conn := s.conn
	s.conn = nil
	close(s.done)
	err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.mu.Unlock()

	if err != nil && err != websocket.ErrCloseSent {
		// 连接已经断开时关闭帧发不出去，不算失败
		s.logger.Debug("websocket close frame not sent", log.Err(err))
	}
	_ = conn.Close()
	<-s.loopDone
	return nil
}

func (s *WebSocketSource) readLoop() {
	defer close(s.loopDone)

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Warn("websocket read failed", log.Err(err))
			}
			s.setDisconnected()
			return
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil || frame.Event == "" {
			s.logger.Debug("websocket frame ignored", log.Int("bytes", len(message)))
			continue
		}
		for _, h := range s.handlers.get(frame.Event) {
			h(frame.Data)
		}
	}
}

func (s *WebSocketSource) heartbeat() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.loopDone:
			return
		case <-ticker.C:
			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				s.logger.Debug("websocket ping failed", log.Err(err))
			}
		}
	}
}

func (s *WebSocketSource) setDisconnected() {
	s.mu.Lock()
	changed := s.connected
	s.connected = false
	s.mu.Unlock()
	if changed {
		s.states.emit(false)
	}
}
