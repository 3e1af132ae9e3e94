package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/xerrors"
)

// NATSOptions NATS 通道配置
type NATSOptions struct {
	URL string
	// SubjectPrefix 事件 subject 为 <prefix>.<event>
	SubjectPrefix string
	Name          string
	Logger        log.Logger
}

// NATSSource 基于 NATS 的实时通道
type NATSSource struct {
	nc     *nats.Conn
	prefix string
	logger log.Logger
	states stateListeners
}

// ConnectNATS 连接 NATS，断线后无限重连
func ConnectNATS(opts NATSOptions) (*NATSSource, error) {
	src := &NATSSource{
		prefix: trimPrefix(opts.SubjectPrefix),
		logger: log.OrDefault(opts.Logger, "realtime.nats"),
	}
	name := opts.Name
	if name == "" {
		name = "shopfront"
	}

	nc, err := nats.Connect(opts.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(1*time.Second),
		nats.DisconnectErrHandler(src.onDisconnect),
		nats.ReconnectHandler(src.onReconnect),
		nats.ClosedHandler(src.onClosed),
	)
	if err != nil {
		return nil, xerrors.NewRealtimeError("connect", err)
	}
	src.nc = nc
	return src, nil
}

// NewNATSSource 复用已有连接
func NewNATSSource(nc *nats.Conn, subjectPrefix string, logger log.Logger) *NATSSource {
	src := &NATSSource{
		nc:     nc,
		prefix: trimPrefix(subjectPrefix),
		logger: log.OrDefault(logger, "realtime.nats"),
	}
	nc.SetDisconnectErrHandler(src.onDisconnect)
	nc.SetReconnectHandler(src.onReconnect)
	nc.SetClosedHandler(src.onClosed)
	return src
}

func trimPrefix(prefix string) string {
	return strings.TrimSuffix(prefix, ".")
}

// Subject 事件对应的 subject
func (s *NATSSource) Subject(event string) string {
	if s.prefix == "" {
		return event
	}
	return s.prefix + "." + event
}

// Subscribe 订阅事件。*nats.Subscription 本身满足 Subscription。
func (s *NATSSource) Subscribe(event string, h Handler) (Subscription, error) {
	sub, err := s.nc.Subscribe(s.Subject(event), func(m *nats.Msg) {
		h(m.Data)
	})
	if err != nil {
		return nil, xerrors.NewRealtimeError("subscribe "+event, err)
	}
	return sub, nil
}

// Publish 发布事件（测试与运维工具使用）
func (s *NATSSource) Publish(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event failed: %w", event, err)
	}
	return s.nc.Publish(s.Subject(event), data)
}

// Connected 连接是否可用
func (s *NATSSource) Connected() bool {
	return s.nc != nil && s.nc.IsConnected() && !s.nc.IsClosed()
}

// OnStateChange 连接状态观察者
func (s *NATSSource) OnStateChange(fn func(bool)) func() {
	return s.states.add(fn)
}

// Close 排空订阅后关闭连接
func (s *NATSSource) Close() error {
	if s.nc == nil || s.nc.IsClosed() {
		return nil
	}
	if err := s.nc.Drain(); err != nil {
		s.nc.Close()
		return xerrors.NewRealtimeError("close", err)
	}
	return nil
}

func (s *NATSSource) onDisconnect(_ *nats.Conn, err error) {
	if err != nil {
		s.logger.Warn("nats disconnected", log.Err(err))
	}
	s.states.emit(false)
}

func (s *NATSSource) onReconnect(nc *nats.Conn) {
	s.logger.Info("nats reconnected", log.String("url", nc.ConnectedUrlRedacted()))
	s.states.emit(true)
}

func (s *NATSSource) onClosed(*nats.Conn) {
	s.states.emit(false)
}
