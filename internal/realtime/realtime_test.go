package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/metrics"
	"shopfront/internal/session"
	"shopfront/internal/storage"
)

const (
	productID = "64b7f0c2a1b2c3d4e5f60718"
	userID    = "64b7f0c2a1b2c3d4e5f60719"
)

var (
	admin    = session.User{ID: userID, Name: "Ada", Email: "ada@example.com", Role: session.RoleAdmin}
	customer = session.User{ID: userID, Name: "Cy", Email: "cy@example.com", Role: session.RoleCustomer}
)

// toastRecorder 记录收到的提示
type toastRecorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *toastRecorder) Toast(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *toastRecorder) all() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

type fixture struct {
	src     *LocalSource
	auth    *session.AuthStore
	bridge  *Bridge
	toasts  *toastRecorder
	metrics *metrics.ClientMetrics
}

func newFixture(t *testing.T, user *session.User) *fixture {
	t.Helper()
	f := &fixture{
		src:     NewLocalSource(),
		auth:    session.NewAuthStore(storage.NewMemoryStore(), log.Discard()),
		toasts:  &toastRecorder{},
		metrics: metrics.NewTestMetrics(),
	}
	if user != nil {
		require.NoError(t, f.auth.SetAuth(context.Background(), *user, "access", "refresh"))
	}
	f.bridge = NewBridge(f.src, f.auth, f.toasts, BridgeOptions{Logger: log.Discard(), Metrics: f.metrics})
	f.bridge.Attach()
	t.Cleanup(f.bridge.Close)
	return f
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func lowStock(stock, threshold int) map[string]any {
	return map[string]any{
		"productId":    productID,
		"productName":  "Classic Tee",
		"sku":          "TSHIRT-BLK-M",
		"currentStock": stock,
		"threshold":    threshold,
	}
}

func TestNotificationRouting(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		toasts  int
		icon    string
		dropped string
	}{
		{
			name:    "order status uses package icon",
			payload: []byte(`{"type":"order_status","title":"Order shipped","message":"Your order is on the way"}`),
			toasts:  1,
			icon:    IconPackage,
		},
		{
			name:    "other types use bell icon",
			payload: []byte(`{"type":"promo","title":"Sale","message":"20% off today","link":"/sale"}`),
			toasts:  1,
			icon:    IconBell,
		},
		{
			name:    "missing title",
			payload: []byte(`{"type":"promo","message":"no title"}`),
			dropped: DropInvalid,
		},
		{
			name:    "malformed json",
			payload: []byte(`{"type":`),
			dropped: DropMalformed,
		},
		{
			name:    "wrong field type",
			payload: []byte(`{"type":"promo","title":42,"message":"x"}`),
			dropped: DropMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &customer)
			require.True(t, f.bridge.Active())

			assert.NotPanics(t, func() { f.src.Emit(EventNotification, tt.payload) })

			toasts := f.toasts.all()
			require.Len(t, toasts, tt.toasts)
			if tt.toasts == 1 {
				assert.Equal(t, ToastInfo, toasts[0].Kind)
				assert.Equal(t, tt.icon, toasts[0].Icon)
				assert.Equal(t, NotificationDuration, toasts[0].Duration)
				assert.NotEmpty(t, toasts[0].Title)
			}
			if tt.dropped != "" {
				assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.EventsDropped.WithLabelValues(EventNotification, tt.dropped)))
			}
			assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.EventsReceived.WithLabelValues(EventNotification)))
		})
	}
}

func TestLowStockOnlyForPrivilegedRoles(t *testing.T) {
	t.Run("customer ignores alert", func(t *testing.T) {
		f := newFixture(t, &customer)
		f.src.Emit(EventLowStock, mustJSON(t, lowStock(3, 5)))

		assert.Empty(t, f.toasts.all())
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.EventsDropped.WithLabelValues(EventLowStock, DropRole)))
	})

	t.Run("admin gets alert", func(t *testing.T) {
		f := newFixture(t, &admin)
		f.src.Emit(EventLowStock, mustJSON(t, lowStock(3, 5)))

		toasts := f.toasts.all()
		require.Len(t, toasts, 1)
		got := toasts[0]
		assert.Equal(t, ToastAlert, got.Kind)
		assert.Equal(t, IconWarning, got.Icon)
		assert.Equal(t, LowStockDuration, got.Duration)
		assert.Contains(t, got.Title, "Classic Tee")
		assert.Contains(t, got.Message, "TSHIRT-BLK-M")
		assert.Contains(t, got.Message, "has 3 left")
		assert.Contains(t, got.Message, "threshold 5")
	})

	t.Run("zero stock is valid", func(t *testing.T) {
		f := newFixture(t, &admin)
		f.src.Emit(EventLowStock, mustJSON(t, lowStock(0, 5)))

		toasts := f.toasts.all()
		require.Len(t, toasts, 1)
		assert.Contains(t, toasts[0].Message, "has 0 left")
	})

	t.Run("missing stock is dropped", func(t *testing.T) {
		f := newFixture(t, &admin)
		payload := lowStock(3, 5)
		delete(payload, "currentStock")
		f.src.Emit(EventLowStock, mustJSON(t, payload))

		assert.Empty(t, f.toasts.all())
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.EventsDropped.WithLabelValues(EventLowStock, DropInvalid)))
	})

	t.Run("bad sku is dropped", func(t *testing.T) {
		f := newFixture(t, &admin)
		payload := lowStock(3, 5)
		payload["sku"] = "!"
		f.src.Emit(EventLowStock, mustJSON(t, payload))

		assert.Empty(t, f.toasts.all())
	})
}

func TestNotifierPanicIsRecovered(t *testing.T) {
	src := NewLocalSource()
	auth := session.NewAuthStore(storage.NewMemoryStore(), log.Discard())
	require.NoError(t, auth.SetAuth(context.Background(), customer, "access", "refresh"))
	m := metrics.NewTestMetrics()

	b := NewBridge(src, auth, NotifierFunc(func(Toast) { panic("render failed") }), BridgeOptions{Logger: log.Discard(), Metrics: m})
	b.Attach()
	defer b.Close()

	assert.NotPanics(t, func() {
		src.Emit(EventNotification, []byte(`{"type":"promo","title":"Sale","message":"x"}`))
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsDropped.WithLabelValues(EventNotification, DropPanic)))
	assert.True(t, b.Active())
}

func TestBridgeLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// 未登录
	assert.False(t, f.bridge.Active())
	assert.Zero(t, f.src.Subscribers())

	require.NoError(t, f.auth.SetAuth(ctx, admin, "access", "refresh"))
	assert.True(t, f.bridge.Active())
	assert.Equal(t, 2, f.src.Subscribers())

	// 断线停止，重连恢复
	f.src.SetConnected(false)
	assert.False(t, f.bridge.Active())
	assert.Zero(t, f.src.Subscribers())

	f.src.SetConnected(true)
	assert.True(t, f.bridge.Active())
	assert.Equal(t, 2, f.src.Subscribers())

	// 登出：会话清空之前桥已经停止
	var activeAtClear, subscribersAtClear = true, -1
	f.auth.OnBeforeClear(func(s session.Session) {
		activeAtClear = f.bridge.Active()
		subscribersAtClear = f.src.Subscribers()
		assert.True(t, s.IsAuthenticated)
	})
	require.NoError(t, f.auth.ClearAuth(ctx))
	assert.False(t, activeAtClear)
	assert.Zero(t, subscribersAtClear)
	assert.False(t, f.bridge.Active())

	// 登出后事件不再产生提示
	f.src.Emit(EventNotification, []byte(`{"type":"promo","title":"Sale","message":"x"}`))
	assert.Empty(t, f.toasts.all())
}

func TestBridgeCloseDetaches(t *testing.T) {
	f := newFixture(t, &admin)
	require.True(t, f.bridge.Active())

	f.bridge.Close()
	assert.False(t, f.bridge.Active())
	assert.Zero(t, f.src.Subscribers())

	// 拆除后状态变化不会重新订阅
	f.src.SetConnected(false)
	f.src.SetConnected(true)
	require.NoError(t, f.auth.SetAuth(context.Background(), admin, "a2", "r2"))
	assert.False(t, f.bridge.Active())
	assert.Zero(t, f.src.Subscribers())
}

func TestBridgeWaitsForConnection(t *testing.T) {
	src := NewLocalSource()
	src.SetConnected(false)
	auth := session.NewAuthStore(storage.NewMemoryStore(), log.Discard())
	require.NoError(t, auth.SetAuth(context.Background(), admin, "access", "refresh"))

	b := NewBridge(src, auth, &toastRecorder{}, BridgeOptions{Logger: log.Discard()})
	b.Attach()
	defer b.Close()

	assert.False(t, b.Active())
	src.SetConnected(true)
	assert.True(t, b.Active())
}

func TestChanNotifierNeverBlocks(t *testing.T) {
	var dropped []Toast
	n := NewChanNotifier(1, func(t Toast) { dropped = append(dropped, t) })

	n.Toast(Toast{Title: "first"})
	n.Toast(Toast{Title: "second"})

	require.Len(t, dropped, 1)
	assert.Equal(t, "second", dropped[0].Title)
	assert.Equal(t, "first", (<-n.C).Title)
}

func TestWaitConnected(t *testing.T) {
	src := NewLocalSource()
	src.SetConnected(false)

	assert.False(t, WaitConnected(context.Background(), src, 150*time.Millisecond))

	go func() {
		time.Sleep(50 * time.Millisecond)
		src.SetConnected(true)
	}()
	assert.True(t, WaitConnected(context.Background(), src, 2*time.Second))
}

func TestHealthChecker(t *testing.T) {
	src := NewLocalSource()
	hc := NewHealthChecker(src, 20*time.Millisecond)
	assert.True(t, hc.IsHealthy())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hc.Start(ctx)

	src.SetConnected(false)
	assert.Eventually(t, func() bool { return !hc.IsHealthy() }, time.Second, 10*time.Millisecond)

	hc.Stop()
	hc.Stop()
}

func TestWebSocketSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	send := make(chan struct{})
	finish := make(chan struct{})
	gotAuth := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		<-send
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"unknown","data":{}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"notification","data":{"type":"promo","title":"Sale","message":"x"}}`))
		<-finish
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer access")
	src, err := DialWebSocket(context.Background(), WebSocketOptions{URL: srv.URL, Header: header, Logger: log.Discard()})
	require.NoError(t, err)
	assert.True(t, src.Connected())
	assert.Equal(t, "Bearer access", <-gotAuth)

	received := make(chan []byte, 4)
	_, err = src.Subscribe(EventNotification, func(payload []byte) { received <- payload })
	require.NoError(t, err)

	states := make(chan bool, 1)
	src.OnStateChange(func(connected bool) { states <- connected })

	close(send)
	select {
	case payload := <-received:
		assert.JSONEq(t, `{"type":"promo","title":"Sale","message":"x"}`, string(payload))
	case <-time.After(2 * time.Second):
		t.Fatal("notification frame not delivered")
	}

	// 服务端断开
	close(finish)
	select {
	case connected := <-states:
		assert.False(t, connected)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect not observed")
	}
	assert.False(t, src.Connected())
	assert.NoError(t, src.Close())
	assert.NoError(t, src.Close())
}

func TestWebSocketDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := DialWebSocket(context.Background(), WebSocketOptions{URL: srv.URL, Logger: log.Discard()})
	require.Error(t, err)
}

func TestNATSSubject(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "shop.events", want: "shop.events.lowStock"},
		{prefix: "shop.events.", want: "shop.events.lowStock"},
		{prefix: "", want: "lowStock"},
	}
	for _, tt := range tests {
		src := &NATSSource{prefix: trimPrefix(tt.prefix)}
		assert.Equal(t, tt.want, src.Subject(EventLowStock))
	}
}

// TestNATSBridge 需要真实的 NATS：SHOPFRONT_TEST_NATS_URL=nats://127.0.0.1:4222
func TestNATSBridge(t *testing.T) {
	url := os.Getenv("SHOPFRONT_TEST_NATS_URL")
	if url == "" {
		t.Skip("SHOPFRONT_TEST_NATS_URL not set")
	}

	src, err := ConnectNATS(NATSOptions{URL: url, SubjectPrefix: "shopfront.test", Logger: log.Discard()})
	require.NoError(t, err)
	defer src.Close()

	auth := session.NewAuthStore(storage.NewMemoryStore(), log.Discard())
	require.NoError(t, auth.SetAuth(context.Background(), admin, "access", "refresh"))

	toasts := NewChanNotifier(4, nil)
	b := NewBridge(src, auth, toasts, BridgeOptions{Logger: log.Discard()})
	b.Attach()
	defer b.Close()
	require.True(t, b.Active())

	require.NoError(t, src.Publish(EventLowStock, lowStock(2, 10)))
	select {
	case got := <-toasts.C:
		assert.Equal(t, ToastAlert, got.Kind)
		assert.Contains(t, got.Message, "TSHIRT-BLK-M")
	case <-time.After(3 * time.Second):
		t.Fatal("low stock alert not delivered")
	}
}
