// File: internal/pkg/metrics/client_metrics_test.go
package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "空路径", path: "", want: "unknown"},
		{name: "无 ID", path: "/products", want: "/products"},
		{name: "末尾 ID", path: "/products/64b7f0c2a1b2c3d4e5f60718", want: "/products/:id"},
		{name: "中间 ID", path: "/orders/64b7f0c2a1b2c3d4e5f60718/cancel", want: "/orders/:id/cancel"},
		{name: "连续 ID", path: "/a/64b7f0c2a1b2c3d4e5f60718/64b7f0c2a1b2c3d4e5f60719", want: "/a/:id/:id"},
		{name: "去掉查询串", path: "/products?page=2", want: "/products"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRoute(tt.path))
		})
	}
}

func TestClientMetrics_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics("test", reg)

	m.RecordRequest("/orders/64b7f0c2a1b2c3d4e5f60718", "GET", 200, 120*time.Millisecond)
	m.RecordRequest("/orders/64b7f0c2a1b2c3d4e5f60719", "GET", 200, 80*time.Millisecond)
	m.RecordRequest("/cart", "POST", 0, time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/orders/:id", "GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/cart", "POST", "0")))
}

func TestClientMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics("test", reg)

	m.IncCoalesced("/products")
	m.IncRefresh("success")
	m.IncRefresh("")
	m.IncEventReceived("notification")
	m.IncEventDropped("lowStock", "invalid_payload")
	m.IncFetchCanceled("compare")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CoalescedTotal.WithLabelValues("/products")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RefreshTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RefreshTotal.WithLabelValues("unknown")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsReceived.WithLabelValues("notification")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsDropped.WithLabelValues("lowStock", "invalid_payload")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetchCanceled.WithLabelValues("compare")))
}

func TestClientMetrics_NilSafe(t *testing.T) {
	var m *ClientMetrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/x", "GET", 200, time.Millisecond)
		m.IncInFlight()
		m.DecInFlight()
		m.IncEventDropped("x", "y")
	})
}

func TestClientMetrics_ConcurrentSafety(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics("test", reg)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncInFlight()
				m.RecordRequest("/products", "GET", 200, time.Millisecond)
				m.DecInFlight()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(1000), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/products", "GET", "200")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RequestsInFlight))
}

func TestPathLimitTracker(t *testing.T) {
	tracker := NewPathLimitTracker(2)
	assert.Equal(t, "/a", tracker.TrackPath("/a"))
	assert.Equal(t, "/b", tracker.TrackPath("/b"))
	assert.Equal(t, "other", tracker.TrackPath("/c"))
	assert.Equal(t, "/a", tracker.TrackPath("/a"))
}
