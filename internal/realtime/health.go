package realtime

import (
	"context"
	"sync"
	"time"
)

// HealthChecker 周期性检查通道连接状态
type HealthChecker struct {
	source    Source
	isHealthy bool
	mutex     sync.RWMutex
	stopOnce  sync.Once
	stopCh    chan struct{}
	interval  time.Duration
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(source Source, checkInterval time.Duration) *HealthChecker {
	if checkInterval <= 0 {
		checkInterval = 10 * time.Second
	}

	return &HealthChecker{
		source:    source,
		isHealthy: source.Connected(),
		stopCh:    make(chan struct{}),
		interval:  checkInterval,
	}
}

// Start 启动健康检查，阻塞到 ctx 结束或 Stop
func (hc *HealthChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hc.stopCh:
			return
		case <-ticker.C:
			hc.checkHealth()
		}
	}
}

// Stop 停止健康检查，可重复调用
func (hc *HealthChecker) Stop() {
	hc.stopOnce.Do(func() { close(hc.stopCh) })
}

// IsHealthy 最近一次检查的结果
func (hc *HealthChecker) IsHealthy() bool {
	hc.mutex.RLock()
	defer hc.mutex.RUnlock()
	return hc.isHealthy
}

func (hc *HealthChecker) checkHealth() {
	healthy := hc.source.Connected()

	hc.mutex.Lock()
	hc.isHealthy = healthy
	hc.mutex.Unlock()
}

// WaitConnected 等待通道连上，超时或 ctx 结束返回 false
func WaitConnected(ctx context.Context, source Source, maxWait time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if source.Connected() {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
