package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var defaultRegistryManager = &RegistryManager{
	registerer: prometheus.DefaultRegisterer,
}

// RegistryManager 管理默认的 Prometheus Registerer，测试或嵌入方可以注入自己的实现。
type RegistryManager struct {
	mu         sync.RWMutex
	registerer prometheus.Registerer
}

// SetRegisterer 设置全局 Registerer，须在首次调用 Default() 之前完成。
func SetRegisterer(r prometheus.Registerer) {
	defaultRegistryManager.Set(r)
}

// GetRegisterer 返回当前的 Registerer。
func GetRegisterer() prometheus.Registerer {
	return defaultRegistryManager.Get()
}

// Set 设置 Registerer。
func (m *RegistryManager) Set(r prometheus.Registerer) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerer = r
}

// Get 获取 Registerer。
func (m *RegistryManager) Get() prometheus.Registerer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.registerer == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registerer
}

// NewTestMetrics 使用独立 registry 创建指标，避免测试之间重复注册
func NewTestMetrics() *ClientMetrics {
	return NewClientMetrics("test", prometheus.NewRegistry())
}
