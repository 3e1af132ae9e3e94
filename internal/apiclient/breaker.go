package apiclient

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"shopfront/internal/pkg/log"
)

// newBreaker 连续 maxFailures 次网络失败或 5xx 后熔断，openTimeout 后半开试探
func newBreaker(maxFailures uint32, openTimeout time.Duration, logger log.Logger) *gobreaker.CircuitBreaker {
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "api",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 调用方主动取消不算失败
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				log.String("breaker", name),
				log.String("from", from.String()),
				log.String("to", to.String()),
			)
		},
	})
}

// BreakerState 当前熔断状态，未启用时返回 closed
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return gobreaker.StateClosed.String()
	}
	return c.breaker.State().String()
}
