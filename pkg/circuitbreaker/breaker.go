// Package circuitbreaker guards the long-running external responder call.
// The engine core is synchronous and cheap; only that boundary can hang, so
// only that boundary gets a breaker.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常放行
	StateOpen                  // 熔断中，直接拒绝
	StateHalfOpen              // 试探恢复，放行少量请求
)

// ErrOpen 熔断器打开时拒绝执行
var ErrOpen = errors.New("circuit breaker is open")

// Config 熔断器配置
type Config struct {
	FailureThreshold    int           // 连续失败多少次后打开
	SuccessThreshold    int           // 半开状态下成功多少次后关闭
	Timeout             time.Duration // 打开状态持续多久后进入半开
	HalfOpenMaxRequests int           // 半开状态下允许的最大并发试探数
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}
}

// Breaker 熔断器
type Breaker struct {
	config Config
	now    func() time.Time

	mu            sync.Mutex
	state         State
	failureCount  int
	successCount  int
	halfOpenCount int
	lastStateTime time.Time
}

// New 创建熔断器
func New(config Config) *Breaker {
	return NewWithClock(config, time.Now)
}

// NewWithClock 创建熔断器并注入时钟（测试用）
func NewWithClock(config Config, now func() time.Time) *Breaker {
	return &Breaker{
		config:        config,
		now:           now,
		state:         StateClosed,
		lastStateTime: now(),
	}
}

// Execute 在熔断保护下执行 fn。打开状态直接返回 ErrOpen，fn 不会被调用。
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	b.transition()

	switch b.state {
	case StateOpen:
		b.mu.Unlock()
		return ErrOpen
	case StateHalfOpen:
		if b.halfOpenCount >= b.config.HalfOpenMaxRequests {
			b.mu.Unlock()
			return ErrOpen
		}
		b.halfOpenCount++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

// transition 按时间与计数推进状态机，调用方必须持锁
func (b *Breaker) transition() {
	now := b.now()
	switch b.state {
	case StateOpen:
		if now.Sub(b.lastStateTime) >= b.config.Timeout {
			b.state = StateHalfOpen
			b.halfOpenCount = 0
			b.successCount = 0
			b.lastStateTime = now
		}
	case StateHalfOpen:
		if b.successCount >= b.config.SuccessThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.lastStateTime = now
		}
	case StateClosed:
		if b.failureCount >= b.config.FailureThreshold {
			b.state = StateOpen
			b.lastStateTime = now
		}
	}
}

func (b *Breaker) onFailure() {
	b.failureCount++
	if b.state == StateHalfOpen {
		// 半开状态下失败，立即重新打开
		b.state = StateOpen
		b.halfOpenCount = 0
		b.lastStateTime = b.now()
	}
}

func (b *Breaker) onSuccess() {
	b.failureCount = 0
	if b.state == StateHalfOpen {
		b.successCount++
		if b.halfOpenCount > 0 {
			b.halfOpenCount--
		}
	}
}

// State 返回当前状态
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition()
	return b.state
}

// Reset 重置为关闭状态
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
	b.halfOpenCount = 0
	b.lastStateTime = b.now()
}
