// Package eventbus is the in-process publish/subscribe channel carrying
// structured log events from every engine component to zero or more
// observers. Delivery is best effort, synchronous, order-preserving per
// publisher.
package eventbus

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mailtriage/pkg/metrics"
)

// DefaultMaxLogs 历史记录默认容量，超出后最旧的先被淘汰
const DefaultMaxLogs = 100

// Subscription 订阅句柄。回调函数不可比较，退订凭句柄而不是函数值。
type Subscription uint64

type subscriber struct {
	id Subscription
	fn func(Event)
}

// Bus 有界历史的日志事件总线。一把锁同时保护历史、拉取队列与订阅者表；
// 回调在发布方 goroutine 上、不持锁地执行。回调不得无限阻塞（调用方义务）。
type Bus struct {
	mu        sync.Mutex
	maxLogs   int
	seq       uint64
	history   []Event
	queue     []Event // 拉取式消费的缓冲，Clear 一并清空
	subs      []subscriber
	nextSubID Subscription

	now    func() time.Time
	logger *zap.Logger
}

// Option 构造选项
type Option func(*Bus)

// WithMaxLogs 设置历史容量
func WithMaxLogs(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxLogs = n
		}
	}
}

// WithLogger 将每条事件镜像到 zap（TOOL/THINKING/RESULT 映射为 Info）
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bus) { b.logger = logger }
}

// WithClock 注入时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// New 构造事件总线
func New(opts ...Option) *Bus {
	b := &Bus{
		maxLogs: DefaultMaxLogs,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish appends an event to history and synchronously invokes every
// registered subscriber in registration order, on the calling goroutine.
// A panicking subscriber never blocks the others nor fails the publish;
// the fault surfaces as one error-level bus event (not recursively).
func (b *Bus) Publish(level Level, message string, metadata map[string]string) Event {
	return b.publish(level, message, metadata, true)
}

func (b *Bus) publish(level Level, message string, metadata map[string]string, reportFaults bool) Event {
	ev := Event{
		Level:     level,
		Message:   message,
		Timestamp: b.now(),
		Metadata:  copyMetadata(metadata),
	}

	b.mu.Lock()
	b.seq++
	ev.Seq = b.seq
	b.history = append(b.history, ev)
	if len(b.history) > b.maxLogs {
		b.history = b.history[len(b.history)-b.maxLogs:]
	}
	b.queue = append(b.queue, ev)
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	metrics.IncrementBusEvent(string(level))
	b.mirror(ev)

	var faulted []Subscription
	for _, sub := range subs {
		if !b.invoke(sub, ev) {
			faulted = append(faulted, sub.id)
		}
	}

	// 订阅者故障本身也是一条事件，但只上报一层，避免递归
	if reportFaults {
		for _, id := range faulted {
			b.publish(LevelError, "subscriber callback panicked", map[string]string{
				"subscription": strconv.FormatUint(uint64(id), 10),
			}, false)
		}
	}
	return ev
}

// invoke 执行单个回调，恢复 panic，返回是否成功
func (b *Bus) invoke(sub subscriber, ev Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			b.logger.Error("Subscriber callback panicked",
				zap.Uint64("subscription", uint64(sub.id)),
				zap.Any("panic", r),
			)
		}
	}()
	sub.fn(ev)
	return true
}

// mirror 将事件镜像到 zap
func (b *Bus) mirror(ev Event) {
	fields := []zap.Field{
		zap.Uint64("seq", ev.Seq),
		zap.String("event_type", strings.ToLower(string(ev.Level))),
	}
	for k, v := range ev.Metadata {
		fields = append(fields, zap.String(k, v))
	}
	switch ev.Level {
	case LevelDebug:
		b.logger.Debug(ev.Message, fields...)
	case LevelWarning:
		b.logger.Warn(ev.Message, fields...)
	case LevelError:
		b.logger.Error(ev.Message, fields...)
	default:
		b.logger.Info(ev.Message, fields...)
	}
}

// 级别便捷方法

func (b *Bus) Info(message string, metadata map[string]string) Event {
	return b.Publish(LevelInfo, message, metadata)
}

func (b *Bus) Debug(message string, metadata map[string]string) Event {
	return b.Publish(LevelDebug, message, metadata)
}

func (b *Bus) Warning(message string, metadata map[string]string) Event {
	return b.Publish(LevelWarning, message, metadata)
}

func (b *Bus) Error(message string, metadata map[string]string) Event {
	return b.Publish(LevelError, message, metadata)
}

func (b *Bus) Tool(message string, metadata map[string]string) Event {
	return b.Publish(LevelTool, message, metadata)
}

func (b *Bus) Thinking(message string, metadata map[string]string) Event {
	return b.Publish(LevelThinking, message, metadata)
}

func (b *Bus) Result(message string, metadata map[string]string) Event {
	return b.Publish(LevelResult, message, metadata)
}

// Subscribe 注册回调，返回退订句柄。可与 Publish 并发调用。
func (b *Bus) Subscribe(fn func(Event)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSubID++
	b.subs = append(b.subs, subscriber{id: b.nextSubID, fn: fn})
	return b.nextSubID
}

// Unsubscribe 退订。句柄未注册时为空操作。
func (b *Bus) Unsubscribe(id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// History 返回历史快照（非活动视图），最多最近 maxLogs 条
func (b *Bus) History() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Event, len(b.history))
	copy(out, b.history)
	return out
}

// HistoryMarkdown 渲染整个历史为转录文本
func (b *Bus) HistoryMarkdown() string {
	events := b.History()
	blocks := make([]string, len(events))
	for i, ev := range events {
		blocks[i] = ev.Markdown()
	}
	return strings.Join(blocks, "\n\n")
}

// Poll pops the oldest undelivered event from the pull queue.
func (b *Bus) Poll() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		return Event{}, false
	}
	ev := b.queue[0]
	b.queue = b.queue[1:]
	return ev, true
}

// Clear 清空历史并丢弃拉取队列中未消费的事件
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = nil
	b.queue = nil
}

func copyMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
