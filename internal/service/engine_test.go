package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailtriage/config"
	"mailtriage/internal/eventbus"
	"mailtriage/internal/model"
	"mailtriage/internal/registry"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestEngine(t *testing.T, responder Responder) (*Engine, *registry.Store, *eventbus.Bus) {
	t.Helper()
	store := registry.NewStore(registry.DefaultSeed(), registry.WithClock(fixedClock()))
	bus := eventbus.New(eventbus.WithMaxLogs(500), eventbus.WithClock(fixedClock()))
	if responder == nil {
		responder = StaticResponder{}
	}
	cfg := config.Default().Engine
	engine := NewEngine(store, bus, responder, cfg, zap.NewNop(), WithClock(fixedClock()))
	return engine, store, bus
}

func TestIngest(t *testing.T) {
	engine, _, _ := newTestEngine(t, nil)
	fallback := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

	rec := engine.Ingest("email_001.txt", "Subject: Hello\nEmail: customer1@example.com\nJust saying hi.", fallback)

	assert.Equal(t, "email_001.txt", rec.ID)
	assert.Equal(t, "Hello", rec.Subject)
	assert.Equal(t, "customer1@example.com", rec.Sender)
	assert.Equal(t, "sales@lcsc.com", rec.Recipient)
	assert.Equal(t, fallback, rec.SentAt)
}

func TestIngest_Defaults(t *testing.T) {
	engine, _, _ := newTestEngine(t, nil)
	fallback := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

	rec := engine.Ingest("email_002.txt", "nothing recognizable", fallback)

	assert.Equal(t, "(no subject)", rec.Subject)
	assert.Equal(t, "unknown", rec.Sender)
	assert.Equal(t, model.CategoryGeneralInquiry, rec.Facts.Category)
	assert.Equal(t, model.IntentGeneralInquiry, rec.Facts.Intent)
}

func TestProcess_CancelOrderScenario(t *testing.T) {
	engine, store, bus := newTestEngine(t, nil)

	raw := "Subject: Please cancel order LC123456\nEmail: customer1@example.com"
	rec := engine.Ingest("email_001.txt", raw, fixedClock()())

	result := engine.Process(context.Background(), rec, nil)

	assert.Equal(t, model.CategoryOrderChange, result.Category)
	assert.Equal(t, model.IntentCancelOrder, result.Intent)
	assert.Equal(t, 0.85, result.Confidence)
	assert.Equal(t, "customer1@example.com", result.CustomerEmail)
	assert.NotEmpty(t, result.Response)

	require.Len(t, result.Interceptions, 1)
	assert.True(t, result.Interceptions[0].Succeeded)
	assert.Equal(t, "LC123456", result.Interceptions[0].OrderID)

	o, err := store.Order("LC123456")
	require.NoError(t, err)
	assert.Equal(t, model.ShippingIntercepted, o.ShippingStatus)
	assert.Equal(t, "customer request: cancel order", o.InterceptReason)

	assert.NotEmpty(t, bus.History())
}

// 重复处理同一封邮件：拦截幂等，原因不被覆盖
func TestProcess_Idempotent(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)

	raw := "Subject: Please cancel order LC123456\nEmail: customer1@example.com"
	rec := engine.Ingest("email_001.txt", raw, fixedClock()())

	first := engine.Process(context.Background(), rec, nil)
	second := engine.Process(context.Background(), rec, nil)

	require.Len(t, first.Interceptions, 1)
	require.Len(t, second.Interceptions, 1)
	assert.True(t, second.Interceptions[0].Succeeded)
	assert.True(t, second.Interceptions[0].Outcome.Already)
	assert.Equal(t, first.Interceptions[0].Outcome.Reason, second.Interceptions[0].Outcome.Reason)

	o, err := store.Order("LC123456")
	require.NoError(t, err)
	assert.Equal(t, "customer request: cancel order", o.InterceptReason)
}

func TestProcess_AlreadyShippedRecordedAsFailure(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)

	raw := "Subject: Please cancel order LC789012\nEmail: customer2@example.com"
	rec := engine.Ingest("email_003.txt", raw, fixedClock()())

	result := engine.Process(context.Background(), rec, nil)

	require.Len(t, result.Interceptions, 1)
	assert.False(t, result.Interceptions[0].Succeeded)
	assert.Equal(t, "already shipped", result.Interceptions[0].FailureReason)

	o, err := store.Order("LC789012")
	require.NoError(t, err)
	assert.Equal(t, model.ShippingInTransit, o.ShippingStatus)
}

// 多个目标订单部分失败时，其余订单照常处理
func TestProcess_PartialFailure(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)

	raw := "Subject: Cancel order LC789012 and LC123456 and LC000000\nEmail: customer1@example.com\nPlease cancel order."
	rec := engine.Ingest("email_004.txt", raw, fixedClock()())

	result := engine.Process(context.Background(), rec, nil)

	require.Len(t, result.Interceptions, 3)
	byOrder := make(map[string]InterceptionResult)
	for _, r := range result.Interceptions {
		byOrder[r.OrderID] = r
	}
	assert.False(t, byOrder["LC789012"].Succeeded)
	assert.Equal(t, "already shipped", byOrder["LC789012"].FailureReason)
	assert.True(t, byOrder["LC123456"].Succeeded)
	assert.False(t, byOrder["LC000000"].Succeeded)
	assert.Equal(t, "order not found", byOrder["LC000000"].FailureReason)

	o, err := store.Order("LC123456")
	require.NoError(t, err)
	assert.Equal(t, model.ShippingIntercepted, o.ShippingStatus)
}

// 正文无显式订单号时回落到该客户的全部订单
func TestProcess_ResolvesOrdersByCustomer(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)

	raw := "Subject: cancel order please\nEmail: customer3@example.com"
	rec := engine.Ingest("email_005.txt", raw, fixedClock()())

	result := engine.Process(context.Background(), rec, nil)

	require.Len(t, result.Interceptions, 1)
	assert.Equal(t, "LC345678", result.Interceptions[0].OrderID)
	assert.True(t, result.Interceptions[0].Succeeded)

	o, err := store.Order("LC345678")
	require.NoError(t, err)
	assert.Equal(t, model.ShippingIntercepted, o.ShippingStatus)
}

func TestProcess_NoInterceptionForQueries(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)

	raw := "Subject: check price\nEmail: customer1@example.com\nPlease check price for 08-50-0113, 5000pcs"
	rec := engine.Ingest("email_006.txt", raw, fixedClock()())

	result := engine.Process(context.Background(), rec, nil)

	assert.Empty(t, result.Interceptions)
	o, err := store.Order("LC123456")
	require.NoError(t, err)
	assert.Equal(t, model.ShippingPending, o.ShippingStatus)
}

type failingResponder struct{}

func (failingResponder) Respond(context.Context, ResponseRequest) (string, error) {
	return "", errors.New("agent unavailable")
}

func TestProcess_ResponderFailureUsesFallback(t *testing.T) {
	engine, _, bus := newTestEngine(t, failingResponder{})

	raw := "Subject: Please cancel order LC123456\nEmail: customer1@example.com"
	rec := engine.Ingest("email_001.txt", raw, fixedClock()())

	result := engine.Process(context.Background(), rec, nil)

	assert.NotEmpty(t, result.Response)
	assert.Contains(t, result.Response, "LC123456")

	var sawFallbackWarning bool
	for _, ev := range bus.History() {
		if ev.Level == eventbus.LevelWarning && ev.Message == "Responder unavailable, fallback response used" {
			sawFallbackWarning = true
		}
	}
	assert.True(t, sawFallbackWarning)
}

type blockingResponder struct{}

func (blockingResponder) Respond(ctx context.Context, _ ResponseRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// 取消信号只跨外部应答调用传播：分类与拦截照常完成
func TestProcess_CanceledContext(t *testing.T) {
	engine, store, _ := newTestEngine(t, blockingResponder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raw := "Subject: Please cancel order LC123456\nEmail: customer1@example.com"
	rec := engine.Ingest("email_001.txt", raw, fixedClock()())

	result := engine.Process(ctx, rec, nil)

	require.Len(t, result.Interceptions, 1)
	assert.True(t, result.Interceptions[0].Succeeded)
	assert.NotEmpty(t, result.Response) // 兜底回复

	o, err := store.Order("LC123456")
	require.NoError(t, err)
	assert.Equal(t, model.ShippingIntercepted, o.ShippingStatus)
}

type panickyResponder struct{}

func (panickyResponder) Respond(_ context.Context, req ResponseRequest) (string, error) {
	if req.Email.ID == "bad" {
		panic("responder exploded")
	}
	return "ok", nil
}

// 单封邮件彻底失败不得中断批次中的其余邮件
func TestProcessBatch_FailureIsolation(t *testing.T) {
	engine, _, _ := newTestEngine(t, panickyResponder{})

	items := []IngestItem{
		{ID: "bad", Raw: "Subject: hello\nEmail: customer1@example.com", Fallback: fixedClock()()},
		{ID: "good", Raw: "Subject: check price\nEmail: customer2@example.com", Fallback: fixedClock()()},
	}

	results := engine.ProcessBatch(context.Background(), items, nil)

	require.Len(t, results, 2)
	assert.True(t, results[0].Failed)
	assert.False(t, results[1].Failed)
	assert.Equal(t, "ok", results[1].Response)
}

func TestProcess_ProgressCallback(t *testing.T) {
	engine, _, _ := newTestEngine(t, nil)

	var messages []string
	raw := "Subject: Please cancel order LC123456\nEmail: customer1@example.com"
	rec := engine.Ingest("email_001.txt", raw, fixedClock()())
	engine.Process(context.Background(), rec, func(msg string) {
		messages = append(messages, msg)
	})

	require.NotEmpty(t, messages)
	assert.Equal(t, "Starting email content analysis...", messages[0])
	assert.Equal(t, "Processing completed", messages[len(messages)-1])
}

func TestProcess_UnknownSender(t *testing.T) {
	engine, _, bus := newTestEngine(t, nil)

	raw := "Subject: Please cancel order LC123456\nEmail: stranger@example.com"
	rec := engine.Ingest("email_007.txt", raw, fixedClock()())

	result := engine.Process(context.Background(), rec, nil)

	assert.Empty(t, result.CustomerEmail)
	// 显式订单号仍然触发拦截
	require.Len(t, result.Interceptions, 1)
	assert.True(t, result.Interceptions[0].Succeeded)

	var sawWarning bool
	for _, ev := range bus.History() {
		if ev.Level == eventbus.LevelWarning && ev.Message == "Customer not found" {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning)
}
