// Package service implements the orchestration loop: classifier -> registry
// lookups -> interception policy -> event bus, one email at a time. The only
// long-running step is the external responder call; everything else is
// synchronous and bounded.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mailtriage/config"
	"mailtriage/internal/classifier"
	"mailtriage/internal/eventbus"
	"mailtriage/internal/model"
	"mailtriage/internal/policy"
	"mailtriage/internal/registry"
	"mailtriage/pkg/circuitbreaker"
	"mailtriage/pkg/logger"
	"mailtriage/pkg/metrics"
	"mailtriage/pkg/trace"
	"mailtriage/pkg/util"
)

// InterceptionResult 单个订单的拦截结果。部分失败不影响其余订单的处理。
type InterceptionResult struct {
	OrderID       string                    `json:"order_id"`
	Succeeded     bool                      `json:"succeeded"`
	Outcome       registry.InterceptOutcome `json:"outcome,omitempty"`
	FailureReason string                    `json:"failure_reason,omitempty"`
}

// Result 一封邮件的完整处理结果
type Result struct {
	EmailID       string               `json:"email_id"`
	Category      model.Category       `json:"category"`
	Intent        model.Intent         `json:"intent"`
	Confidence    float64              `json:"confidence"`
	CustomerEmail string               `json:"customer_email,omitempty"`
	Interceptions []InterceptionResult `json:"interceptions,omitempty"`
	Response      string               `json:"response"`
	Failed        bool                 `json:"failed,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

// IngestItem 摄入边界上的一个原始邮件元组
type IngestItem struct {
	ID       string    // 批次内唯一标识
	Raw      string    // 原始正文
	Fallback time.Time // 正文中无时间信息时的发送时间兜底（由调用方提供）
}

// ProgressFunc 处理进度回调，由外部调用方（UI/Agent 层）提供
type ProgressFunc func(message string)

// Engine 邮件理解与订单拦截决策引擎。依赖全部经构造注入，无包级状态。
type Engine struct {
	store     *registry.Store
	bus       *eventbus.Bus
	responder Responder
	breaker   *circuitbreaker.Breaker
	cfg       config.EngineConfig
	logger    *zap.Logger
	now       func() time.Time
}

// EngineOption 构造选项
type EngineOption func(*Engine)

// WithClock 注入时钟（测试用）
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithBreaker 注入定制熔断器
func WithBreaker(b *circuitbreaker.Breaker) EngineOption {
	return func(e *Engine) { e.breaker = b }
}

// NewEngine 构造引擎
func NewEngine(
	store *registry.Store,
	bus *eventbus.Bus,
	responder Responder,
	cfg config.EngineConfig,
	log *zap.Logger,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		store:     store,
		bus:       bus,
		responder: responder,
		breaker:   circuitbreaker.New(circuitbreaker.DefaultConfig()),
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest turns one (id, raw text, fallback timestamp) tuple into an immutable
// EmailRecord. The caller supplies the timestamp fallback; classification
// itself never touches a clock.
func (e *Engine) Ingest(id, raw string, fallback time.Time) model.EmailRecord {
	start := time.Now()
	facts := classifier.Classify(raw)
	metrics.RecordClassifyDuration(time.Since(start))

	rec := model.EmailRecord{
		ID:        id,
		Subject:   facts.Subject,
		Sender:    facts.Sender,
		Recipient: e.cfg.DefaultRecipient,
		SentAt:    fallback,
		Body:      raw,
		Facts:     facts,
	}
	if rec.Subject == "" {
		rec.Subject = "(no subject)"
	}
	if rec.Sender == "" {
		rec.Sender = "unknown"
	}
	return rec
}

// Process runs the full triage sequence for one email. It never returns an
// error: registry misses, rejected interceptions and responder failures are
// all recorded in the Result and on the event bus, and processing continues.
// ctx is propagated only across the external responder call.
func (e *Engine) Process(ctx context.Context, rec model.EmailRecord, progress ProgressFunc) Result {
	traceID := trace.NewTraceID()
	ctx = trace.WithContext(ctx, traceID)
	log := logger.WithTrace(ctx, e.logger)

	report := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	report("Starting email content analysis...")
	e.bus.Info("Processing email", map[string]string{
		"email_id": rec.ID,
		"subject":  rec.Subject,
		"sender":   rec.Sender,
	})
	e.bus.Debug("Fact sheet extracted", map[string]string{
		"category": string(rec.Facts.Category),
		"intent":   string(rec.Facts.Intent),
		"products": strconv.Itoa(len(rec.Facts.Products)),
	})

	result := Result{
		EmailID:    rec.ID,
		Category:   rec.Facts.Category,
		Intent:     rec.Facts.Intent,
		Confidence: e.cfg.ConfidencePlaceholder,
		Timestamp:  e.now(),
	}

	// 客户与订单查询（只读）
	var customer *model.Customer
	var orders []model.Order
	if rec.Facts.Sender != "" {
		e.bus.Tool("Querying customer", map[string]string{"email": rec.Facts.Sender})
		c, err := e.store.Customer(rec.Facts.Sender)
		if err != nil {
			e.bus.Warning("Customer not found", map[string]string{"email": rec.Facts.Sender})
		} else {
			customer = &c
			result.CustomerEmail = c.Email
			e.bus.Tool("Customer found", map[string]string{
				"customer_id": c.CustomerID,
				"name":        c.Name,
				"tier":        c.Tier,
			})
			orders = e.store.OrdersByCustomer(c.Email)
			e.bus.Tool("Queried customer orders", map[string]string{
				"email":  c.Email,
				"orders": strconv.Itoa(len(orders)),
			})
		}
	} else {
		e.bus.Warning("No sender address recognized", map[string]string{"email_id": rec.ID})
	}

	e.lookupMentionedFacts(rec)

	// 拦截决策与执行
	decision := policy.Decide(rec.Facts)
	result.Interceptions = e.executeDecision(rec, decision, orders, report)

	// 外部推理阶段：整个编排中唯一的长耗时调用
	report("Generating response...")
	result.Response = e.respond(ctx, ResponseRequest{
		Email:         rec,
		Customer:      customer,
		Orders:        orders,
		Decision:      decision,
		Interceptions: result.Interceptions,
	}, log)

	report("Processing completed")
	e.bus.Result("Email processing completed", map[string]string{
		"email_id":      rec.ID,
		"intent":        string(rec.Facts.Intent),
		"interceptions": strconv.Itoa(len(result.Interceptions)),
	})
	metrics.IncrementEmailProcessed("success")
	return result
}

// lookupMentionedFacts 对正文中提到的产品做只读查询，查询轨迹进事件总线。
// 物流类意图附带订单物流快照。
func (e *Engine) lookupMentionedFacts(rec model.EmailRecord) {
	for _, ref := range rec.Facts.Products {
		if ref.Code == "" {
			continue
		}
		e.bus.Tool("Querying product", map[string]string{"product_code": ref.Code})
		p, err := e.store.Product(ref.Code)
		if err != nil {
			e.bus.Warning("Product not found", map[string]string{"product_code": ref.Code})
			continue
		}
		inv, err := e.store.Inventory(ref.Code)
		if err != nil {
			continue
		}
		e.bus.Tool("Inventory snapshot", map[string]string{
			"product_code":   p.ProductCode,
			"product_name":   p.Name,
			"stock_status":   inv.StockStatus,
			"stock_quantity": strconv.Itoa(inv.StockQuantity),
			"lead_time":      inv.LeadTime,
		})
	}

	if rec.Facts.Intent == model.IntentLogisticsQuery {
		for _, id := range classifier.ExtractOrderIDs(rec.Body) {
			snap, err := e.store.Logistics(id)
			if err != nil {
				e.bus.Warning("Logistics lookup failed", map[string]string{"order_id": id})
				continue
			}
			e.bus.Tool("Logistics snapshot", map[string]string{
				"order_id":        snap.OrderID,
				"shipping_status": string(snap.ShippingStatus),
				"tracking_number": snap.TrackingNumber,
			})
		}
	}
}

// executeDecision resolves target orders and intercepts each one. A failure
// on one order is recorded as an individual outcome and never aborts the
// rest.
func (e *Engine) executeDecision(rec model.EmailRecord, decision policy.Decision, orders []model.Order, report func(string)) []InterceptionResult {
	if !decision.MustIntercept {
		e.bus.Debug("No interception required", map[string]string{
			"intent": string(decision.TriggeringIntent),
		})
		return nil
	}

	e.bus.Info("Interception required", map[string]string{
		"intent": string(decision.TriggeringIntent),
	})
	report("Intercepting related orders...")

	// 目标解析：正文中的显式订单号优先，否则回落到该客户的全部订单
	targets := classifier.ExtractOrderIDs(rec.Body)
	if len(targets) == 0 {
		for _, o := range orders {
			targets = append(targets, o.OrderID)
		}
	}
	if len(targets) == 0 {
		e.bus.Warning("No target orders resolved for interception", map[string]string{
			"email_id": rec.ID,
		})
		return nil
	}

	reason := decision.Reason()
	results := make([]InterceptionResult, 0, len(targets))
	for _, orderID := range targets {
		e.bus.Tool("Intercepting order shipment", map[string]string{
			"order_id": orderID,
			"reason":   reason,
		})
		outcome, err := e.store.Intercept(orderID, reason)
		switch {
		case errors.Is(err, registry.ErrOrderNotFound):
			results = append(results, InterceptionResult{
				OrderID:       orderID,
				FailureReason: "order not found",
			})
			e.bus.Warning("Interception failed, order not found", map[string]string{
				"order_id": orderID,
			})
		case errors.Is(err, registry.ErrAlreadyShipped):
			results = append(results, InterceptionResult{
				OrderID:       orderID,
				FailureReason: "already shipped",
			})
			e.bus.Warning("Interception rejected, order already shipped", map[string]string{
				"order_id": orderID,
			})
		case err != nil:
			results = append(results, InterceptionResult{
				OrderID:       orderID,
				FailureReason: err.Error(),
			})
			e.bus.Error("Interception failed", map[string]string{
				"order_id": orderID,
				"error":    err.Error(),
			})
		default:
			results = append(results, InterceptionResult{
				OrderID:   orderID,
				Succeeded: true,
				Outcome:   outcome,
			})
			msg := "Order intercepted"
			if outcome.Already {
				msg = "Order already intercepted"
			}
			e.bus.Result(msg, map[string]string{
				"order_id": orderID,
				"reason":   outcome.Reason,
			})
		}
	}
	return results
}

// respond 经熔断器调用外部应答器，失败（含熔断打开、超时）回落到模板回复
func (e *Engine) respond(ctx context.Context, req ResponseRequest, log *zap.Logger) string {
	e.bus.Thinking("Generating customer response", map[string]string{
		"email_id": req.Email.ID,
		"intent":   string(req.Decision.TriggeringIntent),
	})

	timeout := time.Duration(e.cfg.ResponderTimeoutSeconds) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var response string
	start := time.Now()
	err := e.breaker.Execute(func() error {
		r, respondErr := e.responder.Respond(callCtx, req)
		if respondErr != nil {
			return respondErr
		}
		response = r
		return nil
	})
	latency := time.Since(start)

	if err != nil {
		status := util.ClassifyError(err)
		if errors.Is(err, circuitbreaker.ErrOpen) {
			status = "circuit_open"
		}
		metrics.RecordResponderCallLatency(status, latency)
		log.Warn("Responder call failed, using fallback response",
			zap.String("email_id", req.Email.ID),
			zap.String("status", status),
			zap.Error(err),
		)
		e.bus.Warning("Responder unavailable, fallback response used", map[string]string{
			"email_id": req.Email.ID,
			"error":    err.Error(),
		})
		return FallbackResponse(req)
	}

	metrics.RecordResponderCallLatency("success", latency)
	return response
}

// ProcessBatch ingests and processes a sequence of raw emails. Total failure
// on one email (even a panic) never aborts the rest of the batch.
func (e *Engine) ProcessBatch(ctx context.Context, items []IngestItem, progress ProgressFunc) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, e.processSafe(ctx, item, progress))
	}
	return results
}

func (e *Engine) processSafe(ctx context.Context, item IngestItem, progress ProgressFunc) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Panic while processing email",
				zap.String("email_id", item.ID),
				zap.Any("panic", r),
			)
			e.bus.Error("Email processing failed", map[string]string{
				"email_id": item.ID,
				"panic":    fmt.Sprint(r),
			})
			metrics.IncrementEmailProcessed("failed")
			res = Result{
				EmailID:   item.ID,
				Category:  model.CategoryGeneralInquiry,
				Intent:    model.IntentGeneralInquiry,
				Failed:    true,
				Timestamp: e.now(),
			}
		}
	}()

	rec := e.Ingest(item.ID, item.Raw, item.Fallback)
	return e.Process(ctx, rec, progress)
}

// Bus 暴露事件总线给观测层（UI/Agent）
func (e *Engine) Bus() *eventbus.Bus {
	return e.bus
}
