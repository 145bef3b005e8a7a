package service

import (
	"context"
	"fmt"
	"strings"

	"mailtriage/internal/model"
	"mailtriage/internal/policy"
)

// ResponseRequest 交给外部应答阶段的全部上下文：原始邮件、分类结果、
// 注册表查到的客户与订单、拦截决策与逐单结果。
type ResponseRequest struct {
	Email         model.EmailRecord
	Customer      *model.Customer // 未识别客户时为 nil
	Orders        []model.Order
	Decision      policy.Decision
	Interceptions []InterceptionResult
}

// Responder is the boundary to the excluded long-running reasoning stage.
// It is the only suspension point in the engine: implementations may block
// on network I/O and must honor ctx cancellation.
type Responder interface {
	Respond(ctx context.Context, req ResponseRequest) (string, error)
}

// StaticResponder 内置的确定性应答器，按意图生成模板回复。
// 演示与测试用，也是应答服务不可用时的兜底。
type StaticResponder struct{}

func (StaticResponder) Respond(_ context.Context, req ResponseRequest) (string, error) {
	var b strings.Builder

	name := "customer"
	if req.Customer != nil {
		name = req.Customer.Name
	}
	fmt.Fprintf(&b, "Dear %s,\n\nThank you for contacting us. ", name)
	fmt.Fprintf(&b, "We have received your request (%s).\n", req.Decision.TriggeringIntent)

	if req.Decision.MustIntercept {
		for _, r := range req.Interceptions {
			if r.Succeeded {
				fmt.Fprintf(&b, "Shipment of order %s has been placed on hold.\n", r.OrderID)
			} else {
				fmt.Fprintf(&b, "Order %s could not be held: %s.\n", r.OrderID, r.FailureReason)
			}
		}
		b.WriteString("Our team will follow up with the next steps shortly.\n")
	} else if len(req.Orders) > 0 {
		fmt.Fprintf(&b, "You currently have %d order(s) on file.\n", len(req.Orders))
	}

	b.WriteString("\nBest regards,\nCustomer Service")
	return b.String(), nil
}

// FallbackResponse 外部应答器失败（含熔断打开）时的兜底回复
func FallbackResponse(req ResponseRequest) string {
	resp, _ := StaticResponder{}.Respond(context.Background(), req)
	return resp
}

var _ Responder = StaticResponder{}
