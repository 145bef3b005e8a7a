// Package policy holds the order-interception decision rule: which classified
// intents require a shipment hold before any further handling.
package policy

import (
	"fmt"

	"mailtriage/internal/model"
)

// interceptTriggers 触发拦截的意图闭集。涉及订单变更的四类意图必须先拦截发货。
var interceptTriggers = map[model.Intent]bool{
	model.IntentChangeAddress:  true,
	model.IntentChangeProducts: true,
	model.IntentCancelOrder:    true,
	model.IntentMergeOrder:     true,
}

// Decision 针对一份 FactSheet 的拦截决策
type Decision struct {
	MustIntercept    bool         `json:"must_intercept"`
	TriggeringIntent model.Intent `json:"triggering_intent"`
}

// Reason 拦截原因（写入订单的人类可读短语）
func (d Decision) Reason() string {
	return fmt.Sprintf("customer request: %s", d.TriggeringIntent)
}

// Decide maps a classified intent to an interception decision. Pure lookup,
// no registry access; resolving which orders to hold is the orchestration
// loop's job.
func Decide(fs model.FactSheet) Decision {
	return Decision{
		MustIntercept:    interceptTriggers[fs.Intent],
		TriggeringIntent: fs.Intent,
	}
}
