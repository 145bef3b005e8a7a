package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mailtriage/internal/model"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		intent model.Intent
		want   bool
	}{
		{model.IntentChangeAddress, true},
		{model.IntentChangeProducts, true},
		{model.IntentCancelOrder, true},
		{model.IntentMergeOrder, true},
		{model.IntentPriceQuery, false},
		{model.IntentStockQuery, false},
		{model.IntentLogisticsQuery, false},
		{model.IntentGeneralInquiry, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			d := Decide(model.FactSheet{Intent: tt.intent})
			assert.Equal(t, tt.want, d.MustIntercept)
			assert.Equal(t, tt.intent, d.TriggeringIntent)
		})
	}
}

func TestDecisionReason(t *testing.T) {
	d := Decide(model.FactSheet{Intent: model.IntentCancelOrder})
	assert.Equal(t, "customer request: cancel order", d.Reason())
}
