package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/model"
)

func TestClassify_NoRecognizableKeywords(t *testing.T) {
	fs := Classify("Hello there, just wanted to say thanks for the great service.")

	assert.Equal(t, model.CategoryGeneralInquiry, fs.Category)
	assert.Equal(t, model.IntentGeneralInquiry, fs.Intent)
	assert.Empty(t, fs.Products)
}

func TestClassify_CancelOrderScenario(t *testing.T) {
	raw := "Subject: Please cancel order LC123456\nEmail: customer1@example.com"

	fs := Classify(raw)

	assert.Equal(t, model.CategoryOrderChange, fs.Category)
	assert.Equal(t, model.IntentCancelOrder, fs.Intent)
	assert.Equal(t, "customer1@example.com", fs.Sender)
	assert.Equal(t, "Please cancel order LC123456", fs.Subject)
}

func TestClassify_Categories(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.Category
	}{
		{"price keyword", "What is the price of this part?", model.CategoryPriceInquiry},
		{"quote keyword", "Please send a quote.", model.CategoryPriceInquiry},
		{"order keyword", "I placed an order yesterday.", model.CategoryOrderInquiry},
		{"change wins over order", "Please change my order.", model.CategoryOrderChange},
		{"stock keyword", "Is this available in stock?", model.CategoryStockInquiry},
		{"logistics keyword", "When is the delivery expected?", model.CategoryLogisticsInquiry},
		{"chinese price", "请问这个的报价是多少", model.CategoryPriceInquiry},
		{"chinese cancel", "我要取消这笔交易", model.CategoryOrderChange},
		{"chinese stock", "有现货吗", model.CategoryStockInquiry},
		{"no match", "good morning", model.CategoryGeneralInquiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw).Category)
		})
	}
}

func TestClassify_Intents(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.Intent
	}{
		{"change address", "I need to change address for my shipment", model.IntentChangeAddress},
		{"modify address", "please modify address asap", model.IntentChangeAddress},
		{"add product", "can you add product 08-50-0113 to it", model.IntentChangeProducts},
		{"cancel order", "please cancel order LC123456", model.IntentCancelOrder},
		{"merge order", "please merge order LC123456 with LC345678", model.IntentMergeOrder},
		{"combine order", "can you combine orders?", model.IntentMergeOrder},
		{"price query", "please check price for these parts", model.IntentPriceQuery},
		{"stock query", "do you have inventory for this?", model.IntentStockQuery},
		{"logistics query", "please track order LC789012", model.IntentLogisticsQuery},
		{"chinese change address", "我想修改地址", model.IntentChangeAddress},
		{"chinese cancel order", "取消订单 LC123456", model.IntentCancelOrder},
		{"chinese merge order", "合并订单处理", model.IntentMergeOrder},
		{"default", "thank you", model.IntentGeneralInquiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw).Intent)
		})
	}
}

// address-change 在 product-change 之前求值
func TestClassify_IntentPriority(t *testing.T) {
	fs := Classify("please change address and add product 22-01-1042")
	assert.Equal(t, model.IntentChangeAddress, fs.Intent)
}

func TestClassify_LabeledFields(t *testing.T) {
	raw := `Subject: RFQ
Name: John Smith
Phone: +1-555-0123
Company: Tech Solutions Inc
Country: United States

Please quote 75-12-3456.`

	fs := Classify(raw)

	assert.Equal(t, "RFQ", fs.Subject)
	assert.Equal(t, "John Smith", fs.SenderName)
	assert.Equal(t, "+1-555-0123", fs.Phone)
	assert.Equal(t, "Tech Solutions Inc", fs.Company)
	assert.Equal(t, "United States", fs.Country)
}

func TestClassify_LabeledFieldsChinese(t *testing.T) {
	raw := "主题：询价\n姓名：张三\n电话：+86-138-0000-0001\n公司：深圳科技有限公司\n国家：中国"

	fs := Classify(raw)

	assert.Equal(t, "询价", fs.Subject)
	assert.Equal(t, "张三", fs.SenderName)
	assert.Equal(t, "+86-138-0000-0001", fs.Phone)
	assert.Equal(t, "深圳科技有限公司", fs.Company)
	assert.Equal(t, "中国", fs.Country)
}

func TestClassify_FirstLabelWins(t *testing.T) {
	raw := "Subject: first\nSubject: second"
	assert.Equal(t, "first", Classify(raw).Subject)
}

func TestClassify_FirstAddressIsSender(t *testing.T) {
	raw := "From customer1@example.com to sales@lcsc.com"
	assert.Equal(t, "customer1@example.com", Classify(raw).Sender)
}

func TestClassify_ProductReferences(t *testing.T) {
	fs := Classify("Need 08-50-0113, 20000pcs and 22-01-1042")

	require.Len(t, fs.Products, 2)
	assert.Equal(t, model.ProductRef{Code: "08-50-0113", Quantity: "20000pcs"}, fs.Products[0])
	assert.Equal(t, model.ProductRef{Code: "22-01-1042", Quantity: "1pcs"}, fs.Products[1])
}

func TestClassify_ProductQuantityVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"k suffix", "08-50-0113, 5Kpcs please", "5Kpcs"},
		{"chinese comma", "08-50-0113，3000pcs", "3000pcs"},
		{"no quantity", "08-50-0113 only", "1pcs"},
		{"quantity not adjacent", "08-50-0113 and later 500pcs", "1pcs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := Classify(tt.raw)
			require.Len(t, fs.Products, 1)
			assert.Equal(t, tt.want, fs.Products[0].Quantity)
		})
	}
}

func TestClassify_DuplicateCodesKept(t *testing.T) {
	fs := Classify("08-50-0113 once, then again 08-50-0113, 500pcs")

	require.Len(t, fs.Products, 2)
	assert.Equal(t, "1pcs", fs.Products[0].Quantity)
	assert.Equal(t, "500pcs", fs.Products[1].Quantity)
}

func TestClassify_ProductNameFallback(t *testing.T) {
	fs := Classify("Product Name: STM32 Microcontroller\nDo you have it?")

	require.Len(t, fs.Products, 1)
	assert.Equal(t, "STM32 Microcontroller", fs.Products[0].Name)
	assert.Empty(t, fs.Products[0].Code)
	assert.Equal(t, "1pcs", fs.Products[0].Quantity)
}

// 有编号时不再使用 Product Name 兜底
func TestClassify_NameFallbackIgnoredWithCodes(t *testing.T) {
	fs := Classify("Product Name: Connector\nNeed 08-50-0113")

	require.Len(t, fs.Products, 1)
	assert.Equal(t, "08-50-0113", fs.Products[0].Code)
}

func TestClassify_Deterministic(t *testing.T) {
	raw := "Subject: Please cancel order LC123456\nEmail: customer1@example.com\nNeed 08-50-0113, 20000pcs"

	first := Classify(raw)
	second := Classify(raw)

	assert.Equal(t, first, second)
}

func TestExtractOrderIDs(t *testing.T) {
	ids := ExtractOrderIDs("merge order LC123456 with LC789012, yes LC123456")
	assert.Equal(t, []string{"LC123456", "LC789012"}, ids)
}

func TestExtractOrderIDs_None(t *testing.T) {
	assert.Empty(t, ExtractOrderIDs("no order codes here, LC12 is too short"))
}
