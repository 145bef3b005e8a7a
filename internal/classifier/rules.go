package classifier

import "mailtriage/internal/model"

// categoryRule / intentRule 数据驱动的关键词规则，按表顺序求值，首个命中生效。
// 关键词为小写子串（英文 + 中文），新增语言只需扩表，不改控制流。
type categoryRule struct {
	category model.Category
	keywords []string
}

type intentRule struct {
	intent   model.Intent
	keywords []string
}

// categoryRules 类别优先级表。订单变更类关键词在订单查询类之前求值，
// 否则 "cancel order" 会先命中 "order"。
var categoryRules = []categoryRule{
	{model.CategoryPriceInquiry, []string{"price", "cost", "quote", "价格", "报价"}},
	{model.CategoryOrderChange, []string{"cancel", "modify", "change", "merge", "取消", "修改", "合并"}},
	{model.CategoryOrderInquiry, []string{"order", "purchase", "订单", "购买"}},
	{model.CategoryStockInquiry, []string{"stock", "inventory", "available", "库存", "现货"}},
	{model.CategoryLogisticsInquiry, []string{"shipping", "delivery", "logistics", "物流", "发货"}},
}

// intentRules 意图优先级表。订单拦截相关意图排在查询类意图之前。
var intentRules = []intentRule{
	{model.IntentChangeAddress, []string{"change address", "modify address", "修改地址", "更改地址"}},
	{model.IntentChangeProducts, []string{"add product", "remove product", "增加产品", "删除产品"}},
	{model.IntentCancelOrder, []string{"cancel order", "取消订单"}},
	{model.IntentMergeOrder, []string{"merge order", "combine order", "合并订单"}},
	{model.IntentPriceQuery, []string{"check price", "price inquiry", "询价", "价格查询"}},
	{model.IntentStockQuery, []string{"check stock", "inventory", "库存查询"}},
	{model.IntentLogisticsQuery, []string{"track order", "shipping status", "物流查询"}},
}

// fieldLabels 标签行抽取表：字段名 -> 可接受的标签（英文或中文）
var fieldLabels = map[string][]string{
	"subject": {"Subject", "主题"},
	"name":    {"Name", "姓名"},
	"phone":   {"Phone", "电话"},
	"company": {"Company", "公司"},
	"country": {"Country", "国家"},
}
