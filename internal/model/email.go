package model

import "time"

// Category 邮件类别（粗粒度分类）
type Category string

const (
	CategoryPriceInquiry     Category = "price inquiry"
	CategoryOrderInquiry     Category = "order inquiry"
	CategoryOrderChange      Category = "order change"
	CategoryStockInquiry     Category = "stock inquiry"
	CategoryLogisticsInquiry Category = "logistics inquiry"
	CategoryGeneralInquiry   Category = "general inquiry"
)

// Intent 邮件意图（细粒度分类）
type Intent string

const (
	IntentChangeAddress  Intent = "change address"
	IntentChangeProducts Intent = "change products"
	IntentCancelOrder    Intent = "cancel order"
	IntentMergeOrder     Intent = "merge order"
	IntentPriceQuery     Intent = "price query"
	IntentStockQuery     Intent = "stock query"
	IntentLogisticsQuery Intent = "logistics query"
	IntentGeneralInquiry Intent = "general inquiry"
)

// ProductRef 从邮件正文提取的产品引用。Code 和 Name 至少有一个非空。
type ProductRef struct {
	Code     string `json:"code,omitempty"`
	Name     string `json:"name,omitempty"`
	Quantity string `json:"quantity"` // 例如 "20000pcs"，缺省为 "1pcs"
}

// FactSheet is the structured extraction result for one raw email body.
// Category and Intent are always set; Products may be empty.
type FactSheet struct {
	Category   Category     `json:"category"`
	Intent     Intent       `json:"intent"`
	Subject    string       `json:"subject,omitempty"`
	Sender     string       `json:"sender,omitempty"`
	SenderName string       `json:"sender_name,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Company    string       `json:"company,omitempty"`
	Country    string       `json:"country,omitempty"`
	Products   []ProductRef `json:"products,omitempty"`
}

// EmailRecord 一封已摄入的邮件，创建后不可变
type EmailRecord struct {
	ID        string    `json:"id"` // 批次内唯一标识（原始文件名等）
	Subject   string    `json:"subject"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	SentAt    time.Time `json:"sent_at"`
	Body      string    `json:"body"`
	Facts     FactSheet `json:"facts"`
}
