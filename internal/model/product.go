package model

import "time"

// Product 产品目录条目，核心内只读
type Product struct {
	ProductCode   string  `json:"product_code" yaml:"product_code"`
	Name          string  `json:"name" yaml:"name"`
	Category      string  `json:"category" yaml:"category"`
	UnitPrice     float64 `json:"unit_price" yaml:"unit_price"`
	Currency      string  `json:"currency" yaml:"currency"`
	StockStatus   string  `json:"stock_status" yaml:"stock_status"` // in_stock / on_order
	StockQuantity int     `json:"stock_quantity" yaml:"stock_quantity"`
	MinOrderQty   int     `json:"min_order_qty" yaml:"min_order_qty"`
	LeadTime      string  `json:"lead_time" yaml:"lead_time"`
}

// InventorySnapshot 某一时刻的库存快照
type InventorySnapshot struct {
	ProductCode   string    `json:"product_code"`
	ProductName   string    `json:"product_name"`
	StockStatus   string    `json:"stock_status"`
	StockQuantity int       `json:"stock_quantity"`
	MinOrderQty   int       `json:"min_order_qty"`
	LeadTime      string    `json:"lead_time"`
	LastUpdated   time.Time `json:"last_updated"`
}

// TrackingEvent 物流轨迹中的一个节点
type TrackingEvent struct {
	Time     string `json:"time"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

// LogisticsSnapshot 订单的物流状态快照
type LogisticsSnapshot struct {
	OrderID           string          `json:"order_id"`
	ShippingStatus    ShippingStatus  `json:"shipping_status"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	ShippingAddress   string          `json:"shipping_address"`
	EstimatedDelivery string          `json:"estimated_delivery"`
	History           []TrackingEvent `json:"history,omitempty"`
}
