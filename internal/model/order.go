package model

import "time"

// ShippingStatus 订单在履约流程中的位置，与商务状态（Status）相互独立
type ShippingStatus string

const (
	ShippingPending     ShippingStatus = "pending"
	ShippingPreparing   ShippingStatus = "preparing"
	ShippingInTransit   ShippingStatus = "in_transit"
	ShippingShipped     ShippingStatus = "shipped"
	ShippingDelivered   ShippingStatus = "delivered"
	ShippingIntercepted ShippingStatus = "intercepted"
)

// Shipped reports whether the order has physically left the warehouse.
// Once true the order can never transition to intercepted.
func (s ShippingStatus) Shipped() bool {
	return s == ShippingShipped || s == ShippingInTransit || s == ShippingDelivered
}

// OrderLine 订单中的一行产品明细
type OrderLine struct {
	ProductCode string  `json:"product_code" yaml:"product_code"`
	Name        string  `json:"name" yaml:"name"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
	UnitPrice   float64 `json:"unit_price" yaml:"unit_price"`
}

// Order 客户订单。ShippingStatus 只能由 registry.Store.Intercept 修改。
type Order struct {
	OrderID         string         `json:"order_id" yaml:"order_id"`
	CustomerID      string         `json:"customer_id" yaml:"customer_id"`
	CustomerEmail   string         `json:"customer_email" yaml:"customer_email"`
	Status          string         `json:"status" yaml:"status"` // Confirmed / Processing / Shipped 等商务状态
	CreatedAt       string         `json:"created_at" yaml:"created_at"`
	TotalAmount     float64        `json:"total_amount" yaml:"total_amount"`
	Currency        string         `json:"currency" yaml:"currency"`
	ShippingAddress string         `json:"shipping_address" yaml:"shipping_address"`
	TrackingNumber  string         `json:"tracking_number,omitempty" yaml:"tracking_number"`
	Lines           []OrderLine    `json:"lines" yaml:"lines"`
	ShippingStatus  ShippingStatus `json:"shipping_status" yaml:"shipping_status"`

	// 仅当 ShippingStatus == intercepted 时有值
	InterceptReason string     `json:"intercept_reason,omitempty" yaml:"-"`
	InterceptedAt   *time.Time `json:"intercepted_at,omitempty" yaml:"-"`
}
