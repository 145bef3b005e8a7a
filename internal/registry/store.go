// Package registry is the in-memory authoritative store of customers, orders
// and products. It is the only mutable shared resource in the engine, and the
// only mutation path is Intercept.
package registry

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"mailtriage/internal/model"
	"mailtriage/pkg/metrics"
)

// Store 内存注册表。单锁保护全部数据；读操作一律返回防御性拷贝，
// 并发调用方不可能观察到写到一半的订单。
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger

	customers map[string]model.Customer // email -> customer
	orders    map[string]*model.Order   // order id -> order
	products  map[string]model.Product  // product code -> product

	// 按客户 email 记录订单号，保持种子插入顺序
	orderIDsByEmail map[string][]string
}

// Option 构造选项
type Option func(*Store)

// WithClock 注入时钟（测试用；拦截时间戳由它产生）
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger 注入 zap logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore builds a store from a seed. Customers and products are read-only
// afterwards; orders mutate only through Intercept.
func NewStore(seed Seed, opts ...Option) *Store {
	s := &Store{
		now:             time.Now,
		logger:          zap.NewNop(),
		customers:       make(map[string]model.Customer, len(seed.Customers)),
		orders:          make(map[string]*model.Order, len(seed.Orders)),
		products:        make(map[string]model.Product, len(seed.Products)),
		orderIDsByEmail: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, c := range seed.Customers {
		s.customers[c.Email] = c
	}
	for _, o := range seed.Orders {
		order := copyOrder(&o)
		s.orders[o.OrderID] = &order
		s.orderIDsByEmail[o.CustomerEmail] = append(s.orderIDsByEmail[o.CustomerEmail], o.OrderID)
	}
	for _, p := range seed.Products {
		s.products[p.ProductCode] = p
	}
	return s
}

// Customer 按邮箱查客户
func (s *Store) Customer(email string) (model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[email]
	if !ok {
		metrics.IncrementRegistryLookup("customer", "miss")
		return model.Customer{}, ErrCustomerNotFound
	}
	metrics.IncrementRegistryLookup("customer", "hit")
	return c, nil
}

// Order 按订单号查订单
func (s *Store) Order(orderID string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		metrics.IncrementRegistryLookup("order", "miss")
		return model.Order{}, ErrOrderNotFound
	}
	metrics.IncrementRegistryLookup("order", "hit")
	return copyOrder(o), nil
}

// OrdersByCustomer 返回该客户的全部订单（种子插入顺序），可能为空
func (s *Store) OrdersByCustomer(email string) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.orderIDsByEmail[email]
	orders := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, copyOrder(s.orders[id]))
	}
	if len(orders) == 0 {
		metrics.IncrementRegistryLookup("orders_by_customer", "miss")
	} else {
		metrics.IncrementRegistryLookup("orders_by_customer", "hit")
	}
	return orders
}

// Product 按产品编号查产品
func (s *Store) Product(code string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[code]
	if !ok {
		metrics.IncrementRegistryLookup("product", "miss")
		return model.Product{}, ErrProductNotFound
	}
	metrics.IncrementRegistryLookup("product", "hit")
	return p, nil
}

// Inventory 返回产品库存快照，LastUpdated 由注入的时钟产生
func (s *Store) Inventory(code string) (model.InventorySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[code]
	if !ok {
		metrics.IncrementRegistryLookup("inventory", "miss")
		return model.InventorySnapshot{}, ErrProductNotFound
	}
	metrics.IncrementRegistryLookup("inventory", "hit")
	return model.InventorySnapshot{
		ProductCode:   p.ProductCode,
		ProductName:   p.Name,
		StockStatus:   p.StockStatus,
		StockQuantity: p.StockQuantity,
		MinOrderQty:   p.MinOrderQty,
		LeadTime:      p.LeadTime,
		LastUpdated:   s.now(),
	}, nil
}

// Logistics 返回订单物流快照，在途/备货订单附带合成的轨迹历史
func (s *Store) Logistics(orderID string) (model.LogisticsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		metrics.IncrementRegistryLookup("logistics", "miss")
		return model.LogisticsSnapshot{}, ErrOrderNotFound
	}
	metrics.IncrementRegistryLookup("logistics", "hit")

	snap := model.LogisticsSnapshot{
		OrderID:           o.OrderID,
		ShippingStatus:    o.ShippingStatus,
		TrackingNumber:    o.TrackingNumber,
		ShippingAddress:   o.ShippingAddress,
		EstimatedDelivery: s.now().AddDate(0, 0, 3).Format("2006-01-02"),
	}
	switch o.ShippingStatus {
	case model.ShippingInTransit:
		snap.History = []model.TrackingEvent{
			{Time: "2024-07-01 10:00", Status: "Shipped", Location: "Shenzhen Warehouse"},
			{Time: "2024-07-01 18:00", Status: "In Transit", Location: "Shenzhen Distribution Center"},
			{Time: "2024-07-02 08:00", Status: "In Transit", Location: "Guangzhou Distribution Center"},
		}
	case model.ShippingPreparing:
		snap.History = []model.TrackingEvent{
			{Time: o.CreatedAt, Status: "Order Confirmed", Location: "Sales System"},
			{Time: "2024-07-02 14:30", Status: "Preparing", Location: "Regional Warehouse"},
		}
	}
	return snap, nil
}

// InterceptOutcome 一次拦截操作的结果
type InterceptOutcome struct {
	OrderID       string               `json:"order_id"`
	Status        model.ShippingStatus `json:"status"`
	Reason        string               `json:"reason"`
	InterceptedAt time.Time            `json:"intercepted_at"`
	Already       bool                 `json:"already"` // 已拦截过，本次为幂等空操作
}

// Intercept places a shipment hold on an order. Lookup, status check and
// write happen in one critical section.
//
//   - unknown order          -> ErrOrderNotFound
//   - shipped/in_transit/delivered -> ErrAlreadyShipped, order untouched
//   - already intercepted    -> idempotent success, original reason preserved
//   - otherwise              -> status becomes intercepted, reason + timestamp recorded
func (s *Store) Intercept(orderID, reason string) (InterceptOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		metrics.IncrementInterception("not_found")
		return InterceptOutcome{}, ErrOrderNotFound
	}

	if o.ShippingStatus.Shipped() {
		metrics.IncrementInterception("rejected_shipped")
		s.logger.Warn("Interception rejected, order already shipped",
			zap.String("order_id", orderID),
			zap.String("shipping_status", string(o.ShippingStatus)),
		)
		return InterceptOutcome{}, ErrAlreadyShipped
	}

	if o.ShippingStatus == model.ShippingIntercepted {
		metrics.IncrementInterception("already_intercepted")
		s.logger.Info("Order already intercepted, idempotent no-op",
			zap.String("order_id", orderID),
			zap.String("original_reason", o.InterceptReason),
		)
		return InterceptOutcome{
			OrderID:       o.OrderID,
			Status:        o.ShippingStatus,
			Reason:        o.InterceptReason, // 保留首次拦截原因，不覆盖
			InterceptedAt: *o.InterceptedAt,
			Already:       true,
		}, nil
	}

	now := s.now()
	o.ShippingStatus = model.ShippingIntercepted
	o.InterceptReason = reason
	o.InterceptedAt = &now

	metrics.IncrementInterception("intercepted")
	s.logger.Info("Order intercepted",
		zap.String("order_id", orderID),
		zap.String("reason", reason),
	)
	return InterceptOutcome{
		OrderID:       o.OrderID,
		Status:        o.ShippingStatus,
		Reason:        reason,
		InterceptedAt: now,
	}, nil
}

// copyOrder 深拷贝：Lines 切片与 InterceptedAt 指针都不与内部状态共享
func copyOrder(o *model.Order) model.Order {
	out := *o
	out.Lines = make([]model.OrderLine, len(o.Lines))
	copy(out.Lines, o.Lines)
	if o.InterceptedAt != nil {
		t := *o.InterceptedAt
		out.InterceptedAt = &t
	}
	return out
}
