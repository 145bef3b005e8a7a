package registry

import "errors"

// 查询未命中与拦截被拒都以哨兵错误返回，调用方用 errors.Is 分流，
// 不向上抛异常（编排循环必须能在部分失败下继续）。
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")

	// ErrAlreadyShipped 订单已出库（shipped / in_transit / delivered），拦截被拒，订单不变
	ErrAlreadyShipped = errors.New("order already shipped, cannot intercept")
)
