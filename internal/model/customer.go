package model

// Customer 预置客户档案，核心内只读
type Customer struct {
	CustomerID       string `json:"customer_id" yaml:"customer_id"`
	Name             string `json:"name" yaml:"name"`
	Email            string `json:"email" yaml:"email"` // 主键
	Phone            string `json:"phone" yaml:"phone"`
	Company          string `json:"company" yaml:"company"`
	Country          string `json:"country" yaml:"country"`
	RegistrationDate string `json:"registration_date" yaml:"registration_date"`
	Tier             string `json:"tier" yaml:"tier"` // Gold / Silver / Bronze
}
