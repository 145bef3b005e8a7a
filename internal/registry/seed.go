package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mailtriage/internal/model"
)

// Seed 注册表的初始数据集。构造 Store 后客户与产品只读，
// 订单只能通过 Intercept 变更发货状态。
type Seed struct {
	Customers []model.Customer `yaml:"customers"`
	Orders    []model.Order    `yaml:"orders"`
	Products  []model.Product  `yaml:"products"`
}

// LoadSeed 从 yaml 文件加载种子数据
func LoadSeed(path string) (Seed, error) {
	var seed Seed
	data, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("failed to read seed file: %w", err)
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return seed, nil
}

// DefaultSeed 内置演示数据集（三个客户、三笔订单、四个产品）
func DefaultSeed() Seed {
	return Seed{
		Customers: []model.Customer{
			{
				CustomerID:       "CUST001",
				Name:             "Zhang San",
				Email:            "customer1@example.com",
				Phone:            "+86-138-0000-0001",
				Company:          "Shenzhen Technology Co., Ltd.",
				Country:          "China",
				RegistrationDate: "2023-01-15",
				Tier:             "Gold",
			},
			{
				CustomerID:       "CUST002",
				Name:             "John Smith",
				Email:            "customer2@example.com",
				Phone:            "+1-555-0123",
				Company:          "Tech Solutions Inc",
				Country:          "United States",
				RegistrationDate: "2023-03-20",
				Tier:             "Silver",
			},
			{
				CustomerID:       "CUST003",
				Name:             "Maria Garcia",
				Email:            "customer3@example.com",
				Phone:            "+34-600-123-456",
				Company:          "European Electronics Ltd",
				Country:          "Spain",
				RegistrationDate: "2023-05-10",
				Tier:             "Bronze",
			},
		},
		Orders: []model.Order{
			{
				OrderID:         "LC123456",
				CustomerID:      "CUST001",
				CustomerEmail:   "customer1@example.com",
				Status:          "Confirmed",
				CreatedAt:       "2024-07-01 10:30:00",
				TotalAmount:     1580.50,
				Currency:        "CNY",
				ShippingAddress: "Nanshan District, Shenzhen Technology Park, China",
				Lines: []model.OrderLine{
					{ProductCode: "08-50-0113", Name: "Connector", Quantity: 20000, UnitPrice: 0.05},
					{ProductCode: "22-01-1042", Name: "Resistor", Quantity: 5000, UnitPrice: 0.02},
				},
				ShippingStatus: model.ShippingPending,
			},
			{
				OrderID:         "LC789012",
				CustomerID:      "CUST002",
				CustomerEmail:   "customer2@example.com",
				Status:          "Shipped",
				CreatedAt:       "2024-06-28 14:20:00",
				TotalAmount:     2350.00,
				Currency:        "USD",
				ShippingAddress: "123 Tech Street, San Francisco, CA 94105, USA",
				TrackingNumber:  "SF1234567890",
				Lines: []model.OrderLine{
					{ProductCode: "42816-0212", Name: "Microcontroller Chip", Quantity: 200, UnitPrice: 11.75},
				},
				ShippingStatus: model.ShippingInTransit,
			},
			{
				OrderID:         "LC345678",
				CustomerID:      "CUST003",
				CustomerEmail:   "customer3@example.com",
				Status:          "Processing",
				CreatedAt:       "2024-07-02 09:15:00",
				TotalAmount:     890.25,
				Currency:        "EUR",
				ShippingAddress: "Calle Mayor 45, Madrid 28013, Spain",
				Lines: []model.OrderLine{
					{ProductCode: "08-50-0113", Name: "Connector", Quantity: 5000, UnitPrice: 0.05},
					{ProductCode: "22-01-1042", Name: "Resistor", Quantity: 10000, UnitPrice: 0.02},
				},
				ShippingStatus: model.ShippingPreparing,
			},
		},
		Products: []model.Product{
			{
				ProductCode:   "08-50-0113",
				Name:          "Molex Connector",
				Category:      "Connectors",
				UnitPrice:     0.05,
				Currency:      "CNY",
				StockStatus:   "in_stock",
				StockQuantity: 500000,
				MinOrderQty:   1000,
				LeadTime:      "1-3 days",
			},
			{
				ProductCode:   "22-01-1042",
				Name:          "1K Ohm Resistor",
				Category:      "Resistors",
				UnitPrice:     0.02,
				Currency:      "CNY",
				StockStatus:   "in_stock",
				StockQuantity: 1000000,
				MinOrderQty:   100,
				LeadTime:      "1-3 days",
			},
			{
				ProductCode:   "42816-0212",
				Name:          "STM32 Microcontroller",
				Category:      "Microcontrollers",
				UnitPrice:     11.75,
				Currency:      "USD",
				StockStatus:   "on_order",
				StockQuantity: 0,
				MinOrderQty:   10,
				LeadTime:      "4-6 weeks",
			},
			{
				ProductCode:   "75-12-3456",
				Name:          "Ceramic Capacitor 10uF",
				Category:      "Capacitors",
				UnitPrice:     0.08,
				Currency:      "USD",
				StockStatus:   "in_stock",
				StockQuantity: 250000,
				MinOrderQty:   500,
				LeadTime:      "1-2 days",
			},
		},
	}
}
