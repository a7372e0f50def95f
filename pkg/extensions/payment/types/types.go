package types

import "github.com/shopspring/decimal"

// GatewayOrder 网关侧订单
type GatewayOrder struct {
	OrderID  string          `json:"order_id"` // 网关分配的订单ID
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Status   string          `json:"status"` // created, attempted, paid等
}

// OrderStatus 查询订单状态的结果
type OrderStatus struct {
	Status    string `json:"status"`     // 网关原始状态串，小写
	PaymentID string `json:"payment_id"` // 已观察到支付时的支付ID，可为空
}

// CreateOrderResult 创建订单返回给前端的参数
type CreateOrderResult struct {
	DonationID string          `json:"donation_id"`
	OrderID    string          `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Channel    string          `json:"channel"`
	ClientArgs map[string]interface{} `json:"client_args,omitempty"` // 传递给前端的参数
}
