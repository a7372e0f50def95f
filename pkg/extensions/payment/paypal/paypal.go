package paypal

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/alphaseam/donorbox/pkg/config"
	derrors "github.com/alphaseam/donorbox/pkg/errors"
	"github.com/alphaseam/donorbox/pkg/extensions/payment/types"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

type PayPal struct {
	client *paypal.Client
}

// Init 初始化PayPal客户端
func (p *PayPal) Init() error {
	// 如果没有配置ClientSecret或者是测试环境，使用沙盒
	environment := paypal.APIBaseSandBox

	client, err := paypal.NewClient(
		config.Config.PayPal.ClientID,
		config.Config.PayPal.ClientSecret,
		environment,
	)
	if err != nil {
		return err
	}

	// 获取访问令牌
	_, err = client.GetAccessToken(context.Background())
	if err != nil {
		return err
	}

	p.client = client
	log.Printf("PayPal payment channel initialized successfully")
	return nil
}

// GetChannelName 获取渠道名称
func (p *PayPal) GetChannelName() string {
	return "paypal"
}

// CreateOrder 创建PayPal订单
func (p *PayPal) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*types.GatewayOrder, error) {
	log.Printf("[PayPal CreateOrder] Starting order creation - amount: %s %s, receipt: %s", amount, currency, receipt)

	purchaseUnits := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: receipt,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(currency),
				Value:    amount.StringFixed(2),
			},
			Description: "Donation via Donorbox Platform",
		},
	}

	order, err := p.client.CreateOrder(ctx, "CAPTURE", purchaseUnits, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create PayPal order: %w", err)
	}

	log.Printf("[PayPal CreateOrder] Order created - ID: %s, status: %s", order.ID, order.Status)

	return &types.GatewayOrder{
		OrderID:  order.ID,
		Amount:   amount,
		Currency: strings.ToUpper(currency),
		Receipt:  receipt,
		Status:   mapOrderStatus(order.Status),
	}, nil
}

// FetchStatus 查询订单当前状态
func (p *PayPal) FetchStatus(ctx context.Context, orderID string) (*types.OrderStatus, error) {
	order, err := p.client.GetOrder(ctx, orderID)
	if err != nil {
		if strings.Contains(err.Error(), "RESOURCE_NOT_FOUND") {
			return nil, derrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get PayPal order: %w", err)
	}

	return &types.OrderStatus{Status: mapOrderStatus(order.Status)}, nil
}

// VerifySignature PayPal没有Razorpay式的支付签名，恒为false
func (p *PayPal) VerifySignature(orderID, paymentID, signature string) bool {
	log.Printf("[PayPal VerifySignature] Signature verification not supported for PayPal orders")
	return false
}

// mapOrderStatus 把PayPal订单状态映射到对账用的状态词汇
func mapOrderStatus(status string) string {
	switch status {
	case "COMPLETED":
		return "paid"
	case "VOIDED":
		return "failed"
	default:
		// CREATED/SAVED/APPROVED等中间状态按pending处理
		return strings.ToLower(status)
	}
}
