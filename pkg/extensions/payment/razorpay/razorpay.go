package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/alphaseam/donorbox/pkg/config"
	derrors "github.com/alphaseam/donorbox/pkg/errors"
	"github.com/alphaseam/donorbox/pkg/extensions/payment/types"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 5 * time.Second

var unit100 = decimal.NewFromInt(100)

type Razorpay struct {
	keyID     string
	keySecret string
	baseURL   string
	authHdr   string
}

// Init 初始化Razorpay客户端
func (r *Razorpay) Init() error {
	r.keyID = config.Config.Razorpay.KeyID
	r.keySecret = config.Config.Razorpay.KeySecret
	r.baseURL = strings.TrimRight(config.Config.Razorpay.BaseURL, "/")

	if r.keyID == "" || r.keySecret == "" {
		return fmt.Errorf("razorpay key id/secret is not configured")
	}

	r.authHdr = "Basic " + base64.StdEncoding.EncodeToString([]byte(r.keyID+":"+r.keySecret))
	log.Printf("Razorpay payment channel initialized successfully")
	return nil
}

// GetChannelName 获取渠道名称
func (r *Razorpay) GetChannelName() string {
	return "razorpay"
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type paymentEntry struct {
	ID     string `json:"id"`
	Status string `json:"status"` // created, authorized, captured, refunded, failed
}

type paymentListResponse struct {
	Count int            `json:"count"`
	Items []paymentEntry `json:"items"`
}

// CreateOrder 创建Razorpay订单
func (r *Razorpay) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*types.GatewayOrder, error) {
	log.Printf("[Razorpay CreateOrder] Starting order creation - amount: %s %s, receipt: %s", amount, currency, receipt)

	// 转换为最小货币单位（INR为paise，USD为cents）
	body, err := json.Marshal(map[string]interface{}{
		"amount":   amount.Mul(unit100).IntPart(),
		"currency": strings.ToUpper(currency),
		"receipt":  receipt,
		"notes": map[string]string{
			"platform": "donorbox",
			"type":     "donation",
		},
	})
	if err != nil {
		return nil, err
	}

	var order orderResponse
	if err := r.do(ctx, "POST", "/v1/orders", body, &order); err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	log.Printf("[Razorpay CreateOrder] Order created - ID: %s, status: %s", order.ID, order.Status)

	return &types.GatewayOrder{
		OrderID:  order.ID,
		Amount:   decimal.NewFromInt(order.Amount).Div(unit100),
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   strings.ToLower(order.Status),
	}, nil
}

// FetchStatus 查询订单当前状态
// 订单已支付时附带查询支付列表，取得支付ID并识别退款
func (r *Razorpay) FetchStatus(ctx context.Context, orderID string) (*types.OrderStatus, error) {
	var order orderResponse
	if err := r.do(ctx, "GET", "/v1/orders/"+orderID, nil, &order); err != nil {
		return nil, err
	}

	result := &types.OrderStatus{Status: strings.ToLower(order.Status)}
	if result.Status != "paid" {
		return result, nil
	}

	var payments paymentListResponse
	if err := r.do(ctx, "GET", "/v1/orders/"+orderID+"/payments", nil, &payments); err != nil {
		// 支付列表查询失败不影响状态判断
		log.Printf("[Razorpay FetchStatus] Failed to list payments for order %s: %v", orderID, err)
		return result, nil
	}

	for _, p := range payments.Items {
		switch p.Status {
		case "refunded":
			result.Status = "refunded"
			result.PaymentID = p.ID
			return result, nil
		case "captured":
			result.PaymentID = p.ID
		}
	}
	return result, nil
}

// VerifySignature 校验支付签名
// Razorpay签名是以key secret为密钥、对 "orderId|paymentId" 的HMAC-SHA256
func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// do 发送请求并解析JSON响应
func (r *Razorpay) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", r.authHdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.SetBody(body)
	}

	timeout := defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	if err := fasthttp.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("razorpay request failed: %w", err)
	}

	switch {
	case resp.StatusCode() == fasthttp.StatusNotFound:
		return derrors.ErrOrderNotFound
	case resp.StatusCode() >= 400:
		return fmt.Errorf("razorpay returned status %d: %s", resp.StatusCode(), resp.Body())
	}

	return json.Unmarshal(resp.Body(), out)
}
