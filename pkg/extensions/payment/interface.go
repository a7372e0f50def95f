package payment

import (
	"context"

	"github.com/alphaseam/donorbox/pkg/extensions/payment/types"
	"github.com/shopspring/decimal"
)

type PaymentChannel interface {
	// 创建网关订单 - amount由业务系统传入，渠道负责转换为网关的最小单位
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*types.GatewayOrder, error)

	// 查询订单当前状态，订单不存在时返回 errors.ErrOrderNotFound
	FetchStatus(ctx context.Context, orderID string) (*types.OrderStatus, error)

	// 校验支付签名，渠道不支持签名时恒为false
	VerifySignature(orderID, paymentID, signature string) bool

	// 资源初始化
	Init() error

	// 获取渠道名称
	GetChannelName() string
}

func Get(channel string) PaymentChannel {
	return paymentChannels[channel]
}

var paymentChannels map[string]PaymentChannel

func Init(channels ...PaymentChannel) error {
	paymentChannels = make(map[string]PaymentChannel)
	for _, channel := range channels {
		if err := channel.Init(); err != nil {
			return err
		}
		paymentChannels[channel.GetChannelName()] = channel
	}
	return nil
}

// GetAvailableChannels 获取所有可用的支付渠道
func GetAvailableChannels() []string {
	channels := make([]string, 0, len(paymentChannels))
	for name := range paymentChannels {
		channels = append(channels, name)
	}
	return channels
}
