package commence

import (
	"context"
	"fmt"

	"github.com/alphaseam/donorbox/pkg/config"
	"github.com/alphaseam/donorbox/pkg/database"
	"github.com/alphaseam/donorbox/pkg/donation"
	"github.com/alphaseam/donorbox/pkg/events"
	"github.com/alphaseam/donorbox/pkg/extensions/payment"
	"github.com/alphaseam/donorbox/pkg/extensions/payment/paypal"
	"github.com/alphaseam/donorbox/pkg/extensions/payment/razorpay"
	"github.com/alphaseam/donorbox/pkg/notify"
	"github.com/alphaseam/donorbox/pkg/scheduler"
	"github.com/alphaseam/donorbox/pkg/web"
	"github.com/benbjohnson/clock"
)

func Start(cfg *config.CommenceConfig) error {
	config.Config = cfg

	if err := database.Open(cfg.Database.DSN); err != nil {
		return err
	}

	// 启动支付渠道
	channels := []payment.PaymentChannel{&razorpay.Razorpay{}}
	if cfg.PayPal.Enabled {
		channels = append(channels, &paypal.PayPal{})
	}
	if err := payment.Init(channels...); err != nil {
		return fmt.Errorf("failed to init payment channels: %w", err)
	}

	store := donation.NewStore(database.Database())
	sender := notify.NewSMTPSender(cfg)
	dispatcher := notify.NewDispatcher(store, sender, cfg.Notify.OperatorEmail, cfg.Notify.FollowupCap)
	svc := donation.NewService(store, dispatcher, cfg.Payment.DefaultChannel)

	sched := scheduler.New(store, svc, dispatcher, cfg.Payment.DefaultChannel, clock.New(), scheduler.Config{
		ReconcileInterval:  cfg.Monitor.ReconcileInterval,
		FollowupInterval:   cfg.Monitor.FollowupInterval,
		PendingGrace:       cfg.Monitor.PendingGrace,
		RecentWindow:       cfg.Monitor.RecentWindow,
		FollowupMinAge:     cfg.Monitor.FollowupMinAge,
		FollowupCap:        cfg.Notify.FollowupCap,
		InitialNotifyDelay: cfg.Notify.InitialDelay,
		GatewayTimeout:     cfg.Payment.Timeout,
	})

	// 注册业务事件转发
	if cfg.Events.Enabled {
		forwarder, err := events.NewSQSForwarder(context.Background())
		if err != nil {
			return err
		}
		events.SetEventHandler(forwarder)
	}

	sched.Start()
	defer sched.Stop()

	return web.NewServer(svc, sched).Run(cfg.HTTP.Listen)
}

// RegisterEventHandler 注册业务系统的事件处理器
func RegisterEventHandler(handler events.EventHandler) {
	events.SetEventHandler(handler)
}
