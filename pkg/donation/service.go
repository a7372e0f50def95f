package donation

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	derrors "github.com/alphaseam/donorbox/pkg/errors"
	"github.com/alphaseam/donorbox/pkg/events"
	"github.com/alphaseam/donorbox/pkg/extensions/payment"
	"github.com/alphaseam/donorbox/pkg/extensions/payment/types"
	"github.com/alphaseam/donorbox/pkg/models"
	"github.com/alphaseam/donorbox/pkg/notify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDonationRequest 创建捐赠的入参
type CreateDonationRequest struct {
	DonorName  string          `json:"donor_name" binding:"required"`
	DonorEmail string          `json:"donor_email" binding:"required,email"`
	DonorPhone string          `json:"donor_phone"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Currency   string          `json:"currency" binding:"required"`
	CauseID    *uint           `json:"cause_id"`
	Message    string          `json:"message"`
}

// VerifyRequest 支付验证的入参，与网关回传给前端的字段对应
type VerifyRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Service 捐赠业务门面
type Service struct {
	store       *Store
	dispatcher  *notify.Dispatcher
	channelName string
}

func NewService(store *Store, dispatcher *notify.Dispatcher, channelName string) *Service {
	return &Service{store: store, dispatcher: dispatcher, channelName: channelName}
}

func (s *Service) Store() *Store {
	return s.store
}

// CreateDonation 创建PENDING状态的捐赠记录
// 校验失败时不产生任何记录
func (s *Service) CreateDonation(req *CreateDonationRequest) (*models.Donation, error) {
	if !req.Amount.IsPositive() {
		return nil, derrors.ErrInvalidAmount
	}
	if !IsCurrencySupported(req.Currency) {
		return nil, derrors.ErrCurrencyNotSupported
	}

	var cause *models.Cause
	if req.CauseID != nil {
		c, err := s.store.GetCause(*req.CauseID)
		if err != nil {
			return nil, err
		}
		cause = c
	}

	d := &models.Donation{
		ID:         uuid.NewString(),
		DonorName:  req.DonorName,
		DonorEmail: req.DonorEmail,
		DonorPhone: req.DonorPhone,
		Amount:     req.Amount,
		Currency:   req.Currency,
		CauseID:    req.CauseID,
		Cause:      cause,
		Message:    req.Message,
		Status:     models.StatusPending,
	}

	if err := s.store.Create(d); err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	slog.Info("[Service] Donation created", "donation", d.ID, "amount", d.Amount, "currency", d.Currency)
	return d, nil
}

// CreateDonationAndOrder 创建捐赠并在网关侧下单
func (s *Service) CreateDonationAndOrder(ctx context.Context, req *CreateDonationRequest) (*types.CreateOrderResult, error) {
	channel := payment.Get(s.channelName)
	if channel == nil {
		return nil, derrors.ErrChannelNotFound
	}

	d, err := s.CreateDonation(req)
	if err != nil {
		return nil, err
	}

	order, err := channel.CreateOrder(ctx, d.Amount, d.Currency, d.ID)
	if err != nil {
		log.Printf("[Service CreateDonationAndOrder] Gateway order creation failed for donation %s: %v", d.ID, err)
		return nil, derrors.ErrOrderCreationFailed
	}

	if err := s.store.SetOrderID(d.ID, order.OrderID); err != nil {
		return nil, err
	}

	slog.Info("[Service] Gateway order created", "donation", d.ID, "order", order.OrderID, "channel", channel.GetChannelName())

	return &types.CreateOrderResult{
		DonationID: d.ID,
		OrderID:    order.OrderID,
		Amount:     d.Amount,
		Currency:   d.Currency,
		Channel:    channel.GetChannelName(),
	}, nil
}

// VerifyAndFinalize 校验支付签名并把捐赠推进到COMPLETED
// 签名无效或订单未知时返回false，不改变任何状态
// 重复调用时签名仍然有效，但终态粘滞使其成为no-op，不会重复通知
func (s *Service) VerifyAndFinalize(ctx context.Context, req *VerifyRequest) (bool, error) {
	channel := payment.Get(s.channelName)
	if channel == nil {
		return false, derrors.ErrChannelNotFound
	}

	if !channel.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		log.Printf("[Service VerifyAndFinalize] Invalid signature for order %s", req.OrderID)
		return false, nil
	}

	d, err := s.store.FindByOrderID(req.OrderID)
	if err != nil {
		log.Printf("[Service VerifyAndFinalize] No donation for order %s", req.OrderID)
		return false, nil
	}

	target, changed := NextStatus(d.Status, "paid")
	if changed {
		if _, err := s.ApplyTransition(d, target, req.PaymentID); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ApplyTransition 落盘一次真实状态迁移并触发通知
// 返回是否实际写入。守卫式UPDATE保证并发写入者不会把终态改回去；
// 通知失败只记录日志，幂等标记未落盘，下一轮对账会重试
func (s *Service) ApplyTransition(d *models.Donation, target models.DonationStatus, paymentID string) (bool, error) {
	applied, err := s.store.SaveStatus(d.ID, target, paymentID)
	if err != nil {
		return false, fmt.Errorf("failed to save status for donation %s: %w", d.ID, err)
	}
	if !applied {
		log.Printf("[Service ApplyTransition] Donation %s already terminal, skipping %s", d.ID, target)
		return false, nil
	}

	slog.Info("[Service] Donation status changed", "donation", d.ID, "from", d.Status, "to", target)

	if target == models.StatusCompleted && d.CauseID != nil {
		if err := s.store.AddToCauseRaised(*d.CauseID, d.Amount); err != nil {
			log.Printf("[Service ApplyTransition] Failed to update raised amount for cause %d: %v", *d.CauseID, err)
		}
	}

	// 以库内最新数据渲染邮件
	fresh, err := s.store.Get(d.ID)
	if err != nil {
		return true, err
	}
	*d = *fresh

	if err := s.dispatcher.Dispatch(d); err != nil {
		log.Printf("[Service ApplyTransition] Notification dispatch failed for donation %s: %v", d.ID, err)
	}

	s.emitEvent(d, target)
	return true, nil
}

func (s *Service) emitEvent(d *models.Donation, target models.DonationStatus) {
	event := &events.DonationEvent{
		DonationID: d.ID,
		OrderID:    d.OrderID,
		PaymentID:  d.PaymentID,
		Status:     string(target),
		Amount:     d.Amount,
		Currency:   d.Currency,
		CauseTitle: d.CauseTitle(),
		OccurredAt: time.Now(),
	}

	var err error
	switch target {
	case models.StatusCompleted:
		err = events.EmitDonationCompleted(event)
	case models.StatusFailed:
		err = events.EmitDonationFailed(event)
	case models.StatusRefunded:
		err = events.EmitDonationRefunded(event)
	}
	if err != nil {
		log.Printf("[Service] Event handler failed for donation %s: %v", d.ID, err)
	}
}
