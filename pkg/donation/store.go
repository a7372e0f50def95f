package donation

import (
	"errors"
	"time"

	derrors "github.com/alphaseam/donorbox/pkg/errors"
	"github.com/alphaseam/donorbox/pkg/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var terminalStatuses = []models.DonationStatus{
	models.StatusCompleted,
	models.StatusFailed,
	models.StatusRefunded,
}

// Store 捐赠记录的数据访问层
// 状态类更新全部使用条件UPDATE，保证并发的对账tick和follow-up tick
// 不会用过期状态覆盖新状态
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(d *models.Donation) error {
	return s.db.Create(d).Error
}

func (s *Store) Get(id string) (*models.Donation, error) {
	var d models.Donation
	err := s.db.Preload("Cause").Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, derrors.ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) FindByOrderID(orderID string) (*models.Donation, error) {
	var d models.Donation
	err := s.db.Preload("Cause").Where("order_id = ?", orderID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, derrors.ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) GetCause(id uint) (*models.Cause, error) {
	var c models.Cause
	err := s.db.Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, derrors.ErrCauseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindPendingOlderThan 对账候选：卡在PENDING超过宽限期、且已有网关订单的记录
func (s *Store) FindPendingOlderThan(cutoff time.Time) ([]models.Donation, error) {
	var out []models.Donation
	err := s.db.Preload("Cause").
		Where("status = ? AND order_id <> '' AND created_at < ?", models.StatusPending, cutoff).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// FindRecentWithOrder 对账候选：回溯窗口内所有带网关订单的非终态记录
func (s *Store) FindRecentWithOrder(since time.Time) ([]models.Donation, error) {
	var out []models.Donation
	err := s.db.Preload("Cause").
		Where("status NOT IN ? AND order_id <> '' AND created_at >= ?", terminalStatuses, since).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// FindAllWithOrder 手动强制对账用，不限时间窗口
func (s *Store) FindAllWithOrder() ([]models.Donation, error) {
	var out []models.Donation
	err := s.db.Preload("Cause").
		Where("status NOT IN ? AND order_id <> ''", terminalStatuses).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// FindStaleForFollowup 超龄且未达follow-up上限的非终态记录
func (s *Store) FindStaleForFollowup(cutoff time.Time, maxFollowups int) ([]models.Donation, error) {
	var out []models.Donation
	err := s.db.Preload("Cause").
		Where("status NOT IN ? AND created_at < ? AND followup_email_count < ?", terminalStatuses, cutoff, maxFollowups).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (s *Store) All() ([]models.Donation, error) {
	var out []models.Donation
	err := s.db.Preload("Cause").Order("created_at ASC").Find(&out).Error
	return out, err
}

// SetOrderID 写入网关订单ID，只允许赋值一次
func (s *Store) SetOrderID(id, orderID string) error {
	res := s.db.Model(&models.Donation{}).
		Where("id = ? AND order_id = ''", id).
		Update("order_id", orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return derrors.ErrOrderAlreadyCreated
	}
	return nil
}

// SaveStatus 条件式状态更新，当前状态已是终态时拒绝覆盖
// 返回是否实际写入
func (s *Store) SaveStatus(id string, status models.DonationStatus, paymentID string) (bool, error) {
	updates := map[string]interface{}{"status": status}
	if paymentID != "" {
		updates["payment_id"] = paymentID
	}

	res := s.db.Model(&models.Donation{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkNotified 记录已按该状态发过通知，同状态重复标记为no-op
func (s *Store) MarkNotified(id string, status models.DonationStatus) (bool, error) {
	res := s.db.Model(&models.Donation{}).
		Where("id = ? AND last_notified_status <> ?", id, status).
		Update("last_notified_status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementFollowup 原子递增follow-up计数，已达上限时no-op
// 计数在数据库内递增，避免内存加一后再写回造成超限
func (s *Store) IncrementFollowup(id string, max int) (bool, error) {
	res := s.db.Model(&models.Donation{}).
		Where("id = ? AND followup_email_count < ?", id, max).
		Update("followup_email_count", gorm.Expr("followup_email_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddToCauseRaised 捐赠完成时累加所属cause的已筹金额
func (s *Store) AddToCauseRaised(causeID uint, amount decimal.Decimal) error {
	return s.db.Model(&models.Cause{}).
		Where("id = ?", causeID).
		Update("raised_amount", gorm.Expr("raised_amount + ?", amount)).Error
}
