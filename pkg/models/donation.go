package models

import (
	"time"

	"github.com/alphaseam/donorbox/pkg/database"
	"github.com/shopspring/decimal"
)

// DonationStatus 捐赠状态
type DonationStatus string

const (
	StatusPending   DonationStatus = "PENDING"
	StatusCompleted DonationStatus = "COMPLETED"
	StatusFailed    DonationStatus = "FAILED"
	StatusRefunded  DonationStatus = "REFUNDED"
)

// Terminal 终态不再发生任何迁移
func (s DonationStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

type Donation struct {
	ID         string          `gorm:"primaryKey;size:36"`
	DonorName  string          `gorm:"size:100;not null"`
	DonorEmail string          `gorm:"size:255;not null"`
	DonorPhone string          `gorm:"size:30"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency   string          `gorm:"size:10;not null"`
	Message    string          `gorm:"type:text"`

	CauseID *uint  `gorm:"index"`
	Cause   *Cause `gorm:"foreignKey:CauseID"`

	Status DonationStatus `gorm:"size:20;default:'PENDING';index"`

	// 外部支付系统标识
	OrderID   string `gorm:"size:100;index"` // 网关订单ID，只赋值一次
	PaymentID string `gorm:"size:100"`       // 网关支付ID，观察到支付后写入

	FollowupEmailCount int            `gorm:"default:0"`
	LastNotifiedStatus DonationStatus `gorm:"size:20;default:''"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (d *Donation) TableName() string {
	return "db_donations"
}

// CauseTitle 邮件文案用，未关联时归入统一基金
func (d *Donation) CauseTitle() string {
	if d.Cause != nil && d.Cause.Title != "" {
		return d.Cause.Title
	}
	return "General Fund"
}

func init() {
	database.RegisterAutoMigrateModels(&Donation{})
}
