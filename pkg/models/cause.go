package models

import (
	"time"

	"github.com/alphaseam/donorbox/pkg/database"
	"github.com/shopspring/decimal"
)

type Cause struct {
	ID           uint            `gorm:"primaryKey"`
	Title        string          `gorm:"size:200;not null"`
	Description  string          `gorm:"type:text"`
	TargetAmount decimal.Decimal `gorm:"type:decimal(12,2)"`
	RaisedAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0"` // 仅由完成迁移累加

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cause) TableName() string {
	return "db_causes"
}

func init() {
	database.RegisterAutoMigrateModels(&Cause{})
}
