package models

import (
	"time"

	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

// CartRecord is the per-user remote cart snapshot. One record per identity;
// the record is authoritative for a signed-in user across devices.
type CartRecord struct {
	UserID    string          `gorm:"column:user_id;primaryKey" json:"user_id"`
	Cart      types.CartLines `gorm:"column:cart;type:jsonb;serializer:json" json:"cart"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName matches the hosted table the storefront always used.
func (CartRecord) TableName() string { return "carts" }
