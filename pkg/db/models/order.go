package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

// Order is written once at checkout and never mutated afterwards.
type Order struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string          `gorm:"column:user_id;not null;index" json:"user_id"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	Email     string          `gorm:"column:email;not null" json:"email"`
	Address   string          `gorm:"column:address;not null" json:"address"`
	Items     types.CartLines `gorm:"column:items;type:jsonb;serializer:json" json:"items"`
	Total     int64           `gorm:"column:total;not null" json:"total"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Order) TableName() string { return "orders" }

// BeforeCreate assigns an id when the database default is unavailable.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
