package models

import "time"

// Product is a catalog entry. Price is stored in minor currency units.
type Product struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Price       int64     `gorm:"column:price;not null" json:"price"`
	Image       string    `gorm:"column:image" json:"image"`
	Description string    `gorm:"column:description" json:"description"`
	Featured    bool      `gorm:"column:featured;not null;default:false" json:"featured"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Product) TableName() string { return "products" }
