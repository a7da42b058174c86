package models

import "time"

// Event is a tasting or promotional event shown on the storefront.
type Event struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Date        string    `gorm:"column:date;not null" json:"date"`
	Time        string    `gorm:"column:time" json:"time"`
	Image       string    `gorm:"column:image" json:"image"`
	Description string    `gorm:"column:description" json:"description"`
	Featured    bool      `gorm:"column:featured;not null;default:false" json:"featured"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Event) TableName() string { return "events" }
