package carts

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vinoteca/vinoteca-backend/pkg/db/models"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

// Repository persists per-user cart records.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find loads the cart record for the user.
func (r *Repository) Find(ctx context.Context, userID string) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert inserts or replaces the cart record keyed by user id.
func (r *Repository) Upsert(ctx context.Context, userID string, lines types.CartLines) (*models.CartRecord, error) {
	record := models.CartRecord{
		UserID: userID,
		Cart:   lines,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cart", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes the cart record for the user. Deleting a missing record is
// not an error.
func (r *Repository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartRecord{}).Error
}
