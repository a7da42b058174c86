package events

import (
	"context"

	"gorm.io/gorm"

	"github.com/vinoteca/vinoteca-backend/pkg/db/models"
)

// Repository persists storefront events.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an event repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all events, newest date first.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	var out []models.Event
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Find loads one event by id.
func (r *Repository) Find(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event and returns it with its generated id.
func (r *Repository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// Update rewrites the mutable columns of an existing event.
func (r *Repository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"title":       event.Title,
			"date":        event.Date,
			"time":        event.Time,
			"image":       event.Image,
			"description": event.Description,
			"featured":    event.Featured,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Find(ctx, event.ID)
}

// Delete removes an event by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
