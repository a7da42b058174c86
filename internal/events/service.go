package events

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vinoteca/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
)

type eventRepo interface {
	List(ctx context.Context) ([]models.Event, error)
	Find(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
}

// Service exposes event reads for the storefront and writes for admins.
type Service struct {
	repo eventRepo
}

// NewService builds an event service backed by the provided repository.
func NewService(repo eventRepo) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("event repository required")
	}
	return &Service{repo: repo}, nil
}

// List returns all events ordered by date, newest first.
func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "list events")
	}
	if out == nil {
		out = []models.Event{}
	}
	return out, nil
}

// Create validates and inserts a new event.
func (s *Service) Create(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := validate(event); err != nil {
		return nil, err
	}
	event.ID = 0
	created, err := s.repo.Create(ctx, &event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "create event")
	}
	return created, nil
}

// Update rewrites an existing event.
func (s *Service) Update(ctx context.Context, id int64, event models.Event) (*models.Event, error) {
	if id < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if err := validate(event); err != nil {
		return nil, err
	}
	event.ID = id
	updated, err := s.repo.Update(ctx, &event)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "update event")
	}
	return updated, nil
}

// Delete removes an event by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "delete event")
	}
	return nil
}

func validate(event models.Event) error {
	if event.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event title is required")
	}
	if event.Date == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event date is required")
	}
	return nil
}
