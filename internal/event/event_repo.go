package event

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	CreateEvent(ctx context.Context, e *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, q Query) ([]Event, error)
	CountEvents(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) Repository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *eventRepository) GetEvent(ctx context.Context, id string) (*Event, error) {
	var e Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) ListEvents(ctx context.Context, q Query) ([]Event, error) {
	var events []Event
	query := r.db.WithContext(ctx).Model(&Event{})
	if q.From != nil {
		query = query.Where("date >= ?", *q.From).Order("date asc").Order("id asc")
	} else {
		query = query.Order("date desc").Order("id asc")
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) CountEvents(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Event{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
