package news

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	CreateNews(ctx context.Context, item *Item) error
	GetNews(ctx context.Context, id string) (*Item, error)
	// ListNews returns the newest items first. limit <= 0 means no limit.
	ListNews(ctx context.Context, limit int) ([]Item, error)
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) Repository {
	return &newsRepository{db: db}
}

func (r *newsRepository) CreateNews(ctx context.Context, item *Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *newsRepository) GetNews(ctx context.Context, id string) (*Item, error) {
	var item Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *newsRepository) ListNews(ctx context.Context, limit int) ([]Item, error) {
	var items []Item
	query := r.db.WithContext(ctx).Model(&Item{}).Order("created_at desc").Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
