package repository

import (
	"context"

	"conduit/internal/cache"
	"conduit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	List(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, names []string) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// List returns every known tag name in alphabetical order.
func (r *tagRepository) List(ctx context.Context) ([]string, error) {
	var names []string
	err := cache.Aside(ctx, "tags", cache.TagListKey, &names, cache.TagListTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).
			Model(&models.Tag{}).
			Order("name ASC").
			Pluck("name", &names).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Upsert records tag names that are not known yet.
func (r *tagRepository) Upsert(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, models.Tag{Name: name})
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateTags(ctx)
	}
	return nil
}
