package repository

import (
	"context"
	"errors"

	"conduit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository keeps favorite edges and Article.FavoritesCount in step.
type FavoriteRepository interface {
	// Add reports whether a new edge was created.
	Add(ctx context.Context, userID, articleID uint) (bool, error)
	// Remove reports whether an existing edge was deleted.
	Remove(ctx context.Context, userID, articleID uint) (bool, error)
	FavoritedAmong(ctx context.Context, userID uint, articleIDs []uint) (map[uint]bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository returns a new FavoriteRepository implementation.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, articleID uint) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockArticle(tx, articleID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Favorite{UserID: userID, ArticleID: articleID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		changed = true
		return tx.Model(&models.Article{}).
			Where("id = ?", articleID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count + ?", 1)).Error
	})
	return changed, toggleError(err)
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, articleID uint) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockArticle(tx, articleID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND article_id = ?", userID, articleID).
			Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		changed = true
		return tx.Model(&models.Article{}).
			Where("id = ?", articleID).
			UpdateColumn("favorites_count", gorm.Expr("CASE WHEN favorites_count > 0 THEN favorites_count - 1 ELSE 0 END")).Error
	})
	return changed, toggleError(err)
}

// FavoritedAmong returns the subset of articleIDs the user has favorited.
func (r *favoriteRepository) FavoritedAmong(ctx context.Context, userID uint, articleIDs []uint) (map[uint]bool, error) {
	favored := make(map[uint]bool, len(articleIDs))
	if len(articleIDs) == 0 {
		return favored, nil
	}

	var ids []uint
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND article_id IN ?", userID, articleIDs).
		Pluck("article_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		favored[id] = true
	}
	return favored, nil
}

// lockArticle takes the row lock that serializes toggles on one article.
// SQLite drops the FOR UPDATE clause and locks the whole database instead.
func lockArticle(tx *gorm.DB, articleID uint) error {
	var article models.Article
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&article, articleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Article", articleID)
	}
	return err
}

func toggleError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}
