package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"conduit/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrSlugTaken is returned by Create when another article already holds the slug.
var ErrSlugTaken = errors.New("slug already taken")

// ArticleFilter narrows an article listing. Every set field is ANDed.
// Limit 0 means no limit.
type ArticleFilter struct {
	Tag         string
	AuthorID    *uint
	FavoritedBy *uint
	FollowedBy  *uint
	Limit       int
	Offset      int
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ArticleFilter) ([]*models.Article, int64, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(article).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrSlugTaken
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("slug = ?", slug).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &article, nil
}

// SlugExists checks the primary so a just-created slug is never reused.
func (r *articleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Update writes the editable columns only. Slug, author and counter are never touched.
func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).
		Model(article).
		Select("Title", "Description", "Body", "TagList").
		Updates(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the article together with its favorite edges.
func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Article{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Article", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

// List returns one page of matching articles, newest first, and the number of
// matches ignoring Limit and Offset. Both queries run concurrently.
func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]*models.Article, int64, error) {
	db := readDB(r.db)

	var (
		articles []*models.Article
		total    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return applyArticleFilter(db.WithContext(gctx).Model(&models.Article{}), filter).
			Count(&total).Error
	})
	g.Go(func() error {
		q := applyArticleFilter(db.WithContext(gctx).Model(&models.Article{}), filter).
			Preload("Author").
			Order("articles.created_at DESC").
			Order("articles.id DESC")
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
		return q.Find(&articles).Error
	})

	if err := g.Wait(); err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	return articles, total, nil
}

func applyArticleFilter(q *gorm.DB, filter ArticleFilter) *gorm.DB {
	if filter.Tag != "" {
		q = q.Where(`articles.tag_list LIKE ? ESCAPE '\'`, tagPattern(filter.Tag))
	}
	if filter.AuthorID != nil {
		q = q.Where("articles.author_id = ?", *filter.AuthorID)
	}
	if filter.FavoritedBy != nil {
		q = q.Where("articles.id IN (SELECT article_id FROM favorites WHERE user_id = ?)", *filter.FavoritedBy)
	}
	if filter.FollowedBy != nil {
		q = q.Where("articles.author_id IN (SELECT following_id FROM follows WHERE follower_id = ?)", *filter.FollowedBy)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// tagPattern matches one whole element of the JSON-encoded tag list, so "go"
// does not match an article tagged only "golang".
func tagPattern(tag string) string {
	encoded, _ := json.Marshal(tag)
	return "%" + likeEscaper.Replace(string(encoded)) + "%"
}
