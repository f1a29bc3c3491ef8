package service

import (
	"context"
	"errors"
	"log/slog"

	"conduit/internal/models"
	"conduit/internal/observability"
	"conduit/internal/repository"
	"conduit/internal/slug"
	"conduit/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type ArticleService struct {
	articles  repository.ArticleRepository
	users     repository.UserRepository
	favorites repository.FavoriteRepository
	follows   repository.FollowRepository
	tags      repository.TagRepository
	slugs     *slug.Generator
	events    EventSink
}

// ArticleCriteria are the optional listing filters. Tag, Author and Favorited
// are ignored when empty. Limit 0 means no limit.
type ArticleCriteria struct {
	Tag       string
	Author    string
	Favorited string
	Limit     int
	Offset    int
}

type FeedCriteria struct {
	Limit  int
	Offset int
}

type CreateArticleInput struct {
	AuthorID    uint
	Title       string
	Description string
	Body        string
	TagList     []string
}

// UpdateArticleInput carries the editable fields. Nil means unchanged.
type UpdateArticleInput struct {
	UserID      uint
	Slug        string
	Title       *string
	Description *string
	Body        *string
	TagList     *[]string
}

func NewArticleService(
	articles repository.ArticleRepository,
	users repository.UserRepository,
	favorites repository.FavoriteRepository,
	follows repository.FollowRepository,
	tags repository.TagRepository,
	slugs *slug.Generator,
	events EventSink,
) *ArticleService {
	if slugs == nil {
		slugs = slug.NewGenerator(nil)
	}
	return &ArticleService{
		articles:  articles,
		users:     users,
		favorites: favorites,
		follows:   follows,
		tags:      tags,
		slugs:     slugs,
		events:    eventsOrNoop(events),
	}
}

// ListArticles returns one page of articles matching c, newest first, with
// the total number of matches. An author or favorited username that does not
// exist yields an empty listing.
func (s *ArticleService) ListArticles(ctx context.Context, viewer models.Viewer, c ArticleCriteria) (_ []ArticleView, _ int64, err error) {
	ctx, span := observability.StartSpan(ctx, "ArticleService.ListArticles",
		attribute.String("filter.tag", c.Tag),
		attribute.String("filter.author", c.Author),
		attribute.String("filter.favorited", c.Favorited),
	)
	defer func() { observability.EndSpan(span, err) }()
	observability.ArticleListings.WithLabelValues("all").Inc()

	if err := checkPage(c.Limit, c.Offset); err != nil {
		return nil, 0, err
	}

	filter := repository.ArticleFilter{Tag: c.Tag, Limit: c.Limit, Offset: c.Offset}

	if c.Author != "" {
		author, err := s.users.GetByUsername(ctx, c.Author)
		if err != nil {
			return nil, 0, err
		}
		if author == nil {
			return []ArticleView{}, 0, nil
		}
		filter.AuthorID = &author.ID
	}

	if c.Favorited != "" {
		fan, err := s.users.GetByUsername(ctx, c.Favorited)
		if err != nil {
			return nil, 0, err
		}
		if fan == nil {
			return []ArticleView{}, 0, nil
		}
		filter.FavoritedBy = &fan.ID
	}

	return s.list(ctx, viewer, filter)
}

// ListFeed lists articles written by authors the viewer follows.
func (s *ArticleService) ListFeed(ctx context.Context, viewer models.Viewer, c FeedCriteria) (_ []ArticleView, _ int64, err error) {
	ctx, span := observability.StartSpan(ctx, "ArticleService.ListFeed")
	defer func() { observability.EndSpan(span, err) }()
	observability.ArticleListings.WithLabelValues("feed").Inc()

	if !viewer.Authenticated {
		return nil, 0, models.NewUnauthorizedError("Authentication required")
	}
	if err := checkPage(c.Limit, c.Offset); err != nil {
		return nil, 0, err
	}

	return s.list(ctx, viewer, repository.ArticleFilter{
		FollowedBy: &viewer.UserID,
		Limit:      c.Limit,
		Offset:     c.Offset,
	})
}

func (s *ArticleService) list(ctx context.Context, viewer models.Viewer, filter repository.ArticleFilter) ([]ArticleView, int64, error) {
	articles, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.annotate(ctx, viewer, articles)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// GetArticle returns the article with the given slug.
func (s *ArticleService) GetArticle(ctx context.Context, viewer models.Viewer, slug string) (*ArticleView, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.annotateOne(ctx, viewer, article)
}

func (s *ArticleService) CreateArticle(ctx context.Context, in CreateArticleInput) (_ *ArticleView, err error) {
	ctx, span := observability.StartSpan(ctx, "ArticleService.CreateArticle")
	defer func() { observability.EndSpan(span, err) }()

	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tags, err := validation.NormalizeTags(in.TagList)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := s.users.GetByID(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		TagList:     tags,
		AuthorID:    author.ID,
	}

	// SlugExists and the insert can race; the unique index settles it and we
	// draw a fresh slug once.
	for attempt := 0; ; attempt++ {
		article.Slug, err = s.slugs.Unique(ctx, in.Title, s.articles)
		if err != nil {
			return nil, slugError(err)
		}
		err = s.articles.Create(ctx, article)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrSlugTaken) || attempt == 1 {
			return nil, slugError(err)
		}
		article.ID = 0
	}

	if err := s.tags.Upsert(ctx, tags); err != nil {
		slog.WarnContext(ctx, "failed to record article tags", "slug", article.Slug, "err", err)
	}

	article.Author = *author
	observability.ArticlesPublished.Inc()
	slog.InfoContext(ctx, "article created", "slug", article.Slug, "author_id", author.ID)
	s.events.ArticlePublished(ctx, article)

	return &ArticleView{Article: article}, nil
}

// UpdateArticle merges the non-nil fields of in into the article. Only the
// author may update; slug, author and favoritesCount never change here.
func (s *ArticleService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*ArticleView, error) {
	article, err := s.articles.GetBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("Only the author can update this article")
	}

	tagsChanged, err := applyArticleUpdate(article, in)
	if err != nil {
		return nil, err
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	if tagsChanged {
		if err := s.tags.Upsert(ctx, article.TagList); err != nil {
			slog.WarnContext(ctx, "failed to record article tags", "slug", article.Slug, "err", err)
		}
	}

	return s.annotateOne(ctx, models.AuthenticatedAs(in.UserID), article)
}

// applyArticleUpdate copies the whitelisted fields of in onto article.
func applyArticleUpdate(article *models.Article, in UpdateArticleInput) (bool, error) {
	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return false, models.NewValidationError(err.Error())
		}
		article.Title = *in.Title
	}
	if in.Description != nil {
		if err := validation.ValidateDescription(*in.Description); err != nil {
			return false, models.NewValidationError(err.Error())
		}
		article.Description = *in.Description
	}
	if in.Body != nil {
		if err := validation.ValidateBody(*in.Body); err != nil {
			return false, models.NewValidationError(err.Error())
		}
		article.Body = *in.Body
	}
	if in.TagList != nil {
		tags, err := validation.NormalizeTags(*in.TagList)
		if err != nil {
			return false, models.NewValidationError(err.Error())
		}
		article.TagList = tags
		return true, nil
	}
	return false, nil
}

func (s *ArticleService) DeleteArticle(ctx context.Context, userID uint, slug string) error {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if article.AuthorID != userID {
		return models.NewForbiddenError("Only the author can delete this article")
	}
	if err := s.articles.Delete(ctx, article.ID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "article deleted", "slug", slug, "author_id", userID)
	return nil
}

// annotate sets the per-viewer flags with one lookup per flag for the whole page.
func (s *ArticleService) annotate(ctx context.Context, viewer models.Viewer, articles []*models.Article) ([]ArticleView, error) {
	views := make([]ArticleView, len(articles))
	for i, a := range articles {
		views[i] = ArticleView{Article: a}
	}
	if !viewer.Authenticated || len(articles) == 0 {
		return views, nil
	}

	articleIDs := make([]uint, len(articles))
	authorIDs := make([]uint, 0, len(articles))
	seen := make(map[uint]struct{}, len(articles))
	for i, a := range articles {
		articleIDs[i] = a.ID
		if _, ok := seen[a.AuthorID]; !ok {
			seen[a.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, a.AuthorID)
		}
	}

	favored, err := s.favorites.FavoritedAmong(ctx, viewer.UserID, articleIDs)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.FollowingAmong(ctx, viewer.UserID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range views {
		views[i].Favored = favored[views[i].Article.ID]
		views[i].FollowingAuthor = following[views[i].Article.AuthorID]
	}
	return views, nil
}

func (s *ArticleService) annotateOne(ctx context.Context, viewer models.Viewer, article *models.Article) (*ArticleView, error) {
	views, err := s.annotate(ctx, viewer, []*models.Article{article})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func checkPage(limit, offset int) error {
	if limit < 0 {
		return models.NewValidationError("limit must not be negative")
	}
	if offset < 0 {
		return models.NewValidationError("offset must not be negative")
	}
	return nil
}

func slugError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}
