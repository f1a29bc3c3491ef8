package server

import (
	"conduit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type articleFields struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Body        *string   `json:"body"`
	TagList     *[]string `json:"tagList"`
}

// articleRequest accepts the fields either flat or wrapped in "article".
type articleRequest struct {
	articleFields
	Article *articleFields `json:"article"`
}

func (r *articleRequest) fields() articleFields {
	if r.Article != nil {
		return *r.Article
	}
	return r.articleFields
}

// ListArticles handles GET /api/articles
// @Summary List articles
// @Description Newest first; filters are AND-combined and articleCount ignores limit/offset
// @Tags articles
// @Produce json
// @Param tag query string false "Whole tag"
// @Param author query string false "Author username"
// @Param favorited query string false "Username who favorited"
// @Param limit query int false "Page size, 0 for all"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} ArticlesEnvelope
// @Failure 400 {object} models.ErrorResponse
// @Router /articles [get]
func (s *Server) ListArticles(c *fiber.Ctx) error {
	page, err := parsePagination(c)
	if err != nil {
		return nil
	}

	views, count, err := s.articleService.ListArticles(c.UserContext(), s.viewer(c), service.ArticleCriteria{
		Tag:       c.Query("tag"),
		Author:    c.Query("author"),
		Favorited: c.Query("favorited"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newArticlesEnvelope(views, count))
}

// ListFeed handles GET /api/articles/feed
// @Summary Feed
// @Description Articles by authors the caller follows, newest first
// @Tags articles
// @Produce json
// @Param limit query int false "Page size, 0 for all"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} ArticlesEnvelope
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /articles/feed [get]
func (s *Server) ListFeed(c *fiber.Ctx) error {
	page, err := parsePagination(c)
	if err != nil {
		return nil
	}

	views, count, err := s.articleService.ListFeed(c.UserContext(), s.viewer(c), service.FeedCriteria{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newArticlesEnvelope(views, count))
}

// GetArticle handles GET /api/articles/:slug
// @Summary Get article
// @Tags articles
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} ArticleEnvelope
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{slug} [get]
func (s *Server) GetArticle(c *fiber.Ctx) error {
	view, err := s.articleService.GetArticle(c.UserContext(), s.viewer(c), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newArticleEnvelope(view))
}

// CreateArticle handles POST /api/articles
// @Summary Create article
// @Tags articles
// @Accept json
// @Produce json
// @Param request body object{title=string,description=string,body=string,tagList=[]string} true "Article"
// @Success 201 {object} ArticleEnvelope
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /articles [post]
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req articleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	in := req.fields()

	var tags []string
	if in.TagList != nil {
		tags = *in.TagList
	}

	view, err := s.articleService.CreateArticle(c.UserContext(), service.CreateArticleInput{
		AuthorID:    currentUserID(c),
		Title:       deref(in.Title),
		Description: deref(in.Description),
		Body:        deref(in.Body),
		TagList:     tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newArticleEnvelope(view))
}

// UpdateArticle handles PUT /api/articles/:slug
// @Summary Update article
// @Description Only title, description, body and tagList can change; the slug is kept
// @Tags articles
// @Accept json
// @Produce json
// @Param slug path string true "Slug"
// @Param request body object{title=string,description=string,body=string,tagList=[]string} true "Changes"
// @Success 200 {object} ArticleEnvelope
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /articles/{slug} [put]
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	var req articleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	in := req.fields()

	view, err := s.articleService.UpdateArticle(c.UserContext(), service.UpdateArticleInput{
		UserID:      currentUserID(c),
		Slug:        c.Params("slug"),
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		TagList:     in.TagList,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newArticleEnvelope(view))
}

// DeleteArticle handles DELETE /api/articles/:slug
// @Summary Delete article
// @Tags articles
// @Param slug path string true "Slug"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /articles/{slug} [delete]
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	if err := s.articleService.DeleteArticle(c.UserContext(), currentUserID(c), c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FavoriteArticle handles POST /api/articles/:slug/favorite
// @Summary Favorite article
// @Description Idempotent; favoritesCount changes only on the first call
// @Tags articles
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} ArticleEnvelope
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /articles/{slug}/favorite [post]
func (s *Server) FavoriteArticle(c *fiber.Ctx) error {
	view, err := s.favoriteService.FavoriteArticle(c.UserContext(), c.Params("slug"), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newArticleEnvelope(view))
}

// UnfavoriteArticle handles DELETE /api/articles/:slug/favorite
// @Summary Unfavorite article
// @Tags articles
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} ArticleEnvelope
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /articles/{slug}/favorite [delete]
func (s *Server) UnfavoriteArticle(c *fiber.Ctx) error {
	view, err := s.favoriteService.UnfavoriteArticle(c.UserContext(), c.Params("slug"), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newArticleEnvelope(view))
}
