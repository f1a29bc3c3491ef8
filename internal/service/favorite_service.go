package service

import (
	"context"
	"log/slog"

	"conduit/internal/observability"
	"conduit/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FavoriteService toggles favorites. Both directions are idempotent.
type FavoriteService struct {
	articles  repository.ArticleRepository
	favorites repository.FavoriteRepository
	follows   repository.FollowRepository
	events    EventSink
}

func NewFavoriteService(
	articles repository.ArticleRepository,
	favorites repository.FavoriteRepository,
	follows repository.FollowRepository,
	events EventSink,
) *FavoriteService {
	return &FavoriteService{
		articles:  articles,
		favorites: favorites,
		follows:   follows,
		events:    eventsOrNoop(events),
	}
}

// FavoriteArticle adds the article to the user's favorites. Favoriting twice
// counts once.
func (s *FavoriteService) FavoriteArticle(ctx context.Context, slug string, userID uint) (_ *ArticleView, err error) {
	ctx, span := observability.StartSpan(ctx, "FavoriteService.FavoriteArticle",
		attribute.String("article.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	changed, err := s.favorites.Add(ctx, userID, article.ID)
	if err != nil {
		return nil, err
	}
	observability.RecordToggle("favorite", changed)

	view, err := s.reload(ctx, slug, userID, true)
	if err != nil {
		return nil, err
	}

	if changed {
		slog.InfoContext(ctx, "article favorited", "slug", slug, "user_id", userID)
		if article.AuthorID != userID {
			s.events.ArticleFavorited(ctx, view.Article, userID)
		}
	}
	return view, nil
}

// UnfavoriteArticle removes the article from the user's favorites. The
// counter never drops below zero.
func (s *FavoriteService) UnfavoriteArticle(ctx context.Context, slug string, userID uint) (_ *ArticleView, err error) {
	ctx, span := observability.StartSpan(ctx, "FavoriteService.UnfavoriteArticle",
		attribute.String("article.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	changed, err := s.favorites.Remove(ctx, userID, article.ID)
	if err != nil {
		return nil, err
	}
	observability.RecordToggle("unfavorite", changed)
	if changed {
		slog.InfoContext(ctx, "article unfavorited", "slug", slug, "user_id", userID)
	}

	return s.reload(ctx, slug, userID, false)
}

// reload fetches the article again so FavoritesCount reflects the toggle.
func (s *FavoriteService) reload(ctx context.Context, slug string, userID uint, favored bool) (*ArticleView, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	view := &ArticleView{Article: article, Favored: favored}
	if article.AuthorID != userID {
		view.FollowingAuthor, err = s.follows.IsFollowing(ctx, userID, article.AuthorID)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}
