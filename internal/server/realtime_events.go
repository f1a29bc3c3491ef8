package server

import (
	"context"
	"log/slog"
	"time"

	"conduit/internal/featureflags"
	"conduit/internal/middleware"
	"conduit/internal/models"
	"conduit/internal/notifications"
)

// Event type constants prevent typos in event names.
const (
	EventArticlePublished = "article_published"
	EventArticleFavorited = "article_favorited"
	EventProfileFollowed  = "profile_followed"
)

// realtimeEvents publishes committed changes to Redis when the
// realtime_events flag is on for the acting user.
type realtimeEvents struct {
	notifier *notifications.Notifier
	flags    *featureflags.Manager
}

func (e *realtimeEvents) enabled(userID uint) bool {
	return e.notifier != nil && e.flags.Enabled(featureflags.RealtimeEvents, userID)
}

func (e *realtimeEvents) ArticlePublished(ctx context.Context, article *models.Article) {
	if !e.enabled(article.AuthorID) {
		return
	}
	e.broadcast(ctx, EventArticlePublished, map[string]any{
		"slug":       article.Slug,
		"title":      article.Title,
		"author_id":  article.AuthorID,
		"tag_list":   article.TagList,
		"created_at": article.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (e *realtimeEvents) ArticleFavorited(ctx context.Context, article *models.Article, byUserID uint) {
	if !e.enabled(byUserID) {
		return
	}
	e.toUser(ctx, article.AuthorID, EventArticleFavorited, map[string]any{
		"slug":            article.Slug,
		"favorited_by":    byUserID,
		"favorites_count": article.FavoritesCount,
	})
}

func (e *realtimeEvents) ProfileFollowed(ctx context.Context, followerID, followingID uint) {
	if !e.enabled(followerID) {
		return
	}
	e.toUser(ctx, followingID, EventProfileFollowed, map[string]any{
		"follower_id": followerID,
	})
}

func (e *realtimeEvents) toUser(ctx context.Context, userID uint, eventType string, payload map[string]any) {
	// The request may be finishing; keep its values but not its deadline.
	ctx = context.WithoutCancel(ctx)
	if err := e.notifier.PublishUser(ctx, userID, notifications.Event{Type: eventType, Payload: payload}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish user event",
			slog.String("type", eventType), slog.Any("target_user_id", userID), slog.String("error", err.Error()))
	}
}

func (e *realtimeEvents) broadcast(ctx context.Context, eventType string, payload map[string]any) {
	ctx = context.WithoutCancel(ctx)
	if err := e.notifier.PublishBroadcast(ctx, notifications.Event{Type: eventType, Payload: payload}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish broadcast event",
			slog.String("type", eventType), slog.String("error", err.Error()))
	}
}
