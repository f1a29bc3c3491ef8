package service

import (
	"context"

	"conduit/internal/models"
)

// EventSink is told about committed state changes. Implementations must not
// block the request.
type EventSink interface {
	ArticlePublished(ctx context.Context, article *models.Article)
	ArticleFavorited(ctx context.Context, article *models.Article, byUserID uint)
	ProfileFollowed(ctx context.Context, followerID, followingID uint)
}

type noopEvents struct{}

func (noopEvents) ArticlePublished(context.Context, *models.Article)       {}
func (noopEvents) ArticleFavorited(context.Context, *models.Article, uint) {}
func (noopEvents) ProfileFollowed(context.Context, uint, uint)             {}

func eventsOrNoop(events EventSink) EventSink {
	if events == nil {
		return noopEvents{}
	}
	return events
}
