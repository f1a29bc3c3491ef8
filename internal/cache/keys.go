package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	TagListKey    = "tags:all"
)

const (
	UserTTL    = 5 * time.Minute
	TagListTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagListKey)
}
