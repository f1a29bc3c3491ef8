package repository

import (
	"context"

	"conduit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages directional follow edges between users.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	FollowingAmong(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FollowingID: followingID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// FollowingAmong returns the subset of userIDs the follower follows.
func (r *followRepository) FollowingAmong(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error) {
	following := make(map[uint]bool, len(userIDs))
	if len(userIDs) == 0 {
		return following, nil
	}

	var ids []uint
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, userIDs).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		following[id] = true
	}
	return following, nil
}
