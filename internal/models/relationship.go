package models

import "time"

// Favorite is the edge between a user and an article they favorited.
type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ArticleID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"article_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow is a directional edge: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowingID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
