package models

import "time"

// Article is a published blog entry. FavoritesCount is denormalized and only
// changes through the favorite toggles.
type Article struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Slug           string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	TagList        []string  `gorm:"serializer:json;type:text" json:"tagList"`
	FavoritesCount int       `gorm:"not null;default:0" json:"favoritesCount"`
	AuthorID       uint      `gorm:"not null;index" json:"author_id"`
	Author         User      `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Tag is a distinct tag name seen on any article.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}
