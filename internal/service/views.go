// Package service holds the application's use cases on top of the repositories.
package service

import "conduit/internal/models"

// ArticleView is an article annotated for one viewer. Both flags are false
// for anonymous viewers.
type ArticleView struct {
	Article *models.Article
	// Favored reports whether the viewer has favorited the article.
	Favored bool
	// FollowingAuthor reports whether the viewer follows the article's author.
	FollowingAuthor bool
}

// Profile is a user as seen by a viewer.
type Profile struct {
	User      *models.User
	Following bool
}
