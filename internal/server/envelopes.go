package server

import (
	"time"

	"conduit/internal/models"
	"conduit/internal/service"
)

// UserResponse is the authenticated user with a fresh session token.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
	Token    string `json:"token"`
}

// ProfileResponse is a user as seen by the caller.
type ProfileResponse struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// ArticleResponse is an article annotated for the caller.
type ArticleResponse struct {
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Body           string          `json:"body"`
	TagList        []string        `json:"tagList"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Favored        bool            `json:"favored"`
	FavoritesCount int             `json:"favoritesCount"`
	Author         ProfileResponse `json:"author"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
}

type ProfileEnvelope struct {
	Profile ProfileResponse `json:"profile"`
}

type ArticleEnvelope struct {
	Article ArticleResponse `json:"article"`
}

type ArticlesEnvelope struct {
	Articles     []ArticleResponse `json:"articles"`
	ArticleCount int64             `json:"articleCount"`
}

type TagsEnvelope struct {
	Tags []string `json:"tags"`
}

func newUserEnvelope(user *models.User, token string) UserEnvelope {
	return UserEnvelope{User: UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Bio:      user.Bio,
		Image:    user.Image,
		Token:    token,
	}}
}

func newProfileResponse(user *models.User, following bool) ProfileResponse {
	return ProfileResponse{
		Username:  user.Username,
		Bio:       user.Bio,
		Image:     user.Image,
		Following: following,
	}
}

func newProfileEnvelope(p *service.Profile) ProfileEnvelope {
	return ProfileEnvelope{Profile: newProfileResponse(p.User, p.Following)}
}

func newArticleResponse(v service.ArticleView) ArticleResponse {
	a := v.Article
	tags := a.TagList
	if tags == nil {
		tags = []string{}
	}
	return ArticleResponse{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        tags,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Favored:        v.Favored,
		FavoritesCount: a.FavoritesCount,
		Author:         newProfileResponse(&a.Author, v.FollowingAuthor),
	}
}

func newArticleEnvelope(v *service.ArticleView) ArticleEnvelope {
	return ArticleEnvelope{Article: newArticleResponse(*v)}
}

func newArticlesEnvelope(views []service.ArticleView, count int64) ArticlesEnvelope {
	articles := make([]ArticleResponse, 0, len(views))
	for _, v := range views {
		articles = append(articles, newArticleResponse(v))
	}
	return ArticlesEnvelope{Articles: articles, ArticleCount: count}
}

func newTagsEnvelope(tags []string) TagsEnvelope {
	if tags == nil {
		tags = []string{}
	}
	return TagsEnvelope{Tags: tags}
}
