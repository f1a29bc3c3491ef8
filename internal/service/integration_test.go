package service

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"conduit/internal/database"
	"conduit/internal/models"
	"conduit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type app struct {
	users     *UserService
	articles  *ArticleService
	favorites *FavoriteService
	profiles  *ProfileService
	tags      *TagService
}

func newApp(t *testing.T) *app {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	followRepo := repository.NewFollowRepository(db)
	tagRepo := repository.NewTagRepository(db)

	return &app{
		users:     NewUserService(userRepo).WithBcryptCost(bcrypt.MinCost),
		articles:  NewArticleService(articleRepo, userRepo, favoriteRepo, followRepo, tagRepo, nil, nil),
		favorites: NewFavoriteService(articleRepo, favoriteRepo, followRepo, nil),
		profiles:  NewProfileService(userRepo, followRepo, nil),
		tags:      NewTagService(tagRepo),
	}
}

func (a *app) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := a.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: goodPassword,
	})
	require.NoError(t, err)
	return user
}

func (a *app) publish(t *testing.T, author *models.User, title string, tags ...string) *models.Article {
	t.Helper()
	view, err := a.articles.CreateArticle(context.Background(), CreateArticleInput{
		AuthorID: author.ID,
		Title:    title,
		Body:     "Body of " + title,
		TagList:  tags,
	})
	require.NoError(t, err)
	return view.Article
}

func TestScenario_CountIgnoresPagination(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	jake := a.register(t, "jake")
	for i := range 7 {
		a.publish(t, jake, fmt.Sprintf("Post %d", i), "go")
	}

	tests := []struct {
		limit, offset, want int
	}{
		{0, 0, 7},
		{3, 0, 3},
		{3, 6, 1},
		{3, 9, 0},
	}
	for _, tt := range tests {
		views, total, err := a.articles.ListArticles(ctx, models.Anonymous(), ArticleCriteria{
			Tag: "go", Author: "jake", Limit: tt.limit, Offset: tt.offset,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
		assert.Len(t, views, tt.want)
	}
}

func TestScenario_FavoriteIdempotence(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	jake := a.register(t, "jake")
	ann := a.register(t, "ann")
	article := a.publish(t, jake, "Dragons")

	first, err := a.favorites.FavoriteArticle(ctx, article.Slug, ann.ID)
	require.NoError(t, err)
	second, err := a.favorites.FavoriteArticle(ctx, article.Slug, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Article.FavoritesCount)
	assert.Equal(t, 1, second.Article.FavoritesCount)

	removed, err := a.favorites.UnfavoriteArticle(ctx, article.Slug, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed.Article.FavoritesCount)

	again, err := a.favorites.UnfavoriteArticle(ctx, article.Slug, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Article.FavoritesCount)
}

func TestScenario_NoOpUpdateKeepsFields(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	jake := a.register(t, "jake")
	article := a.publish(t, jake, "Dragons", "fantasy")

	view, err := a.articles.UpdateArticle(ctx, UpdateArticleInput{UserID: jake.ID, Slug: article.Slug})
	require.NoError(t, err)

	got, err := a.articles.GetArticle(ctx, models.Anonymous(), article.Slug)
	require.NoError(t, err)
	for _, v := range []*models.Article{view.Article, got.Article} {
		assert.Equal(t, article.Title, v.Title)
		assert.Equal(t, article.Description, v.Description)
		assert.Equal(t, article.Body, v.Body)
		assert.Equal(t, article.TagList, v.TagList)
		assert.Equal(t, article.Slug, v.Slug)
		assert.Equal(t, article.AuthorID, v.AuthorID)
	}
}

func TestScenario_OwnershipIsEnforced(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	jake := a.register(t, "jake")
	ann := a.register(t, "ann")
	article := a.publish(t, jake, "Dragons")

	_, err := a.articles.UpdateArticle(ctx, UpdateArticleInput{UserID: ann.ID, Slug: article.Slug, Title: strPtr("Mine now")})
	assertAppErrorCode(t, err, models.CodeForbidden)
	err = a.articles.DeleteArticle(ctx, ann.ID, article.Slug)
	assertAppErrorCode(t, err, models.CodeForbidden)

	got, err := a.articles.GetArticle(ctx, models.Anonymous(), article.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Dragons", got.Article.Title)
}

func TestScenario_FavoritedByUserWithNoFavorites(t *testing.T) {
	a := newApp(t)
	jake := a.register(t, "jake")
	a.publish(t, jake, "Dragons")

	views, total, err := a.articles.ListArticles(context.Background(), models.Anonymous(), ArticleCriteria{Favorited: "jake"})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Zero(t, total)
}

func TestScenario_SlugShape(t *testing.T) {
	a := newApp(t)
	jake := a.register(t, "jake")

	article := a.publish(t, jake, "My Title")
	assert.Regexp(t, regexp.MustCompile(`^my-title-[0-9a-z]{8}$`), article.Slug)

	twin := a.publish(t, jake, "My Title")
	assert.NotEqual(t, article.Slug, twin.Slug)
}

func TestScenario_FavoredAnnotation(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	ann := a.register(t, "ann")
	bob := a.register(t, "bob")
	x := a.publish(t, bob, "Article X")

	_, err := a.favorites.FavoriteArticle(ctx, x.Slug, ann.ID)
	require.NoError(t, err)

	views, _, err := a.articles.ListArticles(ctx, models.AuthenticatedAs(ann.ID), ArticleCriteria{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Favored)
	assert.Equal(t, 1, views[0].Article.FavoritesCount)

	views, _, err = a.articles.ListArticles(ctx, models.Anonymous(), ArticleCriteria{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].Favored)
}

func TestScenario_FeedFollowsAndUnfollows(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	ann := a.register(t, "ann")
	bob := a.register(t, "bob")
	y := a.publish(t, bob, "Article Y")

	views, total, err := a.articles.ListFeed(ctx, models.AuthenticatedAs(ann.ID), FeedCriteria{})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Zero(t, total)

	_, err = a.profiles.Follow(ctx, ann.ID, "bob")
	require.NoError(t, err)

	views, total, err = a.articles.ListFeed(ctx, models.AuthenticatedAs(ann.ID), FeedCriteria{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, y.Slug, views[0].Article.Slug)
	assert.True(t, views[0].FollowingAuthor)
	assert.Equal(t, int64(1), total)

	_, err = a.profiles.Unfollow(ctx, ann.ID, "bob")
	require.NoError(t, err)

	views, total, err = a.articles.ListFeed(ctx, models.AuthenticatedAs(ann.ID), FeedCriteria{})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Zero(t, total)
}

func TestScenario_TagsAreRecorded(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	jake := a.register(t, "jake")
	article := a.publish(t, jake, "Dragons", "fantasy", "dragons")

	retag := []string{"dragons", "training"}
	_, err := a.articles.UpdateArticle(ctx, UpdateArticleInput{UserID: jake.ID, Slug: article.Slug, TagList: &retag})
	require.NoError(t, err)

	tags, err := a.tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dragons", "fantasy", "training"}, tags)
}

func TestScenario_RegistrationConflict(t *testing.T) {
	a := newApp(t)
	a.register(t, "jake")

	_, err := a.users.Register(context.Background(), RegisterInput{
		Username: "jake", Email: "other@example.com", Password: goodPassword,
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, map[string]string{"username": takenMessage}, appErr.Fields)
}
