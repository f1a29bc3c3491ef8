package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"conduit/internal/models"
	"conduit/internal/repository"
	"conduit/internal/slug"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type articleDeps struct {
	articles  *articleRepoStub
	users     *userRepoStub
	favorites *favoriteRepoStub
	follows   *followRepoStub
	tags      *tagRepoStub
	events    *eventRecorder
}

func newArticleDeps() *articleDeps {
	return &articleDeps{
		articles:  noopArticleRepo(),
		users:     noopUserRepo(),
		favorites: noopFavoriteRepo(),
		follows:   noopFollowRepo(),
		tags:      noopTagRepo(),
		events:    &eventRecorder{},
	}
}

func (d *articleDeps) service(slugs *slug.Generator) *ArticleService {
	return NewArticleService(d.articles, d.users, d.favorites, d.follows, d.tags, slugs, d.events)
}

func TestArticleService_ListArticles_UnknownUsernamesYieldEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		criteria ArticleCriteria
	}{
		{name: "unknown author", criteria: ArticleCriteria{Author: "ghost"}},
		{name: "unknown favorited", criteria: ArticleCriteria{Favorited: "ghost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newArticleDeps()
			deps.articles.listFn = func(context.Context, repository.ArticleFilter) ([]*models.Article, int64, error) {
				t.Fatal("listing must not query articles for an unknown user")
				return nil, 0, nil
			}

			views, total, err := deps.service(nil).ListArticles(context.Background(), models.Anonymous(), tt.criteria)
			require.NoError(t, err)
			assert.Empty(t, views)
			assert.NotNil(t, views)
			assert.Zero(t, total)
		})
	}
}

func TestArticleService_ListArticles_ResolvesUsernames(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	deps.users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		switch username {
		case "jake":
			return &models.User{ID: 1, Username: "jake"}, nil
		case "ann":
			return &models.User{ID: 2, Username: "ann"}, nil
		}
		return nil, nil
	}

	var got repository.ArticleFilter
	deps.articles.listFn = func(_ context.Context, f repository.ArticleFilter) ([]*models.Article, int64, error) {
		got = f
		return []*models.Article{}, 7, nil
	}

	_, total, err := deps.service(nil).ListArticles(context.Background(), models.Anonymous(), ArticleCriteria{
		Tag: "go", Author: "jake", Favorited: "ann", Limit: 5, Offset: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	assert.Equal(t, "go", got.Tag)
	require.NotNil(t, got.AuthorID)
	assert.Equal(t, uint(1), *got.AuthorID)
	require.NotNil(t, got.FavoritedBy)
	assert.Equal(t, uint(2), *got.FavoritedBy)
	assert.Nil(t, got.FollowedBy)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, 10, got.Offset)
}

func TestArticleService_ListArticles_NegativePage(t *testing.T) {
	t.Parallel()

	svc := newArticleDeps().service(nil)
	_, _, err := svc.ListArticles(context.Background(), models.Anonymous(), ArticleCriteria{Limit: -1})
	assertValidationError(t, err)

	_, _, err = svc.ListArticles(context.Background(), models.Anonymous(), ArticleCriteria{Offset: -1})
	assertValidationError(t, err)
}

func TestArticleService_ListArticles_AnonymousSkipsLookups(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	deps.articles.listFn = func(context.Context, repository.ArticleFilter) ([]*models.Article, int64, error) {
		return []*models.Article{{ID: 1, AuthorID: 9}, {ID: 2, AuthorID: 9}}, 2, nil
	}
	deps.favorites.favoritedAmongFn = func(context.Context, uint, []uint) (map[uint]bool, error) {
		t.Fatal("anonymous listings must not look up favorites")
		return nil, nil
	}
	deps.follows.followingAmongFn = func(context.Context, uint, []uint) (map[uint]bool, error) {
		t.Fatal("anonymous listings must not look up follows")
		return nil, nil
	}

	views, total, err := deps.service(nil).ListArticles(context.Background(), models.Anonymous(), ArticleCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, v := range views {
		assert.False(t, v.Favored)
		assert.False(t, v.FollowingAuthor)
	}
}

func TestArticleService_ListArticles_AnnotatesForViewer(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	deps.articles.listFn = func(context.Context, repository.ArticleFilter) ([]*models.Article, int64, error) {
		return []*models.Article{{ID: 1, AuthorID: 9}, {ID: 2, AuthorID: 8}, {ID: 3, AuthorID: 9}}, 3, nil
	}

	var askedArticles, askedAuthors []uint
	deps.favorites.favoritedAmongFn = func(_ context.Context, userID uint, ids []uint) (map[uint]bool, error) {
		assert.Equal(t, uint(5), userID)
		askedArticles = ids
		return map[uint]bool{2: true}, nil
	}
	deps.follows.followingAmongFn = func(_ context.Context, userID uint, ids []uint) (map[uint]bool, error) {
		assert.Equal(t, uint(5), userID)
		askedAuthors = ids
		return map[uint]bool{9: true}, nil
	}

	views, _, err := deps.service(nil).ListArticles(context.Background(), models.AuthenticatedAs(5), ArticleCriteria{})
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 2, 3}, askedArticles)
	assert.Equal(t, []uint{9, 8}, askedAuthors)

	require.Len(t, views, 3)
	assert.False(t, views[0].Favored)
	assert.True(t, views[1].Favored)
	assert.True(t, views[0].FollowingAuthor)
	assert.False(t, views[1].FollowingAuthor)
	assert.True(t, views[2].FollowingAuthor)
}

func TestArticleService_ListFeed(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	var got repository.ArticleFilter
	deps.articles.listFn = func(_ context.Context, f repository.ArticleFilter) ([]*models.Article, int64, error) {
		got = f
		return []*models.Article{}, 0, nil
	}
	svc := deps.service(nil)

	_, _, err := svc.ListFeed(context.Background(), models.Anonymous(), FeedCriteria{})
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, _, err = svc.ListFeed(context.Background(), models.AuthenticatedAs(4), FeedCriteria{Limit: 20})
	require.NoError(t, err)
	require.NotNil(t, got.FollowedBy)
	assert.Equal(t, uint(4), *got.FollowedBy)
	assert.Nil(t, got.AuthorID)
	assert.Equal(t, 20, got.Limit)
}

func TestArticleService_CreateArticle(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	deps.users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "jake"}, nil
	}
	var created *models.Article
	deps.articles.createFn = func(_ context.Context, a *models.Article) error {
		a.ID = 11
		created = a
		return nil
	}
	var upserted []string
	deps.tags.upsertFn = func(_ context.Context, names []string) error {
		upserted = names
		return nil
	}

	view, err := deps.service(nil).CreateArticle(context.Background(), CreateArticleInput{
		AuthorID:    3,
		Title:       "My Title",
		Description: "desc",
		Body:        "body",
		TagList:     []string{"go", " go ", "web"},
	})
	require.NoError(t, err)

	assert.Same(t, created, view.Article)
	assert.Regexp(t, regexp.MustCompile(`^my-title-[0-9a-z]{8}$`), view.Article.Slug)
	assert.Equal(t, []string{"go", "web"}, view.Article.TagList)
	assert.Equal(t, []string{"go", "web"}, upserted)
	assert.Equal(t, "jake", view.Article.Author.Username)
	assert.Zero(t, view.Article.FavoritesCount)
	assert.False(t, view.Favored)
	assert.Equal(t, []string{view.Article.Slug}, deps.events.published)
}

func TestArticleService_CreateArticle_Validation(t *testing.T) {
	t.Parallel()

	svc := newArticleDeps().service(nil)
	tests := []struct {
		name  string
		input CreateArticleInput
	}{
		{name: "missing title", input: CreateArticleInput{AuthorID: 1, Body: "b"}},
		{name: "missing body", input: CreateArticleInput{AuthorID: 1, Title: "t"}},
		{name: "too many tags", input: CreateArticleInput{AuthorID: 1, Title: "t", Body: "b",
			TagList: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateArticle(context.Background(), tt.input)
			assertValidationError(t, err)
		})
	}
}

func TestArticleService_CreateArticle_RetriesSlugOnce(t *testing.T) {
	t.Parallel()

	draws := int64(0)
	gen := slug.NewGenerator(slug.SourceFunc(func(int64) int64 {
		draws++
		return draws
	}))

	deps := newArticleDeps()
	var attempts []string
	deps.articles.createFn = func(_ context.Context, a *models.Article) error {
		attempts = append(attempts, a.Slug)
		if len(attempts) == 1 {
			return repository.ErrSlugTaken
		}
		return nil
	}

	view, err := deps.service(gen).CreateArticle(context.Background(), CreateArticleInput{
		AuthorID: 1, Title: "Race", Body: "b",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"race-00000001", "race-00000002"}, attempts)
	assert.Equal(t, "race-00000002", view.Article.Slug)
}

func TestArticleService_CreateArticle_GivesUpAfterSecondCollision(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	calls := 0
	deps.articles.createFn = func(context.Context, *models.Article) error {
		calls++
		return repository.ErrSlugTaken
	}

	_, err := deps.service(nil).CreateArticle(context.Background(), CreateArticleInput{
		AuthorID: 1, Title: "Race", Body: "b",
	})
	assertAppErrorCode(t, err, models.CodeInternal)
	assert.Equal(t, 2, calls)
	assert.Empty(t, deps.events.published)
}

func TestArticleService_UpdateArticle_Forbidden(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	deps.articles.getBySlugFn = func(_ context.Context, s string) (*models.Article, error) {
		return &models.Article{ID: 1, Slug: s, Title: "Original", AuthorID: 2}, nil
	}
	deps.articles.updateFn = func(context.Context, *models.Article) error {
		t.Fatal("non-author must not update")
		return nil
	}
	deps.articles.deleteFn = func(context.Context, uint) error {
		t.Fatal("non-author must not delete")
		return nil
	}
	svc := deps.service(nil)

	_, err := svc.UpdateArticle(context.Background(), UpdateArticleInput{UserID: 3, Slug: "s", Title: strPtr("Hijack")})
	assertAppErrorCode(t, err, models.CodeForbidden)

	err = svc.DeleteArticle(context.Background(), 3, "s")
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func TestArticleService_UpdateArticle_Merge(t *testing.T) {
	t.Parallel()

	original := func() *models.Article {
		return &models.Article{
			ID: 1, Slug: "keep-me-00000001", Title: "Title", Description: "Desc", Body: "Body",
			TagList: []string{"a"}, FavoritesCount: 4, AuthorID: 2,
		}
	}

	tags := []string{"b", "c"}
	tests := []struct {
		name    string
		input   UpdateArticleInput
		want    func(*models.Article)
		upserts bool
	}{
		{
			name:  "no-op",
			input: UpdateArticleInput{},
			want:  func(*models.Article) {},
		},
		{
			name:  "title only",
			input: UpdateArticleInput{Title: strPtr("New Title")},
			want:  func(a *models.Article) { a.Title = "New Title" },
		},
		{
			name:    "tags and body",
			input:   UpdateArticleInput{Body: strPtr("New Body"), TagList: &tags},
			want:    func(a *models.Article) { a.Body = "New Body"; a.TagList = []string{"b", "c"} },
			upserts: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newArticleDeps()
			deps.articles.getBySlugFn = func(context.Context, string) (*models.Article, error) {
				return original(), nil
			}
			var saved *models.Article
			deps.articles.updateFn = func(_ context.Context, a *models.Article) error {
				saved = a
				return nil
			}
			upserted := false
			deps.tags.upsertFn = func(context.Context, []string) error {
				upserted = true
				return nil
			}

			in := tt.input
			in.UserID = 2
			in.Slug = "keep-me-00000001"
			view, err := deps.service(nil).UpdateArticle(context.Background(), in)
			require.NoError(t, err)

			want := original()
			tt.want(want)
			assert.Equal(t, want, saved)
			assert.Equal(t, want, view.Article)
			assert.Equal(t, tt.upserts, upserted)
		})
	}
}

func TestArticleService_UpdateArticle_InvalidTitle(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	deps.articles.getBySlugFn = func(context.Context, string) (*models.Article, error) {
		return &models.Article{ID: 1, Title: "Title", AuthorID: 2}, nil
	}

	_, err := deps.service(nil).UpdateArticle(context.Background(), UpdateArticleInput{
		UserID: 2, Slug: "s", Title: strPtr("  "),
	})
	assertValidationError(t, err)
}

func TestArticleService_DeleteArticle(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	deps.articles.getBySlugFn = func(context.Context, string) (*models.Article, error) {
		return &models.Article{ID: 6, AuthorID: 2}, nil
	}
	var deleted uint
	deps.articles.deleteFn = func(_ context.Context, id uint) error {
		deleted = id
		return nil
	}

	require.NoError(t, deps.service(nil).DeleteArticle(context.Background(), 2, "s"))
	assert.Equal(t, uint(6), deleted)
}

func TestArticleService_GetArticle_NotFound(t *testing.T) {
	t.Parallel()

	_, err := newArticleDeps().service(nil).GetArticle(context.Background(), models.Anonymous(), "missing")
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestArticleService_ListArticles_RepositoryError(t *testing.T) {
	t.Parallel()

	deps := newArticleDeps()
	deps.articles.listFn = func(context.Context, repository.ArticleFilter) ([]*models.Article, int64, error) {
		return nil, 0, models.NewInternalError(errors.New("db down"))
	}

	_, _, err := deps.service(nil).ListArticles(context.Background(), models.Anonymous(), ArticleCriteria{})
	assertAppErrorCode(t, err, models.CodeInternal)
}
