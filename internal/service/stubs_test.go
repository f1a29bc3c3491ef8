package service

import (
	"context"
	"errors"
	"testing"

	"conduit/internal/models"
	"conduit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// articleRepoStub is a stub for repository.ArticleRepository.
type articleRepoStub struct {
	createFn     func(context.Context, *models.Article) error
	getBySlugFn  func(context.Context, string) (*models.Article, error)
	slugExistsFn func(context.Context, string) (bool, error)
	updateFn     func(context.Context, *models.Article) error
	deleteFn     func(context.Context, uint) error
	listFn       func(context.Context, repository.ArticleFilter) ([]*models.Article, int64, error)
}

func (s *articleRepoStub) Create(ctx context.Context, article *models.Article) error {
	return s.createFn(ctx, article)
}
func (s *articleRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *articleRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}
func (s *articleRepoStub) Update(ctx context.Context, article *models.Article) error {
	return s.updateFn(ctx, article)
}
func (s *articleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *articleRepoStub) List(ctx context.Context, filter repository.ArticleFilter) ([]*models.Article, int64, error) {
	return s.listFn(ctx, filter)
}

func noopArticleRepo() *articleRepoStub {
	return &articleRepoStub{
		createFn: func(_ context.Context, _ *models.Article) error { return nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Article, error) {
			return nil, models.NewNotFoundError("Article", slug)
		},
		slugExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		updateFn:     func(_ context.Context, _ *models.Article) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ repository.ArticleFilter) ([]*models.Article, int64, error) {
			return []*models.Article{}, 0, nil
		},
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, uint, repository.UserUpdate) (*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, id uint, changes repository.UserUpdate) (*models.User, error) {
	return s.updateFn(ctx, id, changes)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, id uint, _ repository.UserUpdate) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
	}
}

// favoriteRepoStub is a stub for repository.FavoriteRepository.
type favoriteRepoStub struct {
	addFn            func(context.Context, uint, uint) (bool, error)
	removeFn         func(context.Context, uint, uint) (bool, error)
	favoritedAmongFn func(context.Context, uint, []uint) (map[uint]bool, error)
}

func (s *favoriteRepoStub) Add(ctx context.Context, userID, articleID uint) (bool, error) {
	return s.addFn(ctx, userID, articleID)
}
func (s *favoriteRepoStub) Remove(ctx context.Context, userID, articleID uint) (bool, error) {
	return s.removeFn(ctx, userID, articleID)
}
func (s *favoriteRepoStub) FavoritedAmong(ctx context.Context, userID uint, articleIDs []uint) (map[uint]bool, error) {
	return s.favoritedAmongFn(ctx, userID, articleIDs)
}

func noopFavoriteRepo() *favoriteRepoStub {
	return &favoriteRepoStub{
		addFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		removeFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		favoritedAmongFn: func(_ context.Context, _ uint, _ []uint) (map[uint]bool, error) {
			return map[uint]bool{}, nil
		},
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn         func(context.Context, uint, uint) (bool, error)
	unfollowFn       func(context.Context, uint, uint) (bool, error)
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	followingAmongFn func(context.Context, uint, []uint) (map[uint]bool, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}
func (s *followRepoStub) FollowingAmong(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error) {
	return s.followingAmongFn(ctx, followerID, userIDs)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unfollowFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followingAmongFn: func(_ context.Context, _ uint, _ []uint) (map[uint]bool, error) {
			return map[uint]bool{}, nil
		},
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	listFn   func(context.Context) ([]string, error)
	upsertFn func(context.Context, []string) error
}

func (s *tagRepoStub) List(ctx context.Context) ([]string, error) {
	return s.listFn(ctx)
}
func (s *tagRepoStub) Upsert(ctx context.Context, names []string) error {
	return s.upsertFn(ctx, names)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		listFn:   func(_ context.Context) ([]string, error) { return []string{}, nil },
		upsertFn: func(_ context.Context, _ []string) error { return nil },
	}
}

// eventRecorder is an EventSink that remembers what it was told.
type eventRecorder struct {
	published []string
	favorited []uint
	followed  [][2]uint
}

func (r *eventRecorder) ArticlePublished(_ context.Context, article *models.Article) {
	r.published = append(r.published, article.Slug)
}
func (r *eventRecorder) ArticleFavorited(_ context.Context, article *models.Article, byUserID uint) {
	r.favorited = append(r.favorited, byUserID)
}
func (r *eventRecorder) ProfileFollowed(_ context.Context, followerID, followingID uint) {
	r.followed = append(r.followed, [2]uint{followerID, followingID})
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func strPtr(s string) *string {
	return &s
}
