package service

import (
	"context"
	"testing"

	"conduit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersByName(users ...*models.User) *userRepoStub {
	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		for _, u := range users {
			if u.Username == username {
				return u, nil
			}
		}
		return nil, nil
	}
	return repo
}

func TestProfileService_GetProfile(t *testing.T) {
	t.Parallel()

	jake := &models.User{ID: 1, Username: "jake"}
	follows := noopFollowRepo()
	lookups := 0
	follows.isFollowingFn = func(_ context.Context, followerID, followingID uint) (bool, error) {
		lookups++
		return followerID == 2 && followingID == 1, nil
	}
	svc := NewProfileService(usersByName(jake), follows, nil)
	ctx := context.Background()

	profile, err := svc.GetProfile(ctx, models.Anonymous(), "jake")
	require.NoError(t, err)
	assert.False(t, profile.Following)
	assert.Zero(t, lookups)

	profile, err = svc.GetProfile(ctx, models.AuthenticatedAs(2), "jake")
	require.NoError(t, err)
	assert.True(t, profile.Following)

	profile, err = svc.GetProfile(ctx, models.AuthenticatedAs(1), "jake")
	require.NoError(t, err)
	assert.False(t, profile.Following)
	assert.Equal(t, 1, lookups)

	_, err = svc.GetProfile(ctx, models.Anonymous(), "ghost")
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestProfileService_Follow(t *testing.T) {
	t.Parallel()

	jake := &models.User{ID: 1, Username: "jake"}
	follows := noopFollowRepo()
	calls := 0
	follows.followFn = func(_ context.Context, followerID, followingID uint) (bool, error) {
		calls++
		return calls == 1, nil
	}
	events := &eventRecorder{}
	svc := NewProfileService(usersByName(jake), follows, events)
	ctx := context.Background()

	profile, err := svc.Follow(ctx, 2, "jake")
	require.NoError(t, err)
	assert.True(t, profile.Following)

	profile, err = svc.Follow(ctx, 2, "jake")
	require.NoError(t, err)
	assert.True(t, profile.Following)

	assert.Equal(t, [][2]uint{{2, 1}}, events.followed)

	_, err = svc.Follow(ctx, 1, "jake")
	assertValidationError(t, err)

	_, err = svc.Follow(ctx, 2, "ghost")
	assertAppErrorCode(t, err, models.CodeNotFound)
	assert.Equal(t, 2, calls)
}

func TestProfileService_Unfollow(t *testing.T) {
	t.Parallel()

	jake := &models.User{ID: 1, Username: "jake"}
	svc := NewProfileService(usersByName(jake), noopFollowRepo(), nil)

	profile, err := svc.Unfollow(context.Background(), 2, "jake")
	require.NoError(t, err)
	assert.False(t, profile.Following)
	assert.Equal(t, "jake", profile.User.Username)
}
