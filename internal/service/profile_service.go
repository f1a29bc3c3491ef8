package service

import (
	"context"
	"log/slog"

	"conduit/internal/models"
	"conduit/internal/observability"
	"conduit/internal/repository"
)

type ProfileService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	events  EventSink
}

func NewProfileService(users repository.UserRepository, follows repository.FollowRepository, events EventSink) *ProfileService {
	return &ProfileService{users: users, follows: follows, events: eventsOrNoop(events)}
}

// GetProfile returns the user with the given username. Following is only
// looked up for an authenticated viewer.
func (s *ProfileService) GetProfile(ctx context.Context, viewer models.Viewer, username string) (*Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	if viewer.Authenticated && !viewer.Is(user.ID) {
		profile.Following, err = s.follows.IsFollowing(ctx, viewer.UserID, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// Follow makes followerID follow username. Following twice is a no-op.
func (s *ProfileService) Follow(ctx context.Context, followerID uint, username string) (*Profile, error) {
	target, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	changed, err := s.follows.Follow(ctx, followerID, target.ID)
	if err != nil {
		return nil, err
	}
	observability.RecordToggle("follow", changed)
	if changed {
		slog.InfoContext(ctx, "profile followed", "follower_id", followerID, "following_id", target.ID)
		s.events.ProfileFollowed(ctx, followerID, target.ID)
	}

	return &Profile{User: target, Following: true}, nil
}

// Unfollow removes the follow edge if present.
func (s *ProfileService) Unfollow(ctx context.Context, followerID uint, username string) (*Profile, error) {
	target, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, models.NewValidationError("You cannot unfollow yourself")
	}

	changed, err := s.follows.Unfollow(ctx, followerID, target.ID)
	if err != nil {
		return nil, err
	}
	observability.RecordToggle("unfollow", changed)

	return &Profile{User: target, Following: false}, nil
}

func (s *ProfileService) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("Profile", username)
	}
	return user, nil
}
