package services

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"github.com/AnshRaj112/hostel-survival-kit/pkg/utils"
)

type UserService struct {
	base
	users store.UserStore
	cache *CacheService
	ttl   time.Duration
}

func profileKey(uid string) string {
	return CacheKey("profile", uid)
}

// Register creates or replaces the caller's profile. Any role other than
// "rep" registers a student.
func (s *UserService) Register(ctx context.Context, uid, displayName, role string) (*models.User, error) {
	if err := utils.ValidateDisplayName(displayName); err != nil {
		return nil, invalid("%s", err.Error())
	}

	u := &models.User{
		UID:         uid,
		DisplayName: utils.NormalizeDisplayName(displayName),
		Role:        models.ParseRole(role),
		CreatedAt:   s.now().UTC(),
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.users.UpsertUser(ctx, u); err != nil {
		return nil, storeFailure("upsert user", err)
	}

	if err := s.cache.Set(ctx, profileKey(uid), u, s.ttl); err != nil {
		s.log.WithError(err).Warn("profile cache write failed")
	}
	return u, nil
}

// Profile returns the caller's profile, reading through the cache.
func (s *UserService) Profile(ctx context.Context, uid string) (*models.User, error) {
	var cached models.User
	if ok, err := s.cache.Get(ctx, profileKey(uid), &cached); err != nil {
		s.log.WithError(err).Warn("profile cache read failed")
	} else if ok {
		return &cached, nil
	}

	u, err := s.users.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Profile not found. Please register first")
	}
	if err != nil {
		return nil, storeFailure("get user", err)
	}

	if err := s.cache.Set(ctx, profileKey(uid), u, s.ttl); err != nil {
		s.log.WithError(err).Warn("profile cache write failed")
	}
	return u, nil
}

// IsRep reports whether uid is a registered hostel rep. Unregistered users
// are not reps.
func (s *UserService) IsRep(ctx context.Context, uid string) (bool, error) {
	u, err := s.Profile(ctx, uid)
	if KindOf(err) == KindNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsRep(), nil
}

// DisplayNames resolves uids to display names, using "Anonymous" for
// anyone without a profile.
func (s *UserService) DisplayNames(ctx context.Context, uids []string) (map[string]string, error) {
	found, err := s.users.GetUsers(ctx, uids)
	if err != nil {
		return nil, storeFailure("get users", err)
	}
	out := make(map[string]string, len(uids))
	for _, uid := range uids {
		name := utils.DefaultDisplayName
		if u, ok := found[uid]; ok && u.DisplayName != "" {
			name = u.DisplayName
		}
		out[uid] = name
	}
	return out, nil
}
