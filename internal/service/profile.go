package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/novelreads/novelreads-server/internal/auth"
	"github.com/novelreads/novelreads-server/internal/domain"
	domainerrors "github.com/novelreads/novelreads-server/internal/errors"
	"github.com/novelreads/novelreads-server/internal/reading"
	"github.com/novelreads/novelreads-server/internal/storage"
	"github.com/novelreads/novelreads-server/internal/store"
)

// MaxBioLength is the maximum number of characters allowed in a bio.
const MaxBioLength = 160

// MaxAvatarSize is the maximum avatar image size in bytes (2MB).
const MaxAvatarSize = 2 * 1024 * 1024

// userDocumentCollections are the generic document collections cleaned up
// when an account is deleted.
var userDocumentCollections = []string{"notes", "highlights", "preferences"}

// ProfileService provides user profile management and account deletion.
type ProfileService struct {
	store    *store.Store
	avatars  *storage.Blobs
	trackers *reading.Registry
	logger   *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(
	store *store.Store,
	avatars *storage.Blobs,
	trackers *reading.Registry,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		store:    store,
		avatars:  avatars,
		trackers: trackers,
		logger:   logger,
	}
}

// ProfileView is the profile as the app renders it: identity, avatar,
// and the reading goal summary for the header card. Sequence lets the
// client discard a slow stale response that arrives after a newer one.
type ProfileView struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	AvatarBlurHash string `json:"avatar_blurhash,omitempty"`
	Sequence       uint64 `json:"sequence"`

	Goal *GoalSummary `json:"goal,omitempty"`
}

// GoalSummary is the reading goal line shown on the profile.
type GoalSummary struct {
	Target    int    `json:"target"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
	SetAt     string `json:"set_at"`
}

// GetProfile returns a user's profile view, creating a default profile
// record if none exists.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	profile, err := s.getOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		UserID:         user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Bio:            profile.Bio,
		AvatarURL:      profile.AvatarPath,
		AvatarBlurHash: profile.AvatarBlurHash,
		Sequence:       profile.Sequence,
	}

	tracker, err := s.trackers.Acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("acquire reading tracker: %w", err)
	}
	if goal, completed, percent := tracker.GoalProgress(); goal != nil {
		view.Goal = &GoalSummary{
			Target:    goal.Target,
			Completed: completed,
			Percent:   percent,
			SetAt:     goal.SetAt.Format("2006-01-02"),
		}
	}

	return view, nil
}

// UpdateProfileRequest contains optional fields to update.
type UpdateProfileRequest struct {
	Username    *string
	Bio         *string
	NewPassword *string
}

// UpdateProfile applies partial profile changes.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*ProfileView, error) {
	profile, err := s.getOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Bio != nil {
		bio := *req.Bio
		if len(bio) > MaxBioLength {
			return nil, domainerrors.Validationf("bio must be %d characters or less", MaxBioLength)
		}
		profile.Bio = bio
	}

	if req.Username != nil || req.NewPassword != nil {
		if err := s.updateUserDetails(ctx, userID, req); err != nil {
			return nil, err
		}
	}

	profile.Touch()
	if err := s.store.Profiles.Update(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Profile updated", "user_id", userID)
	}

	return s.GetProfile(ctx, userID)
}

// updateUserDetails handles updating user fields (username, password).
func (s *ProfileService) updateUserDetails(ctx context.Context, userID string, req UpdateProfileRequest) error {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if req.Username != nil {
		if *req.Username == "" {
			return domainerrors.Validation("username cannot be empty")
		}
		user.Username = *req.Username
	}

	if req.NewPassword != nil {
		if len(*req.NewPassword) < 8 {
			return domainerrors.Validation("new password must be at least 8 characters")
		}
		newHash, err := auth.HashPassword(*req.NewPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = newHash
		if s.logger != nil {
			s.logger.Info("Password changed", "user_id", userID)
		}
	}

	user.Touch()
	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// UploadAvatar stores an avatar image, computes its BlurHash placeholder,
// and updates the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, imageData []byte) (*ProfileView, error) {
	if len(imageData) == 0 {
		return nil, domainerrors.Validation("image data cannot be empty")
	}
	if len(imageData) > MaxAvatarSize {
		return nil, domainerrors.Validationf("image too large, max %d bytes", MaxAvatarSize)
	}

	hash, err := storage.ComputeBlurHash(imageData)
	if err != nil {
		return nil, domainerrors.Validation("image format not supported").WithCause(err)
	}

	url, err := s.avatars.Save(userID, imageData)
	if err != nil {
		return nil, fmt.Errorf("save avatar image: %w", err)
	}

	profile, err := s.getOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.AvatarPath = url
	profile.AvatarBlurHash = hash
	profile.Touch()

	if err := s.store.Profiles.Update(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Avatar uploaded", "user_id", userID)
	}

	return s.GetProfile(ctx, userID)
}

// DeleteAccount removes the user and everything they own: sessions,
// profile, avatar, documents, and reading state. The reading tracker is
// released first so its final flush cannot resurrect the state blob.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.trackers.Release(ctx, userID); err != nil {
		return fmt.Errorf("release reading tracker: %w", err)
	}

	if err := s.store.DeleteAllUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if err := s.store.DeleteDocumentsByOwner(ctx, userID, userDocumentCollections...); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	if err := s.store.DeleteReadingState(ctx, userID); err != nil {
		return fmt.Errorf("delete reading state: %w", err)
	}
	if err := s.avatars.Delete(userID); err != nil {
		// Orphaned file, not worth failing the deletion over.
		if s.logger != nil {
			s.logger.Warn("Failed to delete avatar", "user_id", userID, "error", err)
		}
	}
	if err := s.store.Profiles.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if err := s.store.Users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Account deleted", "user_id", userID, "email", user.Email)
	}
	return nil
}

// getOrCreateProfile returns a user's profile, creating a default if none
// exists yet.
func (s *ProfileService) getOrCreateProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.store.Profiles.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile = domain.NewProfile(userID)
	if err := s.store.Profiles.Create(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("create default profile: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Created default profile", "user_id", userID)
	}
	return profile, nil
}
