package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/novelreads/novelreads-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get my profile",
		Description: "Returns the authenticated user's profile with reading goal progress",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMyProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profile",
		Summary:     "Update my profile",
		Description: "Updates the authenticated user's profile settings",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadAvatar",
		Method:      http.MethodPost,
		Path:        "/api/v1/profile/avatar",
		Summary:     "Upload avatar image",
		Description: "Uploads a new avatar image for the authenticated user",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAccount",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profile",
		Summary:     "Delete account",
		Description: "Permanently deletes the authenticated user's account and all associated data",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAccount)
}

// === Request/Response Types ===

// GoalSummaryResponse contains reading goal progress for profile display.
type GoalSummaryResponse struct {
	Target    int    `json:"target" doc:"Books to finish"`
	Completed int    `json:"completed" doc:"Books finished since the goal was set"`
	Percent   int    `json:"percent" doc:"Progress percentage, clamped to 100"`
	SetAt     string `json:"set_at" doc:"Date the goal was set (YYYY-MM-DD)"`
}

// ProfileResponse contains profile data in API responses.
type ProfileResponse struct {
	UserID         string               `json:"user_id" doc:"User ID"`
	Username       string               `json:"username" doc:"Display name"`
	Email          string               `json:"email" doc:"User email"`
	Bio            string               `json:"bio,omitempty" doc:"Profile bio (max 160 chars)"`
	AvatarURL      string               `json:"avatar_url,omitempty" doc:"Avatar image URL"`
	AvatarBlurHash string               `json:"avatar_blurhash,omitempty" doc:"BlurHash placeholder for the avatar"`
	Sequence       uint64               `json:"sequence" doc:"Monotonic change counter; clients keep the highest seen"`
	Goal           *GoalSummaryResponse `json:"goal,omitempty" doc:"Active reading goal, if any"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// GetMyProfileInput contains parameters for reading the own profile.
type GetMyProfileInput struct {
	Authorization string `header:"Authorization"`
}

// UpdateProfileInput contains the update request.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Username    *string `json:"username,omitempty" maxLength:"40" doc:"New display name"`
		Bio         *string `json:"bio,omitempty" maxLength:"160" doc:"New profile bio"`
		NewPassword *string `json:"new_password,omitempty" minLength:"8" doc:"New password (min 8 chars)"`
	}
}

// UploadAvatarInput contains the avatar upload request.
type UploadAvatarInput struct {
	Authorization string `header:"Authorization"`
	ContentType   string `header:"Content-Type" doc:"Image content type"`
	RawBody       []byte
}

// DeleteAccountInput contains parameters for account deletion.
type DeleteAccountInput struct {
	Authorization string `header:"Authorization"`
}

// === Handlers ===

func (s *Server) handleGetMyProfile(ctx context.Context, input *GetMyProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileView(view)}, nil
}

func (s *Server) handleUpdateMyProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Profile.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Username:    input.Body.Username,
		Bio:         input.Body.Bio,
		NewPassword: input.Body.NewPassword,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileView(view)}, nil
}

func (s *Server) handleUploadAvatar(ctx context.Context, input *UploadAvatarInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if len(input.RawBody) > MaxAvatarUploadSize {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "Avatar image too large")
	}

	view, err := s.services.Profile.UploadAvatar(ctx, userID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileView(view)}, nil
}

func (s *Server) handleDeleteAccount(ctx context.Context, input *DeleteAccountInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Profile.DeleteAccount(ctx, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Account deleted"}}, nil
}

// === Helpers ===

func mapProfileView(view *service.ProfileView) ProfileResponse {
	resp := ProfileResponse{
		UserID:         view.UserID,
		Username:       view.Username,
		Email:          view.Email,
		Bio:            view.Bio,
		AvatarURL:      view.AvatarURL,
		AvatarBlurHash: view.AvatarBlurHash,
		Sequence:       view.Sequence,
	}
	if view.Goal != nil {
		resp.Goal = &GoalSummaryResponse{
			Target:    view.Goal.Target,
			Completed: view.Goal.Completed,
			Percent:   view.Goal.Percent,
			SetAt:     view.Goal.SetAt,
		}
	}
	return resp
}
