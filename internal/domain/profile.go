package domain

import "time"

// Profile contains user customization. Stored separately from User to keep
// auth concerns apart from the public-facing profile.
type Profile struct {
	UserID         string    `json:"user_id"`
	Bio            string    `json:"bio"` // Max 160 characters
	AvatarPath     string    `json:"avatar_path,omitempty"`
	AvatarBlurHash string    `json:"avatar_blurhash,omitempty"` // Placeholder shown while the avatar loads
	Sequence       uint64    `json:"sequence"`                  // Bumped on every change; clients keep the highest seen
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProfile creates a default profile for a user.
func NewProfile(userID string) *Profile {
	now := time.Now()
	return &Profile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the sequence and update timestamp. Responses built from an
// older sequence must never overwrite ones built from a newer sequence on
// the client.
func (p *Profile) Touch() {
	p.Sequence++
	p.UpdatedAt = time.Now()
}

// HasAvatar reports whether the user uploaded a profile image.
func (p *Profile) HasAvatar() bool {
	return p.AvatarPath != ""
}
