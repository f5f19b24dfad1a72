package api

// API limits and constants.
const (
	// MaxAvatarUploadSize is the maximum allowed size for avatar uploads (2 MB).
	MaxAvatarUploadSize = 2 << 20
)

// Cache-Control header values.
const (
	CacheOneDayPrivate = "private, max-age=86400"
	CacheNoStore       = "no-cache"
)
