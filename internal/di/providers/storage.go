package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/novelreads/novelreads-server/internal/config"
	"github.com/novelreads/novelreads-server/internal/logger"
	"github.com/novelreads/novelreads-server/internal/storage"
)

// ProvideAvatarStorage provides the avatar blob store.
func ProvideAvatarStorage(i do.Injector) (*storage.Blobs, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	avatars, err := storage.NewAvatars(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("avatar storage: %w", err)
	}

	log.Info("Avatar storage initialized")

	return avatars, nil
}
