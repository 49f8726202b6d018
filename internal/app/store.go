// Package app wires the storage backends shared by the binaries.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/db"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/internal/store/memstore"
	"github.com/agora-social/agora/pkg/config"
	"github.com/agora-social/agora/pkg/logging"
)

// OpenStore opens the configured store. The returned close function is
// always non-nil.
func OpenStore(cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.Database.Driver {
	case "memory":
		logging.GetLogger().Warn("Using in-memory store; data is lost on exit")
		return memstore.New(), func() error { return nil }, nil
	case "postgres":
		database, err := db.New(&cfg.Database, cfg.Logging.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		logging.GetLogger().Info("Database ready", zap.Bool("auto_migrate", cfg.Database.AutoMigrate))
		return db.NewRepository(database.DB), database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
