package document

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"
)

// NewStore creates a new document store based on configuration
func NewStore(logger *zap.Logger, cfg *config.StorageConfig) (Store, error) {
	logger.Info("Initializing document store", zap.String("type", cfg.Type))
	switch cfg.Type {
	case "db":
		return NewDBStore(logger, &cfg.Database)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported document store type: %s", cfg.Type)
	}
}
