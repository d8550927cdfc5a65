package bridge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"
)

// Type represents the type of event bridge
type Type string

const (
	// TypeNone disables cross-instance fan-out
	TypeNone Type = "none"
	// TypeRedis relays events over Redis pub/sub
	TypeRedis Type = "redis"
)

// NewBridge creates a new event bridge based on configuration
func NewBridge(logger *zap.Logger, cfg *config.BridgeConfig) (Bridge, error) {
	logger.Info("Initializing event bridge", zap.String("type", cfg.Type))
	switch Type(cfg.Type) {
	case TypeNone, "":
		return NewNoopBridge(), nil
	case TypeRedis:
		return NewRedisBridge(logger, cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported bridge type: %s", cfg.Type)
	}
}
