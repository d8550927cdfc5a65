package config

import (
	"os"
	"regexp"
	"time"

	"github.com/Quyenld9699/realtime-multi-user-edit/pkg/helper"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type (
	// GatewayConfig represents the collaboration gateway configuration
	GatewayConfig struct {
		Port     int           `yaml:"port"`
		Logger   LoggerConfig  `yaml:"logger"`
		Storage  StorageConfig `yaml:"storage"`
		JWT      JWTConfig     `yaml:"jwt"`
		Bridge   BridgeConfig  `yaml:"bridge"`
		Metrics  MetricsConfig `yaml:"metrics"`
		Realtime RealtimeConfig `yaml:"realtime"`
	}

	// JWTConfig represents the credential verification configuration
	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
	}

	// BridgeConfig represents the cross-instance event bridge configuration
	BridgeConfig struct {
		Type  string            `yaml:"type"` // "none" or "redis"
		Redis BridgeRedisConfig `yaml:"redis"`
	}

	// BridgeRedisConfig represents the Redis configuration for the event bridge
	BridgeRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Topic    string `yaml:"topic"`
	}

	// MetricsConfig represents the metrics configuration
	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// RealtimeConfig tunes the websocket transport
	RealtimeConfig struct {
		WriteWait      time.Duration `yaml:"write_wait"`
		PongWait       time.Duration `yaml:"pong_wait"`
		MaxMessageSize int64         `yaml:"max_message_size"`
		SendQueueSize  int           `yaml:"send_queue_size"`
	}
)

// LoadConfig loads configuration from a YAML file with environment variable support
func LoadConfig(filename string) (*GatewayConfig, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	// Resolve environment variables
	data = resolveEnv(data)
	var cfg GatewayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	cfg.setDefaults()
	return &cfg, cfgPath, nil
}

func (c *GatewayConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = 5370
	}
	if c.Bridge.Type == "" {
		c.Bridge.Type = "none"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "collab"
	}
	if c.Realtime.WriteWait <= 0 {
		c.Realtime.WriteWait = 10 * time.Second
	}
	if c.Realtime.PongWait <= 0 {
		c.Realtime.PongWait = 60 * time.Second
	}
	if c.Realtime.MaxMessageSize <= 0 {
		c.Realtime.MaxMessageSize = 1 << 20
	}
	if c.Realtime.SendQueueSize <= 0 {
		c.Realtime.SendQueueSize = 256
	}
}

// resolveEnv replaces environment variable placeholders in YAML content
func resolveEnv(content []byte) []byte {
	regex := regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

	return regex.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := regex.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
