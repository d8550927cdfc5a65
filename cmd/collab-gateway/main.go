package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/auth/jwt"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/document"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/gateway"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/gateway/bridge"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/room"
	"github.com/Quyenld9699/realtime-multi-user-edit/internal/session"
	"github.com/Quyenld9699/realtime-multi-user-edit/pkg/logger"
	"github.com/Quyenld9699/realtime-multi-user-edit/pkg/metrics"
	"github.com/Quyenld9699/realtime-multi-user-edit/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of collab-gateway",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("collab-gateway version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "collab-gateway",
		Short: "Realtime collaboration gateway",
		Long:  `collab-gateway serves websocket channels for multi-user document editing`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "collab-gateway.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	// Load configuration
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	// Initialize logger
	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting collab-gateway",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize document store
	docs, err := document.NewStore(zapLogger, &cfg.Storage)
	if err != nil {
		zapLogger.Fatal("failed to initialize document store",
			zap.String("type", cfg.Storage.Type),
			zap.Error(err))
	}
	defer func() {
		_ = docs.Close()
	}()

	// Initialize event bridge
	br, err := bridge.NewBridge(zapLogger, &cfg.Bridge)
	if err != nil {
		zapLogger.Fatal("failed to initialize event bridge",
			zap.String("type", cfg.Bridge.Type),
			zap.Error(err))
	}
	defer func() {
		_ = br.Close()
	}()

	// Initialize credential verification
	jwtSvc, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("failed to initialize jwt service", zap.Error(err))
	}

	m := metrics.New(cfg.Metrics)
	sessions := session.NewMemoryStoreWithQueueSize(zapLogger, cfg.Realtime.SendQueueSize)
	rooms := room.NewManager(zapLogger)

	gw := gateway.NewGateway(zapLogger, sessions, rooms, docs, br, m)
	if err := gw.Start(ctx); err != nil {
		zapLogger.Fatal("failed to start gateway", zap.Error(err))
	}

	wsServer := gateway.NewServer(zapLogger, gw, jwtSvc, sessions, cfg.Realtime, m)

	// Initialize router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Metrics.Enabled {
		router.Use(m.Middleware())
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
	})
	router.GET("/ws", wsServer.HandleWS)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("listening", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("failed to shutdown server", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
