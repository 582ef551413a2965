package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gaggimate-dashboard/internal/adapters/input/http"
	"gaggimate-dashboard/internal/adapters/output/homeassistant"
	"gaggimate-dashboard/internal/adapters/output/memstore"
	"gaggimate-dashboard/internal/adapters/output/persistence"
	"gaggimate-dashboard/internal/config"
	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/domain/registry"
	"gaggimate-dashboard/internal/domain/service"

	"github.com/carlmjohnson/versioninfo"
	"github.com/go-logr/zapr"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		// settings are unknown yet, so report through a default logger
		bootLog := zap.Must(newZapLogger(zapcore.InfoLevel))
		bootLog.Error("config errors", zap.Error(err))
		bootLog.Sync()
		os.Exit(1)
	}

	zapLog := zap.Must(newZapLogger(cfg.LogLevel))
	defer zapLog.Sync()
	logger := zapr.NewLogger(zapLog)

	logger.Info("starting GaggiMate dashboard", "version", versioninfo.Short(), "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence
	configRepo := persistence.NewFileConfigRepository(cfg.CardConfig)
	cardCfg, err := configRepo.Get(ctx)
	if err != nil {
		logger.Error(err, "failed to load card config, using defaults", "path", cfg.CardConfig)
		cardCfg = model.StubConfig()
	}

	// HA Client
	haClient := homeassistant.NewClient(logger)
	if cfg.HassURL != "" && cfg.HassToken != "" {
		haClient.Configure(cfg.HassURL, cfg.HassToken)
	} else {
		logger.Info("hass_url or hass_token not set, the card will ask for configuration")
	}

	store, err := memstore.New()
	if err != nil {
		logger.Error(err, "failed to create state store")
		os.Exit(1)
	}

	cards := registry.New()
	if err := cards.Register(service.CardInfo()); err != nil {
		logger.Error(err, "failed to register card")
		os.Exit(1)
	}

	cardService := service.NewCardService(haClient, store, cardCfg, logger)
	if err := cardService.SetRefreshSchedule(cfg.RefreshSchedule); err != nil {
		logger.Error(err, "invalid refresh schedule")
		os.Exit(1)
	}
	editorService := service.NewEditorService(haClient, store, configRepo, cardService, cfg.Brand, logger)

	if haClient.IsConfigured() {
		go haClient.Follow(ctx, store, time.Duration(cfg.FeedRetrySecs)*time.Second)
	}
	roles := cardService.Connect(ctx)
	logger.Info("card connected", "resolved", !roles.Empty())
	go cardService.Run(ctx)

	httpServer := http.NewServer(cardService, editorService, cards, logger, store, cardService)
	if err := httpServer.ListenAndServe(ctx, cfg.Listen); err != nil {
		logger.Error(err, "http server error")
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newZapLogger(level zapcore.Level) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
