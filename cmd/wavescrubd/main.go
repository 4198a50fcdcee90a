package main

import (
	"log"

	"github.com/wavescrub/wavescrub/internal/config"
	"github.com/wavescrub/wavescrub/internal/logger"
	"github.com/wavescrub/wavescrub/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slogger := logger.Setup(cfg)

	slogger.Info("Starting wavescrub server",
		"env", cfg.Env,
		"port", cfg.Port,
		"default_segments", cfg.DefaultSegments,
		"default_quality", cfg.DefaultQuality,
	)

	srv := server.New(cfg, slogger)

	if err := server.Run(srv); err != nil {
		slogger.Error("Failed to start server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}
