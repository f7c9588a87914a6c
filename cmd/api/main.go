package main

import (
	"log"

	"sentimentiq-backend/internal/shared/config"
	"sentimentiq-backend/internal/shared/server"
	"sentimentiq-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	logBuf := telemetry.NewBuffer(cfg.LogBufferSize)
	r := server.NewRouter(cfg, logBuf)

	addr := server.Addr(cfg.Port)
	logBuf.Log("info", "server.starting", map[string]any{"addr": addr, "env": cfg.Env})

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
