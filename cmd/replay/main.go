// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/app"
	"github.com/relabs-tech/indoor_localizer/internal/config"
)

func main() {
	configPath := flag.String("config", "./localizer_config.txt", "path to configuration file")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting indoor-localizer replay")

	reports, err := app.RunReplay(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("fatal", zap.Error(err))
	}
	if n := len(reports); n > 0 {
		fmt.Println(app.FormatReport(reports[n-1]))
	}
}
