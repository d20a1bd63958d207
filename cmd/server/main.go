package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/papertrader/internal/buildinfo"
	"github.com/dmitrijs2005/papertrader/internal/hashchain"
	"github.com/dmitrijs2005/papertrader/internal/logging"
	"github.com/dmitrijs2005/papertrader/internal/server"
	"github.com/dmitrijs2005/papertrader/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	app, err := server.NewApp(ctx, cfg, logger, hashchain.DefaultPolicy())
	if err != nil {
		logger.Error(ctx, "init failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}
