package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/papertrader/internal/buildinfo"
	"github.com/dmitrijs2005/papertrader/internal/client/cli"
	"github.com/dmitrijs2005/papertrader/internal/client/config"
	"github.com/dmitrijs2005/papertrader/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	app := cli.NewApp(cfg, logger)
	app.Run(ctx)

}
