package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/linksphere/internal/buildinfo"
	"github.com/dmitrijs2005/linksphere/internal/client/cli"
	"github.com/dmitrijs2005/linksphere/internal/client/config"
	"github.com/dmitrijs2005/linksphere/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer z.Sync()
	}

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
