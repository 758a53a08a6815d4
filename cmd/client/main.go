package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/medreminder/internal/buildinfo"
	"github.com/dmitrijs2005/medreminder/internal/client/cli"
	"github.com/dmitrijs2005/medreminder/internal/client/config"
	"github.com/dmitrijs2005/medreminder/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
