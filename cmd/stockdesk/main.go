package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"stockdesk/internal/config"
)

const appName = "stockdesk"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err)
	}

	app := newApp(&cfg, logger)
	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("command failed")
	}
}

func newApp(cfg *config.Config, logger *log.Logger) *cli.App {
	return &cli.App{
		Name:  appName,
		Usage: "inventory console for the products/suppliers/orders API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "base URL of the inventory API",
				Value:       cfg.APIBaseURL,
				Destination: &cfg.APIBaseURL,
			},
		},
		Commands: []*cli.Command{
			serveCommand(cfg, logger),
			listCommand(cfg, logger),
			dumpCommand(cfg, logger),
			mockAPICommand(cfg, logger),
		},
	}
}
