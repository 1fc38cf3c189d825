package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/validoc/validoc/pkg/log"
)

func main() {
	app := &cli.Command{
		Name:                  "validoc",
		Usage:                 "Manage document validation workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			NewListCommand(),
			NewImportCommand(),
			NewValidateCommand(),
		},
	}

	log.Setup(os.Getenv("LOG_LEVEL"))

	if err := app.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
