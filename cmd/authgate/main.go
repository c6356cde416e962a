package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"authgate/cmd/authgate/serve"
	"authgate/cmd/authgate/user"
)

func main() {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "authgate",
		Usage: "Stateless token authentication service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				EnvVars: []string{"AUTHGATE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			user.Cmd(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
