package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rxtech-lab/argo-fund/internal/config"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "argo-fund",
		Usage:   "Fund investment backtests and daily simulations",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file. Defaults to .env in the working directory when present",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
			schemaCommand(),
			versionCommand(),
		},
	}
}

// loadConfig loads the process configuration and applies global flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("env-file"), cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if level := strings.TrimSpace(cmd.String("log-level")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the core version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

			return err
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
