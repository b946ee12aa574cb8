package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-fund/internal/api"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine"
	"github.com/rxtech-lab/argo-fund/internal/strategy"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Listen address. Overrides the configured address",
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if addr := cmd.String("address"); addr != "" {
		cfg.Address = addr
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(engine.NewBacktester(log), strategy.DefaultSignalRegistry(), log)

	log.Info("Starting server", zap.String("address", cfg.Address), zap.String("log_level", cfg.LogLevel))

	return server.Serve(ctx, cfg.Address, cfg.ShutdownTimeout)
}
