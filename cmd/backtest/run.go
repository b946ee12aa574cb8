package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rxtech-lab/argo-fund/internal/backtest/engine"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one or more backtest request files (JSON or YAML)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "request",
				Aliases:  []string{"r"},
				Usage:    "Path to a request file, repeatable",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Render the per-instrument report table of every run",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Directory for result files. Defaults to the configured results folder",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log engine diagnostics at the configured level",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewNopLogger()
	if cmd.Bool("verbose") {
		if log, err = newLogger(cfg); err != nil {
			return err
		}

		defer func() { _ = log.Sync() }()
	}

	out := cmd.String("out")
	if out == "" {
		out = cfg.ResultsFolder
	}

	backtester := engine.NewBacktester(log)
	backtester.SetAlwaysReport(cmd.Bool("report"))

	if err := backtester.SetResultsFolder(out); err != nil {
		return err
	}

	for _, path := range cmd.StringSlice("request") {
		if err := backtester.LoadRequestFromFile(path); err != nil {
			return err
		}
	}

	results, err := backtester.Run(ctx, progressCallbacks(cmd.Root().ErrWriter))
	if err != nil {
		return err
	}

	return printResults(cmd.Root().Writer, results, cmd.Bool("report"))
}

// progressCallbacks draws a progress bar over the request batch.
func progressCallbacks(w io.Writer) engine.LifecycleCallbacks {
	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(total int) error {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Backtesting"),
			progressbar.OptionShowCount(),
		)

		return nil
	})

	onProcess := engine.OnProcessDataCallback(func(current int, _ int) error {
		return bar.Set(current)
	})

	onEnd := engine.OnBacktestEndCallback(func(_ error) {
		if bar != nil {
			_ = bar.Finish()
			_, _ = fmt.Fprintln(w)
		}
	})

	return engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnBacktestEnd:   &onEnd,
		OnRunStart:      nil,
		OnRunEnd:        nil,
		OnProcessData:   &onProcess,
	}
}

func printResults(w io.Writer, results []engine.RunResult, withReport bool) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return err
	}

	if !withReport {
		return nil
	}

	for _, result := range results {
		if result.Report == nil {
			continue
		}

		title := fmt.Sprintf("%s (%s)", result.Name, result.Strategy)
		if _, err := fmt.Fprintf(w, "\n%s %s\n%s\n", TitleStyle.Render(title), HelpStyle.Render(result.ID), report.RenderTable(result.Report.Summary)); err != nil {
			return err
		}
	}

	return nil
}
