package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-fund/internal/backtest/engine"
	"github.com/rxtech-lab/argo-fund/internal/simulation"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"github.com/rxtech-lab/argo-fund/pkg/utils"
	"github.com/urfave/cli/v3"
)

func schemaFor(kind string) (string, error) {
	switch kind {
	case "", "backtest":
		return engine.NewBacktester(nil).GetRequestSchema()
	case "simulation":
		return utils.GetSchemaFromConfig(simulation.Config{})
	case "compare":
		return utils.GetSchemaFromConfig([]simulation.NamedConfig{})
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unknown schema kind: %s", kind)
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of a backtest request or a simulation config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write the schema to this file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "kind",
				Value: "backtest",
				Usage: "One of backtest, simulation or compare",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			schema, err := schemaFor(cmd.String("kind"))
			if err != nil {
				return err
			}

			out := cmd.String("out")
			if out == "" {
				_, err = fmt.Fprintln(cmd.Root().Writer, schema)

				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return fmt.Errorf("failed to create schema directory: %w", err)
			}

			if err := os.WriteFile(out, []byte(schema), 0644); err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}

			return nil
		},
	}
}
