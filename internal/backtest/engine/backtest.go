package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/report"
	"github.com/rxtech-lab/argo-fund/internal/strategy"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"github.com/rxtech-lab/argo-fund/pkg/utils"
	"go.uber.org/zap"
)

// ReportBody wraps the per-instrument report rows.
type ReportBody struct {
	Summary []report.Row `json:"summary" yaml:"summary"`
}

// RunResult is the outcome of one request.
type RunResult struct {
	ID       string `json:"run_id" yaml:"run_id"`
	Name     string `json:"-" yaml:"-"`
	Strategy string `json:"strategy" yaml:"strategy"`

	types.StrategyResult `yaml:",inline"`

	// Report is attached when params.output is "summary".
	Report *ReportBody `json:"report,omitempty" yaml:"report,omitempty"`
}

type queuedRequest struct {
	name string
	body strategy.BacktestBody
}

// Backtester runs policy backtest requests.
type Backtester struct {
	requests      []queuedRequest
	resultsFolder string
	alwaysReport  bool
	log           *logger.Logger
	now           func() time.Time
}

// NewBacktester returns an empty backtester. A nil logger discards output.
func NewBacktester(log *logger.Logger) *Backtester {
	return &Backtester{
		requests:      nil,
		resultsFolder: "",
		alwaysReport:  false,
		log:           logger.OrNop(log),
		now:           time.Now,
	}
}

// SetResultsFolder implements Engine.
func (b *Backtester) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.log.Debug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

// SetAlwaysReport attaches the report to every result, whatever params.output says.
func (b *Backtester) SetAlwaysReport(always bool) {
	b.alwaysReport = always
}

// LoadRequest implements Engine.
func (b *Backtester) LoadRequest(name string, body strategy.BacktestBody) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("request_%d", len(b.requests))
	}

	b.requests = append(b.requests, queuedRequest{name: name, body: body})
	b.log.Debug("Request loaded",
		zap.String("name", name),
		zap.Int("total_requests", len(b.requests)),
	)

	return nil
}

// LoadRequestFromFile implements Engine.
func (b *Backtester) LoadRequestFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeReadFailed, err, "failed to read request %s", path)
	}

	body, err := DecodeRequest(data, filepath.Ext(path))
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return b.LoadRequest(name, body)
}

// DecodeRequest decodes a request file. YAML (.yaml, .yml) is converted to
// JSON first so that params reach the policy decoders unchanged, in key order
// and with dates as written.
func DecodeRequest(data []byte, ext string) (strategy.BacktestBody, error) {
	var body strategy.BacktestBody

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		converted, err := yamlToJSON(data)
		if err != nil {
			return body, errors.Wrap(errors.ErrCodeInvalidRequestBody, "invalid YAML request", err)
		}

		data = converted
	}

	if err := json.Unmarshal(data, &body); err != nil {
		return body, errors.Wrap(errors.ErrCodeInvalidRequestBody, "invalid JSON request", err)
	}

	return body, nil
}

// Backtest implements Runner. It builds, runs and optionally reports a single request.
func (b *Backtester) Backtest(ctx context.Context, body strategy.BacktestBody) (RunResult, error) {
	return b.backtest(ctx, uuid.NewString(), "", body)
}

func (b *Backtester) backtest(ctx context.Context, runID, name string, body strategy.BacktestBody) (RunResult, error) {
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	req, err := body.Build()
	if err != nil {
		return RunResult{}, err
	}

	log := &logger.Logger{Logger: b.log.With(zap.String("run_id", runID))}

	result, err := strategy.Run(req, log)
	if err != nil {
		return RunResult{}, err
	}

	out := RunResult{
		ID:             runID,
		Name:           name,
		Strategy:       strings.TrimSpace(body.Strategy),
		StrategyResult: result,
	}

	if b.alwaysReport || body.Output() == strategy.OutputSummary {
		src := report.Source{
			Series: req.Series,
			Fees:   req.Fees,
			End:    body.End,
			Result: result,
		}

		if body.Calendar != nil {
			src.OpenDates = body.Calendar.OpenDates
		}

		out.Report = &ReportBody{Summary: report.Build(src)}
	}

	log.Info("Backtest finished",
		zap.String("strategy", out.Strategy),
		zap.Int("actions", len(result.Actions)),
		zap.Float64("final_equity", result.Summary.FinalEquity),
	)

	return out, nil
}

// Run implements Engine.
func (b *Backtester) Run(ctx context.Context, callbacks LifecycleCallbacks) (results []RunResult, err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() { (*callbacks.OnBacktestEnd)(err) }()
	}

	if len(b.requests) == 0 {
		b.log.Error("No requests loaded")

		return nil, errors.New(errors.ErrCodeMissingParameter, "no requests loaded")
	}

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(b.requests)); err != nil {
			return nil, err
		}
	}

	if b.resultsFolder != "" {
		if err := os.MkdirAll(b.resultsFolder, 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeWriteFailed, "failed to create results folder", err)
		}
	}

	results = make([]RunResult, 0, len(b.requests))

	for i, queued := range b.requests {
		runID := uuid.NewString()

		if callbacks.OnRunStart != nil {
			if err := (*callbacks.OnRunStart)(runID, i, queued.name, queued.body.Strategy); err != nil {
				return results, err
			}
		}

		result, err := b.backtest(ctx, runID, queued.name, queued.body)
		if err != nil {
			return results, fmt.Errorf("request %s: %w", queued.name, err)
		}

		resultPath, err := b.writeResults(result)
		if err != nil {
			return results, err
		}

		results = append(results, result)

		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(runID, i, queued.name, resultPath)
		}

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, len(b.requests)); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

// GetRequestSchema implements Engine.
func (b *Backtester) GetRequestSchema() (string, error) {
	schema, err := utils.GetSchemaFromConfig(strategy.BacktestBody{})
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

func (b *Backtester) writeResults(result RunResult) (string, error) {
	if b.resultsFolder == "" {
		return "", nil
	}

	resultPath := filepath.Join(b.resultsFolder, result.Name+".result.json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to marshal result", err)
	}

	if err := os.WriteFile(resultPath, data, 0644); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to write result", err)
	}

	stats := NewRunStats(result, resultPath, b.now())
	if err := WriteRunStats(filepath.Join(b.resultsFolder, result.Name+".stats.yaml"), stats); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to write stats", err)
	}

	return resultPath, nil
}
