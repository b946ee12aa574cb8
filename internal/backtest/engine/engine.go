package engine

import (
	"context"

	"github.com/rxtech-lab/argo-fund/internal/strategy"
)

// Lifecycle callback types for backtest phases.
// All callbacks with an error return can abort execution by returning an error.

// OnBacktestStartCallback is called once before the first request runs.
type OnBacktestStartCallback func(totalRequests int) error

// OnBacktestEndCallback is called when the whole batch completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnRunStartCallback is called before a request runs.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, requestIndex int, requestName string, strategyName string) error

// OnRunEndCallback is called after a request ran and its results were written.
// resultPath is empty when no results folder is set.
type OnRunEndCallback func(runID string, requestIndex int, requestName string, resultPath string)

// OnProcessDataCallback reports batch progress after every request.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
}

// Runner runs a single backtest request.
type Runner interface {
	Backtest(ctx context.Context, body strategy.BacktestBody) (RunResult, error)
}

// Engine runs a batch of backtest requests.
type Engine interface {
	Runner
	// SetResultsFolder sets the output directory for saving backtest results.
	// Each request writes <name>.result.json and <name>.stats.yaml into it.
	SetResultsFolder(folder string) error
	// LoadRequest queues a decoded request under name.
	LoadRequest(name string, body strategy.BacktestBody) error
	// LoadRequestFromFile queues a JSON or YAML request file. The file name without
	// its extension becomes the request name.
	LoadRequestFromFile(path string) error
	// Run runs every queued request in order.
	// The context can be used to cancel the batch between requests.
	Run(ctx context.Context, callbacks LifecycleCallbacks) ([]RunResult, error)
	// GetRequestSchema returns the JSON schema of a request file.
	GetRequestSchema() (string, error)
}
