package mocks

//go:generate mockgen -destination=./mock_runner.go -package=mocks github.com/rxtech-lab/argo-fund/internal/backtest/engine Runner
