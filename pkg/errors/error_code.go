package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown  ErrorCode = 1
	ErrCodeInternal ErrorCode = 2

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidType          ErrorCode = 103
	ErrCodeInvalidPeriod        ErrorCode = 104
	ErrCodeInvalidThreshold     ErrorCode = 105
	ErrCodeInvalidDate          ErrorCode = 106
	ErrCodeInvalidVersion       ErrorCode = 107
	ErrCodeInvalidRequestBody   ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound   ErrorCode = 200
	ErrCodeSeriesNotFound ErrorCode = 201
	ErrCodeEmptySeries    ErrorCode = 202
	ErrCodeReadFailed     ErrorCode = 203
	ErrCodeWriteFailed    ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound    ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeUnsupportedStrategy  ErrorCode = 400
	ErrCodeStrategyConfigError  ErrorCode = 401
	ErrCodeStrategyRuntimeError ErrorCode = 402
	ErrCodeSignalNotFound       ErrorCode = 403
	ErrCodeVersionMismatch      ErrorCode = 404

	// Simulation errors (600-699)
	ErrCodeSimulationConfigError ErrorCode = 600
	ErrCodeSimulationNoData      ErrorCode = 601

	// Report errors (700-799)
	ErrCodeReportFailed ErrorCode = 700
)

// Category groups error codes by their hundreds range.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryValidation Category = "validation"
	CategoryData       Category = "data"
	CategoryIndicator  Category = "indicator"
	CategoryStrategy   Category = "strategy"
	CategorySimulation Category = "simulation"
	CategoryReport     Category = "report"
)

// Category returns the category the code belongs to.
func (c ErrorCode) Category() Category {
	switch {
	case c >= 100 && c < 200:
		return CategoryValidation
	case c >= 200 && c < 300:
		return CategoryData
	case c >= 300 && c < 400:
		return CategoryIndicator
	case c >= 400 && c < 500:
		return CategoryStrategy
	case c >= 600 && c < 700:
		return CategorySimulation
	case c >= 700 && c < 800:
		return CategoryReport
	default:
		return CategoryGeneral
	}
}

// IsClientError reports whether the code describes a problem with the caller's input.
func (c ErrorCode) IsClientError() bool {
	switch c.Category() {
	case CategoryValidation:
		return true
	case CategoryStrategy:
		return c == ErrCodeUnsupportedStrategy || c == ErrCodeStrategyConfigError ||
			c == ErrCodeSignalNotFound || c == ErrCodeVersionMismatch
	case CategoryData:
		return c == ErrCodeSeriesNotFound || c == ErrCodeEmptySeries
	case CategorySimulation:
		return true
	default:
		return false
	}
}
