package strategy

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/version"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
)

// OutputSummary asks the boundary to attach the per-instrument report.
const OutputSummary = "summary"

// Request is a fully resolved policy run.
type Request struct {
	// Series holds the raw rows per instrument. Indicator policies read extra columns from them.
	Series    map[string][]types.RawRow
	OpenDates []string
	Start     string
	End       string
	TotMoney  float64
	Fees      commission_fee.Fees
	Params    Params
}

// Calendar carries the trading days of a request.
type Calendar struct {
	OpenDates []string `json:"open_dates" yaml:"open_dates" jsonschema:"title=Open Dates,description=Trading days in YYYY-MM-DD"`
}

// BacktestBody is the wire form of a policy backtest request, shared by the HTTP API and the CLI.
type BacktestBody struct {
	Strategy string                              `json:"strategy" yaml:"strategy" validate:"required" jsonschema:"title=Strategy,description=Policy identifier"`
	Version  string                              `json:"version,omitempty" yaml:"version,omitempty" jsonschema:"title=Version,description=Core version the request was written for"`
	Start    string                              `json:"start,omitempty" yaml:"start,omitempty" jsonschema:"title=Start,description=Defaults to the first open date"`
	End      string                              `json:"end,omitempty" yaml:"end,omitempty" jsonschema:"title=End,description=Defaults to the last open date"`
	TotMoney float64                             `json:"totmoney" yaml:"totmoney" validate:"gte=0" jsonschema:"title=Total Money,minimum=0"`
	Calendar *Calendar                           `json:"calendar,omitempty" yaml:"calendar,omitempty"`
	Series   map[string][]types.RawRow           `json:"series" yaml:"series" jsonschema:"title=Series,description=Rows per instrument code"`
	Params   json.RawMessage                     `json:"params,omitempty" yaml:"params,omitempty" jsonschema:"title=Params,description=Policy parameters"`
	Fees     map[string]commission_fee.FeeConfig `json:"fees,omitempty" yaml:"fees,omitempty" validate:"omitempty,dive"`
}

// Output returns the requested output form, "actions" unless params.output says otherwise.
func (b BacktestBody) Output() string {
	var probe struct {
		Output string `json:"output"`
	}

	if len(b.Params) > 0 {
		_ = json.Unmarshal(b.Params, &probe)
	}

	out := strings.ToLower(strings.TrimSpace(probe.Output))
	if out == "" {
		return "actions"
	}

	return out
}

// Build validates the body and resolves it into a Request.
// Every error it returns carries a client error code.
func (b BacktestBody) Build() (Request, error) {
	if err := validateStruct(b); err != nil {
		return Request{}, err
	}

	kind, ok := ParseKind(b.Strategy)
	if !ok {
		return Request{}, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", strings.TrimSpace(b.Strategy))
	}

	if err := version.CheckCompatibility(version.GetVersion(), b.Version); err != nil {
		return Request{}, errors.Wrap(errors.ErrCodeVersionMismatch, "request version is not supported", err)
	}

	params, err := DecodeParams(kind, b.Params)
	if err != nil {
		return Request{}, err
	}

	series := make(map[string][]types.RawRow, len(b.Series))
	for code, rows := range b.Series {
		if code = strings.TrimSpace(code); code != "" {
			series[code] = rows
		}
	}

	for _, code := range params.Codes() {
		if len(series[code]) == 0 {
			return Request{}, errors.Newf(errors.ErrCodeSeriesNotFound, "%s: missing series for %s", kind, code)
		}
	}

	openDates := b.openDates(kind, params, series)
	if len(openDates) == 0 {
		return Request{}, errors.Newf(errors.ErrCodeEmptySeries, "%s: no open dates in calendar or series", kind)
	}

	start := strings.TrimSpace(b.Start)
	if start == "" {
		start = openDates[0]
	}

	end := strings.TrimSpace(b.End)
	if end == "" {
		end = openDates[len(openDates)-1]
	}

	if start > end {
		return Request{}, errors.InvalidParameter("start", fmt.Sprintf("%s is after end %s", start, end))
	}

	fees := make(commission_fee.Fees, len(b.Fees))
	for code, fee := range b.Fees {
		fees[strings.TrimSpace(code)] = fee
	}

	return Request{
		Series:    series,
		OpenDates: openDates,
		Start:     start,
		End:       end,
		TotMoney:  b.TotMoney,
		Fees:      fees,
		Params:    params,
	}, nil
}

// Validate reports the first client error Build would return.
func (b BacktestBody) Validate() error {
	_, err := b.Build()

	return err
}

// openDates returns the trimmed and sorted calendar. Without an explicit calendar
// the dates of the policy's series are used, or the union of all series for
// multi-instrument policies.
func (b BacktestBody) openDates(kind Kind, params Params, series map[string][]types.RawRow) []string {
	var raw []string

	switch {
	case b.Calendar != nil && len(b.Calendar.OpenDates) > 0:
		raw = b.Calendar.OpenDates
	case kind.MultiInstrument():
		all := make([]*datasource.Series, 0, len(series))
		for _, rows := range series {
			all = append(all, datasource.FromRows(rows))
		}

		raw = datasource.UnionDates(all...)
	default:
		for _, code := range params.Codes() {
			for _, row := range series[code] {
				raw = append(raw, datasource.DateOf(row))
			}
		}
	}

	return datasource.RestrictCalendar(raw, "", "")
}

// DecodeParams decodes and validates the parameters of kind.
func DecodeParams(kind Kind, raw json.RawMessage) (Params, error) {
	decode, ok := paramDecoders[kind]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", kind)
	}

	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}

	params, err := decode(raw)
	if err != nil {
		return nil, paramDecodeError(kind, err)
	}

	if err := validateStruct(params); err != nil {
		return nil, err
	}

	if checker, ok := params.(paramChecker); ok {
		if err := checker.check(); err != nil {
			return nil, err
		}
	}

	return params, nil
}

func paramDecodeError(kind Kind, err error) error {
	var typed *errors.Error
	if stderrors.As(err, &typed) {
		return typed
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "params"
		}

		return errors.InvalidParameter(field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
	}

	return errors.Wrapf(errors.ErrCodeInvalidRequestBody, err, "%s: malformed params", kind)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// validateStruct runs the struct tag rules and converts the first failure into a typed error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request", err)
	}

	return ValidationError(verrs[0])
}

// ValidateStruct applies the validate tags of a boundary struct, naming fields by their JSON keys.
func ValidateStruct(s any) error {
	return validateStruct(s)
}

// ValidationError converts one validator failure into a typed error named after the JSON field.
func ValidationError(fe validator.FieldError) *errors.Error {
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return errors.MissingParameter(field)
	case "min":
		return errors.InvalidParameter(field, "must have at least "+fe.Param()+" entries")
	case "len":
		return errors.InvalidParameter(field, "must have exactly "+fe.Param()+" entries")
	default:
		return errors.InvalidParameter(field, fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param()))
	}
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	return strings.Join(slices.DeleteFunc(parts, func(s string) bool { return s == "" }), ".")
}
