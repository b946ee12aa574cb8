package api

import (
	"encoding/json"
	"net/http"

	"github.com/rxtech-lab/argo-fund/internal/strategy"
	"github.com/rxtech-lab/argo-fund/pkg/errors"
	"go.uber.org/zap"
)

// ErrorBody is the JSON form of a failed request.
type ErrorBody struct {
	Code   errors.ErrorCode `json:"code"`
	Detail string           `json:"detail"`
}

func statusOf(err error) int {
	if errors.IsClientError(err) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	} else {
		s.log.Debug("request rejected", zap.Error(err))
	}

	writeJSON(w, status, ErrorBody{Code: errors.GetCode(err), Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeBody decodes a JSON body into dst and runs the struct validator on it.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		// Errors from custom unmarshalers already carry a client code.
		if errors.IsClientError(err) {
			return err
		}

		return errors.Wrap(errors.ErrCodeInvalidRequestBody, "invalid JSON body", err)
	}

	return strategy.ValidateStruct(dst)
}
