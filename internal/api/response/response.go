package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/screener/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response. Errors that are not core errors are
// reported without detail.
func Error(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	if coreErr := innermost(err); coreErr != nil {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	}

	resp := ErrorResponse{Error: detail}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// innermost returns the deepest *core.Error in err's chain, which names the
// actual failure rather than the layer that wrapped it.
func innermost(err error) *core.Error {
	var found *core.Error
	for {
		var ce *core.Error
		if !errors.As(err, &ce) {
			return found
		}
		found = ce
		if ce.Cause == nil {
			return found
		}
		err = ce.Cause
	}
}

// StatusFor maps an error to the HTTP status it is reported with. Upstream
// failures are checked first so a wrapped source error is never a 404.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrRateLimited), errors.Is(err, core.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrCollectorFailed):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrNoData), errors.Is(err, core.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConfigInvalid), errors.Is(err, core.ErrInvalidRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with the status from StatusFor.
func Fail(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err)
}
