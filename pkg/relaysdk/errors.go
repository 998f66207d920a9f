package relaysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/acrelay/pkg/httpx"
)

var (
	// ErrUnauthorized matches any 401 answered by the relay.
	ErrUnauthorized = errors.New("relaysdk: unauthorized")

	// ErrNoSecretProvided is returned when the secret prompt yields nothing.
	ErrNoSecretProvided = errors.New("relaysdk: no client secret provided")

	// ErrSuperseded is the cancellation cause of a submission replaced by a
	// newer one. Callers drop it silently.
	ErrSuperseded = errors.New("relaysdk: superseded by a newer submission")
)

// ============================================================================
// APIError
// ============================================================================

// APIError is a non-2xx relay response. Handlers use the same type to write
// the {"error": ...} envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Message)
}

// Is reports 401 responses as ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// WriteError writes e as a JSON error envelope.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Message)
}

// NewAPIError builds an APIError with a custom message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidClientSecret = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Unauthorized: Invalid client secret",
	}

	ErrInvalidJSONBody = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Invalid JSON body",
	}

	ErrCriteriaRequired = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "acceptanceCriteria is required",
	}

	ErrClientTokenRequired = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "clientToken required",
	}

	ErrInvalidClientToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Unauthorized: Invalid clientToken",
	}

	ErrUpstream = &APIError{
		StatusCode: http.StatusBadGateway,
		Message:    "Failed to process request",
	}

	ErrCallbackFailed = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Callback failed",
	}

	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Failed to process request",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. It reads the
// JSON envelope when there is one and falls back to the plain body.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" || strings.HasPrefix(msg, "{") {
		msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
