package relaysdk

import (
	"bytes"
	"encoding/json"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the envelope every failed relay request is answered with.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenRequest is the optional JSON body of POST /api/token. The secret may
// instead travel in the X-Client-Secret header.
type TokenRequest struct {
	ClientSecret string `json:"clientSecret"`
}

// TokenResponse is returned from POST /api/token.
type TokenResponse struct {
	// Token is the bearer token used for every protected endpoint
	Token string `json:"token"`

	// ExpiresIn is the server-side lifetime of Token in seconds
	ExpiresIn int `json:"expiresIn,omitempty"`
}

// ============================================================================
// Conversion Types
// ============================================================================

// ConvertRequest is the body of POST /api/convert. The server also accepts
// the short field names criteria and agent.
type ConvertRequest struct {
	AcceptanceCriteria string `json:"acceptanceCriteria"`
	AIAgent            string `json:"aiAgent"`
	OutputFormat       string `json:"outputFormat"`
}

// PendingResponse is the 404 body of GET /api/result while no callback has
// arrived for the token.
type PendingResponse struct {
	Status string `json:"status"`
}

// OKResponse acknowledges an engine callback.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ============================================================================
// Result
// ============================================================================

// resultFields are inspected by Text in priority order.
var resultFields = []string{"text", "message", "output", "data"}

// Result is a payload produced by the workflow engine, either returned
// synchronously from a conversion or delivered later through the callback.
type Result struct {
	Raw json.RawMessage
}

func (r Result) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

func (r *Result) UnmarshalJSON(b []byte) error {
	r.Raw = append(r.Raw[:0], b...)
	return nil
}

// Field returns the named top-level field when it holds a non-empty value.
func (r Result) Field(name string) (json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Raw, &fields); err != nil {
		return nil, false
	}
	v, ok := fields[name]
	if !ok || !truthy(v) {
		return nil, false
	}
	return v, true
}

// Text renders the result for display: the first of text, message, output or
// data that is set (strings verbatim, anything else as indented JSON),
// otherwise the whole payload as indented JSON.
func (r Result) Text() string {
	var s string
	if json.Unmarshal(r.Raw, &s) == nil {
		return s
	}

	for _, name := range resultFields {
		v, ok := r.Field(name)
		if !ok {
			continue
		}
		if json.Unmarshal(v, &s) == nil {
			return s
		}
		return indentJSON(v)
	}
	return indentJSON(r.Raw)
}

func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of the relay's dependencies.
type HealthChecks struct {
	// Store indicates the result store status
	Store string `json:"store"`

	// Signer indicates whether tokens can be issued
	Signer string `json:"signer"`

	// Engine indicates whether a workflow engine webhook is configured
	Engine string `json:"engine"`
}
