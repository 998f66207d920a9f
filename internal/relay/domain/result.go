package domain

import (
	"encoding/json"
	"time"
)

// Result is the latest callback payload the workflow engine delivered for a
// client token. At most one exists per token; a later callback replaces it.
type Result struct {
	Token     string
	Payload   json.RawMessage
	UpdatedAt time.Time
}
