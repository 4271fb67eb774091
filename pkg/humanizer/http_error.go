package humanizer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shpitdev/text-humanizer/pkg/redact"
)

// errorEnvelope is the failure body the humanizer service returns alongside a 4xx/5xx.
type errorEnvelope struct {
	Error string `json:"error"`
}

// HTTPError is a sanitized summary of a non-2xx humanizer response.
//
// Important: do not include raw response bodies here (they may echo user text).
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string

	// Message is the service-provided error string, redacted.
	Message string

	// Snippet is a redacted, truncated hint for non-envelope responses.
	Snippet string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "humanizer http error"
	}
	parts := []string{
		fmt.Sprintf("humanizer api error: op=%s status=%s", strings.TrimSpace(e.Op), strings.TrimSpace(e.Status)),
	}
	if strings.TrimSpace(e.Message) != "" {
		parts = append(parts, "error="+strings.TrimSpace(e.Message))
	}
	if strings.TrimSpace(e.Snippet) != "" {
		parts = append(parts, "body="+strings.TrimSpace(e.Snippet))
	}
	return strings.Join(parts, " ")
}

const maxSnippet = 256

func newHTTPError(op string, resp *http.Response, body []byte) error {
	h := &HTTPError{Op: op}
	if resp != nil {
		h.StatusCode = resp.StatusCode
		h.Status = resp.Status
	}

	var env errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		if msg := strings.TrimSpace(env.Error); msg != "" {
			h.Message = redact.Snippet([]byte(msg), maxSnippet)
			return h
		}
	}

	h.Snippet = redact.Snippet(body, maxSnippet)
	return h
}
