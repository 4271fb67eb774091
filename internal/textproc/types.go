package textproc

import (
	"context"
	"strings"
)

// Options are the user-selected transformation toggles sent alongside the text.
type Options struct {
	AddErrors        bool   `json:"addErrors"`
	KeepProfessional bool   `json:"keepProfessional"`
	VocabularyLevel  string `json:"vocabularyLevel"`
}

// Request is the JSON body POSTed to the humanizer endpoint.
//
// Text is sent exactly as entered; trimming is only used for validation.
type Request struct {
	Text    string  `json:"text"`
	Options Options `json:"options"`
}

// Response is the subset of the service reply this client consumes.
type Response struct {
	ModifiedText string `json:"modifiedText"`
}

// Processor sends one request to the humanizer service.
type Processor interface {
	ProcessText(ctx context.Context, req Request) (Response, error)
}

// Validate reports a *ValidationError when the text is blank after trimming.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return nil
}

// ValidationError is returned for input rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	return "invalid " + e.Field + ": " + e.Reason
}

// TransportError marks a failure of the network call or of decoding its reply.
//
// The wrapped error may carry upstream detail and must only reach operator logs.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "transport error"
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type requestIDKey struct{}

// WithRequestID attaches a correlation id that processors forward upstream.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id set by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
