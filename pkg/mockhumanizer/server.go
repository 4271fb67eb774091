package mockhumanizer

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shpitdev/text-humanizer/internal/textproc"
)

// Path is the route the mock serves, matching the real service.
const Path = "/api/process-text"

// Call records a request made to the mock service.
type Call struct {
	Method      string
	Path        string
	ContentType string
	RequestID   string
	Request     textproc.Request

	// Body is the raw request payload as received.
	Body []byte
}

// Server implements the humanizer service's single endpoint.
//
// By default it echoes the request text back as modifiedText.
type Server struct {
	mu    sync.Mutex
	calls []Call

	transform func(textproc.Request) string

	failStatus int
	failBody   string
	rawBody    *string
	delay      time.Duration
	release    chan struct{}
	status     int
}

// New constructs a new mock server that echoes its input.
func New() *Server {
	return &Server{}
}

// Transform sets the function producing modifiedText. nil restores echo.
func (s *Server) Transform(f func(textproc.Request) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transform = f
}

// FailWith makes every subsequent request fail with status and the service's error envelope.
// A status of 0 clears the failure.
func (s *Server) FailWith(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failBody = message
}

// RespondRaw makes every subsequent 200 reply carry body verbatim instead of JSON.
func (s *Server) RespondRaw(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawBody = &body
}

// ReplyStatus sets the HTTP status sent with modifiedText replies. 0 restores 200.
func (s *Server) ReplyStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Delay holds each reply for d before writing it.
func (s *Server) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Hold blocks replies until the returned func is called.
func (s *Server) Hold() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.release = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(ch)
		})
	}
}

// Handler returns an http.Handler that serves the mock API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleProcessText)
	return mux
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

type successReply struct {
	Success      bool   `json:"success"`
	ModifiedText string `json:"modifiedText"`
}

type errorReply struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleProcessText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "read body: " + err.Error()})
		return
	}

	var req textproc.Request
	decodeErr := json.Unmarshal(body, &req)

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		RequestID:   r.Header.Get("X-Request-Id"),
		Request:     req,
		Body:        body,
	})
	transform := s.transform
	failStatus, failBody := s.failStatus, s.failBody
	rawBody := s.rawBody
	delay := s.delay
	release := s.release
	status := s.status
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
	}
	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-r.Context().Done():
			t.Stop()
			return
		}
	}

	if decodeErr != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid JSON body"})
		return
	}
	if failStatus != 0 {
		writeJSON(w, failStatus, errorReply{Error: failBody})
		return
	}
	if rawBody != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, *rawBody)
		return
	}

	out := req.Text
	if transform != nil {
		out = transform(req)
	}
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, successReply{Success: status/100 == 2, ModifiedText: out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
