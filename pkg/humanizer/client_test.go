package humanizer_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/text-humanizer/internal/textproc"
	"github.com/shpitdev/text-humanizer/internal/version"
	"github.com/shpitdev/text-humanizer/pkg/humanizer"
	"github.com/shpitdev/text-humanizer/pkg/mockhumanizer"
)

func newMockClient(t *testing.T) (*mockhumanizer.Server, *humanizer.Client) {
	t.Helper()

	srv := mockhumanizer.New()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := humanizer.NewClient(humanizer.Config{EndpointURL: ts.URL + mockhumanizer.Path})
	require.NoError(t, err)
	return srv, client
}

func TestProcessText_SendsJSONAndReturnsModifiedText(t *testing.T) {
	t.Parallel()

	srv, client := newMockClient(t)
	srv.Transform(func(textproc.Request) string { return "Hello world." })

	req := textproc.Request{
		Text: " hello world ",
		Options: textproc.Options{
			AddErrors:        true,
			KeepProfessional: true,
			VocabularyLevel:  "12",
		},
	}
	ctx := textproc.WithRequestID(context.Background(), "req-1")
	got, err := client.ProcessText(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", got.ModifiedText)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, mockhumanizer.Path, calls[0].Path)
	assert.Equal(t, "application/json", calls[0].ContentType)
	assert.Equal(t, "req-1", calls[0].RequestID)
	assert.Equal(t, req, calls[0].Request)
}

func TestProcessText_HeadersAndBody(t *testing.T) {
	t.Parallel()

	var gotUA, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"modifiedText":"  kept  verbatim \n","metrics":{"naturalness_score":1}}`))
	}))
	defer ts.Close()

	client, err := humanizer.NewClient(humanizer.Config{EndpointURL: ts.URL})
	require.NoError(t, err)

	got, err := client.ProcessText(context.Background(), textproc.Request{
		Text:    "x",
		Options: textproc.Options{VocabularyLevel: "10"},
	})
	require.NoError(t, err)
	assert.Equal(t, "  kept  verbatim \n", got.ModifiedText)
	assert.Equal(t, version.UserAgent(), gotUA)
	assert.JSONEq(t, `{"text":"x","options":{"addErrors":false,"keepProfessional":false,"vocabularyLevel":"10"}}`, gotBody)
}

func TestProcessText_ErrorStatusWithModifiedTextSucceeds(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"modifiedText":"Hello world."}`))
	}))
	defer ts.Close()

	client, err := humanizer.NewClient(humanizer.Config{EndpointURL: ts.URL})
	require.NoError(t, err)

	got, err := client.ProcessText(context.Background(), textproc.Request{Text: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", got.ModifiedText)
}

func TestProcessText_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*mockhumanizer.Server)
		check func(t *testing.T, err error)
	}{
		{
			name:  "service error envelope",
			setup: func(s *mockhumanizer.Server) { s.FailWith(http.StatusBadRequest, "'style'") },
			check: func(t *testing.T, err error) {
				var he *humanizer.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, http.StatusBadRequest, he.StatusCode)
				assert.Equal(t, "'style'", he.Message)
			},
		},
		{
			name:  "malformed json",
			setup: func(s *mockhumanizer.Server) { s.RespondRaw("<html>oops</html>") },
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "parse response")
			},
		},
		{
			name:  "missing modifiedText",
			setup: func(s *mockhumanizer.Server) { s.RespondRaw(`{"success":true}`) },
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "missing modifiedText")
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, client := newMockClient(t)
			tt.setup(srv)

			_, err := client.ProcessText(context.Background(), textproc.Request{Text: "hi"})
			require.Error(t, err)
			var te *textproc.TransportError
			require.ErrorAs(t, err, &te)
			tt.check(t, err)
			assert.Len(t, srv.Calls(), 1)
		})
	}
}

func TestProcessText_ConnectionRefused(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client, err := humanizer.NewClient(humanizer.Config{EndpointURL: "http://" + addr + mockhumanizer.Path})
	require.NoError(t, err)

	_, err = client.ProcessText(context.Background(), textproc.Request{Text: "hi"})
	var te *textproc.TransportError
	require.ErrorAs(t, err, &te)

	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr), "expected a dial error, got %v", err)
}

func TestNewClient_EndpointValidation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "default", raw: humanizer.DefaultEndpointURL, want: humanizer.DefaultEndpointURL},
		{name: "bare host gets http", raw: "localhost:5000/api/process-text", want: "http://localhost:5000/api/process-text"},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "bad scheme", raw: "ftp://example.com/x", wantErr: true},
		{name: "no host", raw: "http:///api", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := humanizer.NewClient(humanizer.Config{EndpointURL: tt.raw})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Endpoint())
		})
	}
}

func TestNewClient_RejectsBadCABundle(t *testing.T) {
	_, err := humanizer.NewClient(humanizer.Config{
		EndpointURL: humanizer.DefaultEndpointURL,
		CAPath:      writeFile(t, "ca.pem", "not a certificate"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no certs found")
}
