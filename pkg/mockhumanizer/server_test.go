package mockhumanizer_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/text-humanizer/internal/textproc"
	"github.com/shpitdev/text-humanizer/pkg/mockhumanizer"
)

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestMockHumanizer_EchoesAndRecords(t *testing.T) {
	t.Parallel()

	srv := mockhumanizer.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, out := post(t, ts.URL+mockhumanizer.Path,
		`{"text":"hi there","options":{"addErrors":true,"keepProfessional":false,"vocabularyLevel":"6"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "hi there", out["modifiedText"])

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, textproc.Request{
		Text:    "hi there",
		Options: textproc.Options{AddErrors: true, VocabularyLevel: "6"},
	}, calls[0].Request)
}

func TestMockHumanizer_FailWithUsesErrorEnvelope(t *testing.T) {
	t.Parallel()

	srv := mockhumanizer.New()
	srv.FailWith(http.StatusInternalServerError, "boom")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, out := post(t, ts.URL+mockhumanizer.Path, `{"text":"x","options":{}}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "boom", out["error"])
}

func TestMockHumanizer_ReplyStatusKeepsModifiedText(t *testing.T) {
	t.Parallel()

	srv := mockhumanizer.New()
	srv.ReplyStatus(http.StatusInternalServerError)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, out := post(t, ts.URL+mockhumanizer.Path, `{"text":"hi","options":{}}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "hi", out["modifiedText"])
}

func TestMockHumanizer_RejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	srv := mockhumanizer.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := post(t, ts.URL+mockhumanizer.Path, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, srv.Calls(), 1)
}

func TestMockHumanizer_HoldBlocksUntilReleased(t *testing.T) {
	t.Parallel()

	srv := mockhumanizer.New()
	release := srv.Hold()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := http.Post(ts.URL+mockhumanizer.Path, "application/json", strings.NewReader(`{"text":"x","options":{}}`))
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	select {
	case <-done:
		t.Fatalf("request completed before release")
	case <-time.After(50 * time.Millisecond):
	}
	release()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("request did not complete after release")
	}
}

func TestMockHumanizer_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(mockhumanizer.New().Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + mockhumanizer.Path)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
