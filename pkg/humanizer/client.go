package humanizer

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/shpitdev/text-humanizer/internal/textproc"
	"github.com/shpitdev/text-humanizer/internal/version"
)

// Client POSTs text-processing requests to a single humanizer endpoint.
//
// It never retries: one ProcessText call is one HTTP request.
type Client struct {
	endpoint *url.URL
	http     *http.Client
}

var _ textproc.Processor = (*Client)(nil)

// NewClient constructs a client for cfg.EndpointURL.
func NewClient(cfg Config) (*Client, error) {
	u, err := parseEndpoint(cfg.EndpointURL)
	if err != nil {
		return nil, err
	}
	hc, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: u, http: hc}, nil
}

// Endpoint returns the resolved endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

func parseEndpoint(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("endpoint URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint URL must use http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint URL must include a host (got %q)", raw)
	}
	u.Fragment = ""
	return u, nil
}

func newHTTPClient(cfg Config) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if p := strings.TrimSpace(cfg.CAPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM(b); !ok {
			return nil, fmt.Errorf("parse CA bundle PEM: no certs found")
		}
		tr.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}
	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}, nil
}

// wireResponse keeps ModifiedText nullable so a body without it is not mistaken for "".
type wireResponse struct {
	ModifiedText *string `json:"modifiedText"`
}

// ProcessText sends req and returns the transformed text.
//
// Every failure is a *textproc.TransportError. A non-2xx reply without a usable
// modifiedText wraps an *HTTPError.
func (c *Client) ProcessText(ctx context.Context, req textproc.Request) (textproc.Response, error) {
	const op = "processText"
	fail := func(err error) (textproc.Response, error) {
		return textproc.Response{}, &textproc.TransportError{Op: op, Err: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fail(fmt.Errorf("encode request: %w", err))
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", version.UserAgent())
	if id := textproc.RequestIDFrom(ctx); id != "" {
		hreq.Header.Set("X-Request-Id", id)
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		return fail(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("read response: %w", err))
	}

	// A body carrying modifiedText is a success whatever the status code.
	var out wireResponse
	decodeErr := json.Unmarshal(b, &out)
	if decodeErr == nil && out.ModifiedText != nil {
		return textproc.Response{ModifiedText: *out.ModifiedText}, nil
	}
	if resp.StatusCode/100 != 2 {
		return fail(newHTTPError(op, resp, b))
	}
	if decodeErr != nil {
		return fail(fmt.Errorf("parse response: %w", decodeErr))
	}
	return fail(fmt.Errorf("parse response: missing modifiedText"))
}
