package evidence

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

// Response bodies larger than this are truncated in the transcript. Keeps a
// misbehaving server from exhausting memory during a long run.
const maxBodyBytes = 4 << 20

// HTTPClient implements Client over net/http. Each request carries a
// bounded wait; exceeding it surfaces as an error to the calling test body,
// never as a fatal abort of the run.
type HTTPClient struct {
	base   *http.Client
	store  *Store
	log    log.Logger
	bearer string
	noAuth bool
}

// ClientConfig configures an HTTPClient.
type ClientConfig struct {
	Timeout time.Duration
	Bearer  string
	Log     log.Logger

	// Transport overrides the default transport. Used in tests.
	Transport http.RoundTripper
}

// NewHTTPClient creates an evidence-capturing HTTP client.
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	return &HTTPClient{
		base: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		store:  NewStore(),
		log:    cfg.Log,
		bearer: cfg.Bearer,
	}
}

// SetBearer switches the client to bearer authorization with the given
// token for all subsequent requests.
func (c *HTTPClient) SetBearer(token string) {
	c.bearer = token
	c.noAuth = false
}

// SetNoAuth suppresses the Authorization header on subsequent requests, so
// sequences can verify the target rejects unauthenticated access.
func (c *HTTPClient) SetNoAuth() {
	c.noAuth = true
}

// Send performs the request, captures the full exchange as a transcript,
// and returns the response with its transcript reference attached.
func (c *HTTPClient) Send(ctx context.Context, req Request) (*Response, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, errors.Wrapf(err, "building request %s %s", req.Method, req.URL)
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	if !c.noAuth && c.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	httpResp, err := c.base.Do(httpReq)
	elapsed := time.Since(start)

	if err != nil {
		ref := c.store.Add(Transcript{Request: req, Err: err.Error()})
		c.log.Debug("request failed", "method", req.Method, "url", req.URL, "err", err, "ref", ref)
		return nil, errors.Wrapf(err, "sending %s %s", req.Method, req.URL)
	}
	defer httpResp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if readErr != nil {
		ref := c.store.Add(Transcript{Request: req, Err: readErr.Error()})
		c.log.Debug("reading response body failed", "url", req.URL, "err", readErr, "ref", ref)
		return nil, errors.Wrapf(readErr, "reading response body from %s", req.URL)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       body,
		Duration:   elapsed,
	}
	resp.Ref = c.store.Add(Transcript{Request: req, Response: resp})

	c.log.Debug("request completed",
		"method", req.Method,
		"url", req.URL,
		"status", resp.StatusCode,
		"duration", elapsed,
		"ref", resp.Ref)

	return resp, nil
}

// Transcripts returns every captured exchange in order.
func (c *HTTPClient) Transcripts() []Transcript {
	return c.store.All()
}

// Store exposes the underlying transcript store.
func (c *HTTPClient) Store() *Store {
	return c.store
}
