// Package evidence wraps outbound request/response capture for the
// conformance engine. The engine never constructs network sockets itself;
// test bodies call a Client and every exchange is retained as a transcript
// the report can reference.
package evidence

import (
	"context"
	"net/http"
	"time"
)

// Request describes one outbound exchange a test body wants to perform.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the captured outcome of a request, including the transcript
// reference under which the full exchange was stored.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration

	// Ref identifies the stored transcript for this exchange.
	Ref string
}

// Client is the capability test bodies use for all network interaction.
// Authorization-header toggling is part of the contract so sequences can
// probe both authenticated and unauthenticated behavior.
type Client interface {
	Send(ctx context.Context, req Request) (*Response, error)
	SetNoAuth()
	SetBearer(token string)
	Transcripts() []Transcript
}
