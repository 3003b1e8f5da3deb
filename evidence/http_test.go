package evidence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendCapturesTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"entries":[]}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{Bearer: "secret"})
	resp, err := client.Send(context.Background(), Request{Method: http.MethodGet, URL: server.URL + "/observation"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"entries":[]}`, string(resp.Body))
	assert.NotEmpty(t, resp.Ref)

	transcripts := client.Transcripts()
	require.Len(t, transcripts, 1)
	assert.Equal(t, resp.Ref, transcripts[0].ID)
	assert.Equal(t, server.URL+"/observation", transcripts[0].Request.URL)
	require.NotNil(t, transcripts[0].Response)
	assert.Equal(t, http.StatusOK, transcripts[0].Response.StatusCode)
	assert.Empty(t, transcripts[0].Err)
}

func TestSendAuthorizationToggling(t *testing.T) {
	var lastAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{Bearer: "secret"})
	req := Request{Method: http.MethodGet, URL: server.URL}

	_, err := client.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", lastAuth)

	client.SetNoAuth()
	_, err = client.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, lastAuth)

	client.SetBearer("rotated")
	_, err = client.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Bearer rotated", lastAuth)
}

func TestSendDefaultAcceptHeader(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{})
	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "application/json", accept)

	hdr := http.Header{}
	hdr.Set("Accept", "application/xml")
	_, err = client.Send(context.Background(), Request{Method: http.MethodGet, URL: server.URL, Header: hdr})
	require.NoError(t, err)
	assert.Equal(t, "application/xml", accept)
}

func TestSendTimeoutIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{Timeout: 20 * time.Millisecond})
	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, URL: server.URL})
	require.Error(t, err)

	// The failed exchange is still captured as evidence.
	transcripts := client.Transcripts()
	require.Len(t, transcripts, 1)
	assert.Nil(t, transcripts[0].Response)
	assert.NotEmpty(t, transcripts[0].Err)
}

func TestSendConnectionRefused(t *testing.T) {
	client := NewHTTPClient(ClientConfig{Timeout: time.Second})
	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, URL: "http://127.0.0.1:1/nothing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending GET")
}

func TestStore(t *testing.T) {
	s := NewStore()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.LastRef())

	ref1 := s.Add(Transcript{Request: Request{URL: "http://a"}})
	ref2 := s.Add(Transcript{Request: Request{URL: "http://b"}})
	require.NotEqual(t, ref1, ref2)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, ref2, s.LastRef())

	got, ok := s.Get(ref1)
	require.True(t, ok)
	assert.Equal(t, "http://a", got.Request.URL)
	assert.False(t, got.Time.IsZero())

	_, ok = s.Get("unknown")
	assert.False(t, ok)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, ref1, all[0].ID)
	assert.Equal(t, ref2, all[1].ID)
}
