package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", InMemory, false},
		{"inmemory", InMemory, false},
		{"In-Memory", InMemory, false},
		{"live", LiveServer, false},
		{"live-server", LiveServer, false},
		{"carrier-pigeon", InMemory, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "inmemory", InMemory.String())
	assert.Equal(t, "live", LiveServer.String())
}

func TestInMemoryTransport_Dispatch(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hello", r.URL.Path)
		_, _ = w.Write([]byte("hello"))
	})
	tr := NewInMemoryTransport(handler)

	req, err := NewRequest(http.MethodGet, "/hello").Build(context.Background(), tr.BaseURL())
	require.NoError(t, err)

	resp, err := tr.Dispatch(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", resp.BodyString())
	assert.Equal(t, []string{"5"}, resp.HeaderValues("Content-Length"))
	assert.Equal(t, []string{"text/plain; charset=utf-8"}, resp.HeaderValues("Content-Type"))
}

func TestInMemoryTransport_HandlerPanic(t *testing.T) {
	tr := NewInMemoryTransport(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req, err := NewRequest(http.MethodGet, "/").Build(context.Background(), tr.BaseURL())
	require.NoError(t, err)

	_, err = tr.Dispatch(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "boom")
}

func TestInMemoryTransport_NoHandler(t *testing.T) {
	tr := NewInMemoryTransport(nil)
	req, err := NewRequest(http.MethodGet, "/").Build(context.Background(), tr.BaseURL())
	require.NoError(t, err)

	_, err = tr.Dispatch(req)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestLiveTransport_Dispatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	tr := NewLiveTransport(server.URL+"/", nil)
	assert.Equal(t, server.URL, tr.BaseURL())
	assert.Equal(t, LiveServer, tr.Mode())

	req, err := NewRequest(http.MethodGet, "/tea").Build(context.Background(), tr.BaseURL())
	require.NoError(t, err)

	resp, err := tr.Dispatch(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	tr.Close()
	req, err = NewRequest(http.MethodGet, "/tea").Build(context.Background(), tr.BaseURL())
	require.NoError(t, err)
	resp, err = tr.Dispatch(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestLiveTransport_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	tr := NewLiveTransport(url, NewClient())
	req, err := NewRequest(http.MethodGet, "/").Build(context.Background(), tr.BaseURL())
	require.NoError(t, err)

	_, err = tr.Dispatch(req)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, LiveServer, te.Mode)
}

func TestRemote_Transport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen", r.Header.Get("X-Default"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	remote := NewRemote(server.URL+"/", WithDefaultHeader("X-Default", "yes"))
	assert.Equal(t, server.URL, remote.BaseURL())

	_, err := remote.Transport(InMemory)
	assert.ErrorIs(t, err, ErrNoHandler)

	tr, err := remote.Transport(LiveServer)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tr.BaseURL()+"/x", nil)
	require.NoError(t, err)
	resp, err := tr.Dispatch(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header("X-Seen"))
}
