package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroviz-server/internal/entity"
	"neuroviz-server/pkg/pairing"
)

func pairingFor(t *testing.T, srv *httptest.Server, secret string) pairing.Payload {
	t.Helper()
	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return pairing.Payload{IP: host, Port: port, Secret: secret}
}

func writeFrame(t *testing.T, w http.ResponseWriter, state entity.AppState) {
	t.Helper()
	data, err := json.Marshal(state)
	require.NoError(t, err)
	fmt.Fprintf(w, "data: %s\n\n", data)
	w.(http.Flusher).Flush()
}

func TestSubscribeCachesLatestState(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/state/subscribe", r.URL.Path)
		assert.Equal(t, "s3cret", r.URL.Query().Get("secret"))
		w.Header().Set("Content-Type", "text/event-stream")

		writeFrame(t, w, entity.Idle())
		fmt.Fprint(w, ": keep-alive\n\n")
		w.(http.Flusher).Flush()
		writeFrame(t, w, entity.Live(entity.ParameterValues{entity.ParameterGlow: 0.5}))

		<-release
	}))
	defer srv.Close()
	defer close(release)

	frames := make(chan entity.AppState, 8)
	c := New(pairingFor(t, srv, "s3cret"),
		WithStateCallback(func(s entity.AppState) { frames <- s }))

	_, ok := c.State()
	assert.False(t, ok, "no state before the first frame")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Subscribe(ctx) }()

	// First frame: the current state on subscribe.
	first := <-frames
	assert.Equal(t, entity.StateIdle, first.Kind)

	second := <-frames
	assert.Equal(t, entity.StateLive, second.Kind)

	state, ok := c.State()
	require.True(t, ok)
	assert.Equal(t, entity.StateLive, state.Kind)
	assert.InDelta(t, 0.5, state.Parameters[entity.ParameterGlow], 1e-9)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamDropIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeFrame(t, w, entity.Idle())
		// Returning closes the stream mid-subscription.
	}))
	defer srv.Close()

	disconnected := make(chan error, 1)
	c := New(pairingFor(t, srv, "s3cret"),
		WithDisconnectCallback(func(err error) { disconnected <- err }))

	err := c.Subscribe(context.Background())
	assert.Error(t, err)

	select {
	case dropErr := <-disconnected:
		assert.Error(t, dropErr)
	case <-time.After(time.Second):
		t.Fatal("disconnect callback never fired")
	}
}

func TestRejectedSubscribeFiresDisconnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	disconnected := make(chan error, 1)
	c := New(pairingFor(t, srv, "wrong"),
		WithDisconnectCallback(func(err error) { disconnected <- err }))

	err := c.Subscribe(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Len(t, disconnected, 1)
}

func TestAnswerSendsSecretAndPayload(t *testing.T) {
	type seen struct {
		path   string
		secret string
		body   []byte
	}
	requests := make(chan seen, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			buf := make([]byte, 1024)
			n, _ := r.Body.Read(buf)
			body = buf[:n]
		}
		requests <- seen{path: r.URL.Path, secret: r.Header.Get("X-State-Secret"), body: body}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(pairingFor(t, srv, "s3cret"))
	ctx := context.Background()

	err := c.Answer(ctx, entity.ExperimentAnswer{Type: entity.ExperimentRating, Value: 4})
	require.NoError(t, err)

	got := <-requests
	assert.Equal(t, "/session/experiment/answer", got.path)
	assert.Equal(t, "s3cret", got.secret)
	assert.JSONEq(t, `{"experiment_type":"rating","value":4}`, string(got.body))

	require.NoError(t, c.SwapPreset(ctx))
	got = <-requests
	assert.Equal(t, "/session/experiment/swap", got.path)
	assert.Equal(t, "s3cret", got.secret)
}

func TestCommandErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := New(pairingFor(t, srv, "s3cret"))
	err := c.SwapPreset(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}
