// Package client implements the subscriber side of the state-sync protocol:
// what a render client does after scanning the pairing payload.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"neuroviz-server/internal/entity"
	"neuroviz-server/pkg/pairing"
)

// Client subscribes to the server's push stream and keeps the latest
// AppState in an atomically swapped cache, so a render loop can read the
// current state every frame without locking.
//
// A dropped stream is terminal: the subscription ends, OnDisconnect fires,
// and the caller is expected to re-pair and build a fresh Client. There is
// no automatic retry.
type Client struct {
	pairing pairing.Payload
	http    *http.Client

	state atomic.Pointer[entity.AppState]

	onState      func(entity.AppState)
	onDisconnect func(error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithStateCallback is invoked on every state frame, after the cache swap.
func WithStateCallback(fn func(entity.AppState)) Option {
	return func(c *Client) { c.onState = fn }
}

// WithDisconnectCallback is invoked once when the subscription ends for any
// reason other than context cancellation.
func WithDisconnectCallback(fn func(error)) Option {
	return func(c *Client) { c.onDisconnect = fn }
}

// New builds a client for the given pairing payload.
func New(p pairing.Payload, opts ...Option) *Client {
	c := &Client{
		pairing: p,
		http: &http.Client{
			// No overall timeout: the subscribe stream is long-lived.
			Transport: &http.Transport{ResponseHeaderTimeout: 5 * time.Second},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("http://%s:%d", c.pairing.IP, c.pairing.Port)
}

// State returns the most recent snapshot, or false before the first frame.
func (c *Client) State() (entity.AppState, bool) {
	s := c.state.Load()
	if s == nil {
		return entity.AppState{}, false
	}
	return s.Clone(), true
}

// Subscribe opens the push stream and consumes it until the context is
// cancelled or the stream drops. It blocks; run it on its own goroutine.
func (c *Client) Subscribe(ctx context.Context) error {
	url := c.baseURL() + "/state/subscribe?secret=" + c.pairing.Secret
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.terminate(fmt.Errorf("subscribe: %w", err))
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.terminate(fmt.Errorf("subscribe: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.terminate(fmt.Errorf("subscribe: server returned %s", resp.Status))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			// Blank separators and ": keep-alive" comment frames.
			continue
		}
		var state entity.AppState
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			return c.terminate(fmt.Errorf("subscribe: bad frame: %w", err))
		}
		c.state.Store(&state)
		if c.onState != nil {
			c.onState(state.Clone())
		}
	}

	if ctx.Err() != nil {
		// Deliberate shutdown, not a drop.
		return ctx.Err()
	}
	err = scanner.Err()
	if err == nil {
		err = io.EOF
	}
	return c.terminate(fmt.Errorf("subscribe: stream closed: %w", err))
}

func (c *Client) terminate(err error) error {
	if c.onDisconnect != nil {
		c.onDisconnect(err)
	}
	return err
}

// Answer submits the reply to the current prompt.
func (c *Client) Answer(ctx context.Context, answer entity.ExperimentAnswer) error {
	body, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("answer: %w", err)
	}
	return c.post(ctx, "/session/experiment/answer", body)
}

// SwapPreset flips which comparison slot is shown. Choice experiments only.
func (c *Client) SwapPreset(ctx context.Context) error {
	return c.post(ctx, "/session/experiment/swap", nil)
}

func (c *Client) post(ctx context.Context, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-State-Secret", c.pairing.Secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: server returned %s", path, resp.Status)
	}
	return nil
}
