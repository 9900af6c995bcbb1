// Client owns the single in-flight exchange per provider instance
package llm

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/chatkit-dev/chatkit/pkg/transport"
)

// Client binds one Adapter to shared transport plumbing and enforces
// the single-flight contract: starting a new send retires any active
// exchange before the new session exists, so no two sessions' callbacks
// can interleave.
type Client struct {
	adapter   Adapter
	transport *transport.Client
	logger    *slog.Logger

	mu          sync.Mutex
	current     *Exchange
	lastContext []int
}

// Option configures a Client.
type Option func(*Client)

// WithTransport substitutes the transport client, mainly for tests.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger enables structured logging. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a session manager around an adapter.
func NewClient(adapter Adapter, opts ...Option) *Client {
	c := &Client{
		adapter: adapter,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = transport.NewClient(0)
	}
	return c
}

// Exchange is one streaming send. Exactly one is current per Client.
type Exchange struct {
	ID string

	session *transport.Session
	done    chan struct{}

	// written by the read goroutine before done closes, read after
	context []int
	result  Result
	err     error
}

// Wait blocks until the stream ends and returns the final accumulated
// text plus the latest continuity token. Cancellation and mid-stream
// failures with partial text both resolve successfully; only a failure
// with zero accumulated text returns an error.
func (e *Exchange) Wait() (Result, error) {
	<-e.done
	return e.result, e.err
}

// Cancel aborts the exchange and synchronously returns the text
// accumulated so far. Idempotent.
func (e *Exchange) Cancel() string {
	return e.session.Cancel()
}

// Text snapshots the accumulated text without waiting.
func (e *Exchange) Text() string {
	return e.session.Text()
}

// Send starts a new streaming exchange. Any active exchange is
// cancelled first; the retire-then-start transition is the
// linearization point for the single-flight contract. onDelta fires on
// the read goroutine strictly in receipt order; it may be nil.
func (c *Client) Send(ctx context.Context, req SendRequest, onDelta func(Delta)) (*Exchange, error) {
	c.mu.Lock()
	if prev := c.current; prev != nil {
		prev.Cancel()
		c.current = nil
	}
	if req.Context == nil {
		req.Context = c.lastContext
	}
	c.mu.Unlock()

	wireReq, err := c.adapter.BuildSend(req)
	if err != nil {
		return nil, err
	}

	ex := &Exchange{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}

	lineFn := func(line []byte) (transport.LineResult, error) {
		delta, err := c.adapter.ExtractDelta(line)
		if err != nil {
			return transport.LineResult{}, err
		}
		if delta == nil {
			return transport.LineResult{}, nil
		}
		if delta.Context != nil {
			ex.context = delta.Context
		}
		if delta.Text != "" && onDelta != nil {
			onDelta(*delta)
		}
		return transport.LineResult{Text: delta.Text, Done: delta.Done}, nil
	}

	session, err := c.transport.Stream(ctx, *wireReq, lineFn)
	if err != nil {
		c.logger.Debug("send failed to open", "provider", c.adapter.Name(), "error", err)
		return nil, convertTransportError(c.adapter.Name(), err)
	}
	ex.session = session

	c.mu.Lock()
	c.current = ex
	c.mu.Unlock()

	c.logger.Debug("exchange started",
		"provider", c.adapter.Name(), "exchange", ex.ID, "model", req.Model)

	go c.finishExchange(ex)
	return ex, nil
}

// finishExchange settles the exchange outcome once the read loop ends
// and releases the current slot if this exchange still holds it.
func (c *Client) finishExchange(ex *Exchange) {
	defer close(ex.done)

	text, err := ex.session.Wait()
	if err != nil {
		ex.err = convertTransportError(c.adapter.Name(), err)
	} else {
		ex.result = Result{Text: text, Context: ex.context}
	}

	c.mu.Lock()
	if ex.err == nil && ex.context != nil {
		c.lastContext = ex.context
	}
	if c.current == ex {
		c.current = nil
	}
	c.mu.Unlock()

	c.logger.Debug("exchange finished",
		"provider", c.adapter.Name(), "exchange", ex.ID,
		"chunks", ex.session.Chunks(), "error", ex.err)
}

// Stop cancels the current exchange, if any, and returns whatever text
// had accumulated. Never an error.
func (c *Client) Stop() string {
	c.mu.Lock()
	ex := c.current
	c.mu.Unlock()

	if ex == nil {
		return ""
	}
	return ex.Cancel()
}

// Context returns the continuity token of the last completed exchange.
func (c *Client) Context() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastContext
}

// FetchModelNames lists the backend's chat-capable models, normalized
// and sorted. Catalog responses are cached briefly by the transport.
func (c *Client) FetchModelNames(ctx context.Context) ([]string, error) {
	wireReq, err := c.adapter.BuildListModels()
	if err != nil {
		return nil, err
	}

	body, err := c.transport.Get(ctx, *wireReq)
	if err != nil {
		return nil, convertTransportError(c.adapter.Name(), err)
	}

	names, err := c.adapter.ParseModelList(body)
	if err != nil {
		return nil, err
	}
	return NormalizeModelNames(names), nil
}
