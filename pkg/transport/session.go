package transport

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Streaming lines can carry whole documents (file-edit payloads), so the
// scanner buffer is generous.
const maxLineBytes = 8 << 20

// LineResult is what a LineFunc extracted from one decoded line.
type LineResult struct {
	// Text is appended to the session accumulator. Empty means the line
	// carried nothing visible (keep-alives, malformed chunks).
	Text string

	// Done marks the backend's end-of-stream sentinel; reading stops.
	Done bool
}

// LineFunc transforms one raw line into accumulator text. It runs on the
// session's read goroutine, strictly in receipt order. A non-nil error is
// terminal for the stream.
type LineFunc func(line []byte) (LineResult, error)

// Session is one in-flight streaming exchange. Text accumulation is
// append-only; once cancelled no further mutation happens.
type Session struct {
	abort context.CancelFunc
	done  chan struct{}

	mu        sync.Mutex
	text      strings.Builder
	chunks    int
	cancelled bool
	readErr   error
}

// Stream opens a streaming request and spawns the read loop. Connection
// errors and non-2xx statuses fail here, before a Session exists.
func (c *Client) Stream(ctx context.Context, req Request, fn LineFunc) (*Session, error) {
	ctx, cancel := context.WithCancel(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		cancel()
		return nil, err
	}
	applyHeaders(httpReq, req.Headers)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		_ = resp.Body.Close()
		cancel()
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	s := &Session{
		abort: cancel,
		done:  make(chan struct{}),
	}
	go s.readLoop(resp.Body, fn)
	return s, nil
}

func (s *Session) readLoop(body io.ReadCloser, fn LineFunc) {
	defer close(s.done)
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		// A line can still be buffered when Cancel lands; it must not
		// reach the caller after that.
		s.mu.Lock()
		cancelled := s.cancelled
		s.mu.Unlock()
		if cancelled {
			return
		}

		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		res, err := fn(line)
		if err != nil {
			s.finish(err)
			return
		}

		if res.Text != "" {
			s.mu.Lock()
			if s.cancelled {
				s.mu.Unlock()
				return
			}
			s.text.WriteString(res.Text)
			s.chunks++
			s.mu.Unlock()
		}

		if res.Done {
			s.finish(nil)
			return
		}
	}

	s.finish(scanner.Err())
}

// finish records the terminal state of the read loop. A session that was
// cancelled keeps its cancelled outcome regardless of how the aborted
// read surfaces.
func (s *Session) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cancelled {
		s.readErr = err
	}
}

// Cancel aborts the connection and synchronously returns the text
// accumulated so far. Safe to call repeatedly or after completion; any
// line processing still in flight becomes a no-op.
func (s *Session) Cancel() string {
	s.mu.Lock()
	s.cancelled = true
	text := s.text.String()
	s.mu.Unlock()

	s.abort()
	return text
}

// Wait blocks until the read loop ends and applies the partial-result
// rule: a failure with zero accumulated chunks propagates, a failure
// after at least one chunk degrades to success with the partial text.
// Cancellation is never an error.
func (s *Session) Wait() (string, error) {
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil && s.chunks == 0 {
		return "", s.readErr
	}
	return s.text.String(), nil
}

// Text snapshots the accumulator without waiting for completion.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// Chunks reports how many lines have contributed text so far.
func (s *Session) Chunks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chunks
}
