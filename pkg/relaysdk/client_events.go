package relaysdk

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// EventStream is an open push subscription. The relay sends exactly one
// data event and closes; comment lines are keep-alives.
type EventStream struct {
	body      io.ReadCloser
	r         *bufio.Reader
	closeOnce sync.Once
}

// OpenEvents subscribes to the result of token. EventSource cannot set
// headers, so the token travels in the query string.
func (c *Client) OpenEvents(ctx context.Context, token string) (*EventStream, error) {
	u := c.url("/api/events") + "?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	client := c.StreamClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, parseErrorResponse(resp, body)
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "text/event-stream" {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected event stream content type %q", mt)
	}

	return &EventStream{body: resp.Body, r: bufio.NewReader(resp.Body)}, nil
}

// Next blocks until the next data event and returns its payload. A stream
// that ends before any data yields io.ErrUnexpectedEOF.
func (s *EventStream) Next() (Result, error) {
	var data bytes.Buffer
	for {
		line, err := s.r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if data.Len() > 0 {
				return Result{Raw: bytes.Clone(data.Bytes())}, nil
			}
		case strings.HasPrefix(line, ":"):
			// keep-alive
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if data.Len() > 0 {
					return Result{Raw: bytes.Clone(data.Bytes())}, nil
				}
				return Result{}, io.ErrUnexpectedEOF
			}
			return Result{}, err
		}
	}
}

// Await is Next bounded by ctx. The stream is closed when ctx ends.
func (s *EventStream) Await(ctx context.Context) (Result, error) {
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	res, err := s.Next()
	if err != nil && ctx.Err() != nil {
		return Result{}, context.Cause(ctx)
	}
	return res, err
}

// Close releases the connection. Safe to call more than once.
func (s *EventStream) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.body.Close() })
	return err
}
