package relaysdk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPollInterval is the wait between result polls.
	DefaultPollInterval = time.Second

	// DefaultAwaitTimeout bounds how long a submission waits for the
	// engine's callback.
	DefaultAwaitTimeout = 10 * time.Minute

	// TimeoutMessage is shown when no result arrived in time.
	TimeoutMessage = "No response received from the workflow engine"
)

// Mode selects how a submission's answer is obtained.
type Mode string

const (
	// ModeAuto treats a synchronous reply carrying text, output or data as
	// the answer and waits for the callback otherwise.
	ModeAuto Mode = "auto"

	// ModeDirect always takes the synchronous reply.
	ModeDirect Mode = "direct"

	// ModeAsync always waits for the callback.
	ModeAsync Mode = "async"
)

// Status is the terminal state of a submission that did not fail.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusTimedOut  Status = "timed_out"
)

// Via names the path the result arrived on.
type Via string

const (
	ViaDirect Via = "direct"
	ViaPush   Via = "push"
	ViaPoll   Via = "poll"
)

// Job is one conversion request.
type Job struct {
	Criteria     string
	Agent        string
	OutputFormat string
}

// Outcome is what a submission produced. A timeout is an Outcome carrying
// Message, not an error.
type Outcome struct {
	Status  Status
	Via     Via
	Result  Result
	Message string
}

// Text renders the outcome for display.
func (o Outcome) Text() string {
	if o.Status == StatusTimedOut {
		return o.Message
	}
	return o.Result.Text()
}

// Converter runs submissions against one relay. At most one submission is
// live at a time: starting a new one cancels the previous one with
// ErrSuperseded.
type Converter struct {
	Client       *Client
	Session      *Session
	Mode         Mode
	PollInterval time.Duration
	AwaitTimeout time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelCauseFunc
}

// NewConverter returns a converter with the default intervals.
func NewConverter(client *Client, session *Session) *Converter {
	return &Converter{
		Client:       client,
		Session:      session,
		Mode:         ModeAuto,
		PollInterval: DefaultPollInterval,
		AwaitTimeout: DefaultAwaitTimeout,
	}
}

// Submit runs job to completion: token, submission with a single
// re-authentication on 401, push subscription, then the push/poll race.
func (c *Converter) Submit(ctx context.Context, job Job) (Outcome, error) {
	if strings.TrimSpace(job.Criteria) == "" {
		return Outcome{}, errors.New("acceptance criteria required")
	}

	ctx, cancel := context.WithCancelCause(ctx)
	gen := c.begin(cancel)
	defer c.end(gen, cancel)

	out, err := c.run(ctx, job)
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		return Outcome{}, ErrSuperseded
	}
	return out, err
}

// Cancel aborts the live submission, if any.
func (c *Converter) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel(context.Canceled)
		c.cancel = nil
	}
}

func (c *Converter) begin(cancel context.CancelCauseFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel(ErrSuperseded)
	}
	c.gen++
	c.cancel = cancel
	return c.gen
}

func (c *Converter) end(gen uint64, cancel context.CancelCauseFunc) {
	cancel(context.Canceled)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.cancel = nil
	}
}

func (c *Converter) run(ctx context.Context, job Job) (Outcome, error) {
	token, err := c.Session.GetValid(ctx)
	if err != nil {
		return Outcome{}, err
	}

	req := ConvertRequest{
		AcceptanceCriteria: job.Criteria,
		AIAgent:            job.Agent,
		OutputFormat:       job.OutputFormat,
	}

	reply, err := c.Client.Convert(ctx, token, req)
	if errors.Is(err, ErrUnauthorized) {
		token, err = c.Session.Reauthenticate(ctx)
		if err != nil {
			return Outcome{}, err
		}
		reply, err = c.Client.Convert(ctx, token, req)
	}
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.Session.Invalidate()
		}
		return Outcome{}, err
	}

	if c.isDirect(reply) {
		return Outcome{Status: StatusDelivered, Via: ViaDirect, Result: reply}, nil
	}

	// The relay drops the token's previous result when it accepts a job and
	// replays a stored result to new subscribers, so subscribing after the
	// submission cannot miss a fast callback. A failure here leaves polling
	// as the only path.
	stream := c.openStream(ctx, token)
	return c.await(ctx, token, stream)
}

func (c *Converter) openStream(ctx context.Context, token string) *EventStream {
	stream, err := c.Client.OpenEvents(ctx, token)
	if err != nil {
		return nil
	}
	return stream
}

func closeStream(s *EventStream) {
	if s != nil {
		_ = s.Close()
	}
}

func (c *Converter) isDirect(reply Result) bool {
	switch c.Mode {
	case ModeDirect:
		return true
	case ModeAsync:
		return false
	}
	for _, name := range []string{"text", "output", "data"} {
		if _, ok := reply.Field(name); ok {
			return true
		}
	}
	return false
}

// errResolved stops the race once either path has a result.
var errResolved = errors.New("result resolved")

type delivery struct {
	via    Via
	result Result
}

// await races the push stream against polling. The first result wins and
// cancels the other path; polling keeps going alone if the stream fails.
func (c *Converter) await(ctx context.Context, token string, stream *EventStream) (Outcome, error) {
	timeout := c.AwaitTimeout
	if timeout <= 0 {
		timeout = DefaultAwaitTimeout
	}
	awaitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	defer closeStream(stream)

	found := make(chan delivery, 2)
	g, gctx := errgroup.WithContext(awaitCtx)

	if stream != nil {
		g.Go(func() error {
			res, err := stream.Await(gctx)
			if err != nil {
				// Polling carries on without the stream.
				return nil
			}
			found <- delivery{via: ViaPush, result: res}
			return errResolved
		})
	}

	g.Go(func() error {
		return c.poll(gctx, token, found)
	})

	err := g.Wait()

	select {
	case d := <-found:
		return Outcome{Status: StatusDelivered, Via: d.via, Result: d.result}, nil
	default:
	}

	if err != nil && !errors.Is(err, errResolved) {
		return Outcome{}, err
	}
	if ctx.Err() != nil {
		return Outcome{}, context.Cause(ctx)
	}
	if errors.Is(awaitCtx.Err(), context.DeadlineExceeded) {
		return Outcome{Status: StatusTimedOut, Message: TimeoutMessage}, nil
	}
	return Outcome{}, fmt.Errorf("result wait ended without a result")
}

func (c *Converter) poll(ctx context.Context, token string, found chan<- delivery) error {
	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		res, ok, err := c.Client.GetResult(ctx, token)
		switch {
		case errors.Is(err, ErrUnauthorized):
			c.Session.Invalidate()
			return err
		case err != nil:
			// Transient; try again next tick.
			continue
		case ok:
			found <- delivery{via: ViaPoll, result: res}
			return errResolved
		}
	}
}
