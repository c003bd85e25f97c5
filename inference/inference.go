// Package inference wraps the External Inference collaborator: a generic text
// completion endpoint used for topic classification, chapter boundaries,
// summaries and emotion disambiguation.
//
// Every call goes through [Client], which enforces a call-level timeout and
// returns an explicit [Result] instead of an error that callers must remember
// to recover from. Structured replies are never trusted: [Structured] extracts
// the first balanced JSON region of the reply and decodes it tolerantly.
package inference

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// DefaultTimeout bounds one completion call.
const DefaultTimeout = 120 * time.Second

// Request is one completion call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer is implemented by concrete inference backends.
// An empty reply is treated as a failure.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Result is the outcome of one inference call site.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

// Fail wraps a classified failure.
func Fail[T any](kind analysis.Kind, op string, err error) Result[T] {
	return Result[T]{Err: analysis.NewError(kind, op, err)}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Kind returns the failure kind, or 0 on success.
func (r Result[T]) Kind() analysis.Kind {
	if r.Err == nil {
		return 0
	}
	return analysis.KindOf(r.Err)
}

// Or returns the value on success and fallback otherwise.
func (r Result[T]) Or(fallback T) T {
	if r.Err != nil {
		return fallback
	}
	return r.Value
}

var errEmptyReply = errors.New("empty completion")

// ErrNoCompleter is returned when no inference backend is configured.
var ErrNoCompleter = errors.New("no inference backend configured")

// Client calls a Completer with a per-call timeout.
type Client struct {
	completer Completer
	timeout   time.Duration
	log       logrus.FieldLogger
}

// NewClient builds a Client. A nil completer yields a client whose calls always
// fail with ExternalCallFailed, which drives every stage to its fallback.
func NewClient(c Completer, timeout time.Duration, log logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{completer: c, timeout: timeout, log: log}
}

// Enabled reports whether a backend is configured.
func (c *Client) Enabled() bool { return c != nil && c.completer != nil }

// Complete runs one call. op names the call site in errors and logs.
func (c *Client) Complete(ctx context.Context, op string, req Request) Result[string] {
	if !c.Enabled() {
		return Fail[string](analysis.ExternalCallFailed, op, ErrNoCompleter)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.completer.Complete(ctx, req)
	if err != nil {
		return Fail[string](analysis.ExternalCallFailed, op, err)
	}
	if strings.TrimSpace(out) == "" {
		return Fail[string](analysis.ExternalCallFailed, op, errEmptyReply)
	}

	c.log.WithFields(logrus.Fields{
		"op":       op,
		"elapsed":  time.Since(start).Round(time.Millisecond),
		"reply_sz": len(out),
	}).Debug("inference: completion received")
	return Ok(out)
}

// Structured runs one call and decodes the first JSON region of the reply into T.
func Structured[T any](ctx context.Context, c *Client, op string, req Request) Result[T] {
	reply := c.Complete(ctx, op, req)
	if !reply.OK() {
		return Result[T]{Err: reply.Err}
	}
	var v T
	if err := Decode(reply.Value, &v); err != nil {
		return Fail[T](analysis.ParseFailed, op, err)
	}
	return Ok(v)
}
