package session

import (
	"context"
	"time"

	"github.com/bep/debounce"

	"github.com/shaban/dspgraph/config"
	"github.com/shaban/dspgraph/engine"
)

// DefaultCommitWait coalesces bursts of edits (dragging a numeric field)
// into one engine commit.
const DefaultCommitWait = 250 * time.Millisecond

// Committer writes the session's current document through to the engine,
// debounced so rapid successive edits collapse into the latest state. Commit
// failures reach the error callback; the session itself is never touched, so
// the UI keeps its edits and can retry.
type Committer struct {
	session   *Session
	ctrl      engine.Controller
	debounced func(func())
	timeout   time.Duration
	onError   func(error)
	stop      func()
}

// NewCommitter wires a committer to a session. wait <= 0 selects
// DefaultCommitWait; onError may be nil to drop failures silently.
func NewCommitter(s *Session, ctrl engine.Controller, wait time.Duration, onError func(error)) *Committer {
	if wait <= 0 {
		wait = DefaultCommitWait
	}
	c := &Committer{
		session:   s,
		ctrl:      ctrl,
		debounced: debounce.New(wait),
		timeout:   engine.DefaultTimeout,
		onError:   onError,
	}
	c.stop = s.Subscribe(func(*config.Config) { c.Commit() })
	return c
}

// Commit schedules a debounced write-through of the current document.
func (c *Committer) Commit() {
	c.debounced(c.flush)
}

// Flush writes the current document immediately, bypassing the debounce.
func (c *Committer) Flush() {
	c.flush()
}

// Close detaches the committer from the session. Pending debounced commits
// may still fire once.
func (c *Committer) Close() {
	c.stop()
}

func (c *Committer) flush() {
	cfg := c.session.Config()
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.ctrl.SetConfig(ctx, cfg); err != nil && c.onError != nil {
		c.onError(err)
	}
}
