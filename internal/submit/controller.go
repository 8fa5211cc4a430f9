// Package submit owns the submission state machine: Idle, Pending, Succeeded
// and Failed, with at most one request in flight.
package submit

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/csheth/legalchain/internal/backend"
	"github.com/csheth/legalchain/internal/nda"
)

// FailureMessage is the only failure text ever shown to users.
const FailureMessage = "Failed to generate NDA. Please try again."

// DefaultTimeout bounds a single attempt when Config.Timeout is zero.
const DefaultTimeout = 2 * time.Minute

// ErrInFlight is returned by Begin and Submit while a request is pending.
var ErrInFlight = errors.New("submit: a generation request is already in flight")

var errNoBackend = errors.New("submit: no backend configured")

// Status tags the controller state.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the controller state.
type Snapshot struct {
	Status     Status
	AttemptID  string
	Input      nda.FormInput
	Document   string
	Message    string
	Cause      error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration reports how long the attempt took, or zero while pending.
func (s Snapshot) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Generator produces document text; backend.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, input nda.FormInput) (string, error)
}

// Config wires the controller's collaborators.
type Config struct {
	Backend Generator
	// Timeout bounds each attempt. Zero means DefaultTimeout; negative disables it.
	Timeout time.Duration
	// OnChange is invoked after every transition, in order and outside the
	// controller lock. It may read Snapshot, Pending or Document but must not
	// call Begin or Submit.
	OnChange func(Snapshot)
	Now      func() time.Time
}

// Controller serializes submissions against a single backend.
type Controller struct {
	cfg Config

	mu    sync.Mutex
	state Snapshot
	seq   uint64

	// notifyMu guards delivered and is never acquired while mu is held.
	// Transitions are handed to OnChange in seq order.
	notifyMu  sync.Mutex
	notified  *sync.Cond
	delivered uint64
}

// New returns a controller in the Idle state.
func New(cfg Config) *Controller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Controller{cfg: cfg, state: Snapshot{Status: StatusIdle}}
	c.notified = sync.NewCond(&c.notifyMu)
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether a request is in flight.
func (c *Controller) Pending() bool {
	return c.Snapshot().Status == StatusPending
}

// Document returns the last generated text when the controller is Succeeded.
func (c *Controller) Document() (string, bool) {
	snap := c.Snapshot()
	if snap.Status != StatusSucceeded {
		return "", false
	}
	return snap.Document, true
}

// Attempt is a submission that has entered Pending but has not been sent yet.
type Attempt struct {
	ID    string
	Input nda.FormInput

	controller *Controller
	ran        atomic.Bool
}

// Begin moves the controller to Pending, discarding any previous result or
// error. The request itself is issued by Attempt.Run.
func (c *Controller) Begin(input nda.FormInput) (*Attempt, error) {
	c.mu.Lock()
	if c.state.Status == StatusPending {
		c.mu.Unlock()
		return nil, ErrInFlight
	}
	id := uuid.NewString()
	c.state = Snapshot{
		Status:    StatusPending,
		AttemptID: id,
		Input:     input,
		StartedAt: c.cfg.Now(),
	}
	snap := c.state
	c.seq++
	seq := c.seq
	c.mu.Unlock()
	c.deliver(seq, snap)

	log.Printf("[submit] %s pending (%s / %s)", id, input.PartyOne, input.PartyTwo)
	return &Attempt{ID: id, Input: input, controller: c}, nil
}

// Run issues the request and blocks until the backend answers, the attempt
// times out, or ctx is cancelled. Calling Run more than once returns the
// current state without issuing another request.
func (a *Attempt) Run(ctx context.Context) Snapshot {
	c := a.controller
	if !a.ran.CompareAndSwap(false, true) {
		return c.Snapshot()
	}
	if c.cfg.Backend == nil {
		return c.finish(a.ID, "", errNoBackend)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	text, err := c.cfg.Backend.Generate(backend.WithRequestID(ctx, a.ID), a.Input)
	return c.finish(a.ID, text, err)
}

// Submit is Begin followed by Run.
func (c *Controller) Submit(ctx context.Context, input nda.FormInput) (Snapshot, error) {
	attempt, err := c.Begin(input)
	if err != nil {
		return c.Snapshot(), err
	}
	return attempt.Run(ctx), nil
}

func (c *Controller) finish(id, text string, err error) Snapshot {
	c.mu.Lock()
	if c.state.AttemptID != id || c.state.Status != StatusPending {
		snap := c.state
		c.mu.Unlock()
		return snap
	}
	c.state.FinishedAt = c.cfg.Now()
	if err != nil {
		c.state.Status = StatusFailed
		c.state.Message = FailureMessage
		c.state.Cause = err
	} else {
		c.state.Status = StatusSucceeded
		c.state.Document = text
	}
	snap := c.state
	c.seq++
	seq := c.seq
	c.mu.Unlock()
	c.deliver(seq, snap)

	log.Printf("[submit] %s %s (duration=%s, err=%v)", id, snap.Status, snap.Duration(), err)
	return snap
}

// deliver waits for every earlier transition to be delivered, then hands
// snap to OnChange.
func (c *Controller) deliver(seq uint64, snap Snapshot) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for c.delivered != seq-1 {
		c.notified.Wait()
	}
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(snap)
	}
	c.delivered = seq
	c.notified.Broadcast()
}
