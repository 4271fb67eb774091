package dispatch

import (
	"context"
	"fmt"
)

// State is a step of the per-invocation lifecycle.
type State int

const (
	Idle State = iota
	Validating
	Aborted
	Dispatched
	Succeeded
	Failed
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Aborted:
		return "aborted"
	case Dispatched:
		return "dispatched"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the terminal result of one dispatch.
type Outcome struct {
	ID    string
	State State
	// Text is the rendered modifiedText on success.
	Text string
	// Err is a *textproc.ValidationError, a *textproc.TransportError or ErrBusy.
	Err error
}

// Pending is the future for a dispatch. It resolves exactly once.
type Pending struct {
	done    chan struct{}
	outcome Outcome
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolved(o Outcome) *Pending {
	p := newPending()
	p.resolve(o)
	return p
}

func (p *Pending) resolve(o Outcome) {
	p.outcome = o
	close(p.done)
}

// Done is closed once the outcome is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// State returns Dispatched while the request is outstanding, then the terminal state.
func (p *Pending) State() State {
	select {
	case <-p.done:
		return p.outcome.State
	default:
		return Dispatched
	}
}

// Wait blocks until the dispatch resolves or ctx ends. A ctx error only means the
// caller stopped waiting; the dispatch still completes.
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
