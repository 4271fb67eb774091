package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/shpitdev/text-humanizer/internal/textproc"
	"github.com/shpitdev/text-humanizer/pkg/redact"
)

// User-facing strings written to the Surface.
const (
	ProcessingText  = "Processing..."
	EmptyInputAlert = "Please enter some text to process."
	FailureText     = "An error occurred while processing the text."
	BusyAlert       = "A request is already being processed. Please try again shortly."
)

// ErrBusy is the outcome error when a dispatch is already in flight or the trigger is throttled.
var ErrBusy = errors.New("dispatch already in flight")

// Input is the state of the four input controls at the moment of the user action.
type Input struct {
	Text             string
	AddErrors        bool
	KeepProfessional bool
	VocabularyLevel  string
}

// Request builds the wire request. Text is passed through untrimmed.
func (in Input) Request() textproc.Request {
	return textproc.Request{
		Text: in.Text,
		Options: textproc.Options{
			AddErrors:        in.AddErrors,
			KeepProfessional: in.KeepProfessional,
			VocabularyLevel:  in.VocabularyLevel,
		},
	}
}

// Surface is the UI collaborator: an alert channel and the single output element.
type Surface interface {
	Alert(msg string)
	SetOutput(text string)
}

// Options configures a Dispatcher.
type Options struct {
	// Logger is the operator-facing diagnostic channel. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger

	// MinInterval is the minimum spacing between accepted activations. Zero disables throttling.
	MinInterval time.Duration

	// NewID generates per-dispatch correlation ids. Defaults to random UUIDs.
	NewID func() string
}

// Dispatcher turns user actions into single requests against a Processor and renders
// the outcome on a Surface. It is constructed once and attached to one trigger.
//
// At most one dispatch is in flight; activations that arrive meanwhile are rejected
// without touching the network or the surface.
type Dispatcher struct {
	proc    textproc.Processor
	log     logrus.FieldLogger
	limiter *rate.Limiter
	newID   func() string

	// phase holds the dispatcher's current State: Idle, Validating or Dispatched.
	phase atomic.Int32
}

// New constructs a Dispatcher that sends requests through p.
func New(p textproc.Processor, opts Options) *Dispatcher {
	d := &Dispatcher{
		proc:  p,
		log:   opts.Logger,
		newID: opts.NewID,
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	if d.newID == nil {
		d.newID = func() string { return uuid.New().String() }
	}
	if opts.MinInterval > 0 {
		d.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return d
}

// State is Validating while an activation is being checked, Dispatched while a request
// is outstanding and Idle otherwise.
func (d *Dispatcher) State() State {
	return State(d.phase.Load())
}

// Dispatch handles one user action.
//
// Validation and the processing sentinel happen before Dispatch returns; the network
// call runs in the background and resolves the returned Pending exactly once. Cancelling
// ctx after Dispatch returns does not abort the request.
func (d *Dispatcher) Dispatch(ctx context.Context, in Input, out Surface) *Pending {
	id := d.newID()
	log := d.log.WithField("dispatch_id", id)

	if !d.phase.CompareAndSwap(int32(Idle), int32(Validating)) {
		log.Info("dispatch rejected: request already in flight")
		return resolved(Outcome{ID: id, State: Rejected, Err: ErrBusy})
	}

	// Invalid input never consumes a throttle token.
	req := in.Request()
	if err := req.Validate(); err != nil {
		out.Alert(EmptyInputAlert)
		d.phase.Store(int32(Idle))
		return resolved(Outcome{ID: id, State: Aborted, Err: err})
	}
	if d.limiter != nil && !d.limiter.Allow() {
		d.phase.Store(int32(Idle))
		log.Info("dispatch rejected: trigger throttled")
		return resolved(Outcome{ID: id, State: Rejected, Err: ErrBusy})
	}

	d.phase.Store(int32(Dispatched))
	out.SetOutput(ProcessingText)
	p := newPending()

	reqCtx := textproc.WithRequestID(context.WithoutCancel(ctx), id)
	go d.run(reqCtx, id, req, out, p, log)

	return p
}

func (d *Dispatcher) run(ctx context.Context, id string, req textproc.Request, out Surface, p *Pending, log logrus.FieldLogger) {
	start := time.Now()
	outcome := Outcome{ID: id}

	defer func() {
		d.phase.Store(int32(Idle))
		p.resolve(outcome)
	}()

	resp, err := d.call(ctx, req)
	if err != nil {
		log.WithFields(logrus.Fields{
			"elapsed": time.Since(start).String(),
			"error":   redact.Secrets(err.Error()),
		}).Error("text processing request failed")
		out.SetOutput(FailureText)
		outcome.State = Failed
		outcome.Err = err
		return
	}

	log.WithField("elapsed", time.Since(start).String()).Debug("text processing request succeeded")
	out.SetOutput(resp.ModifiedText)
	outcome.State = Succeeded
	outcome.Text = resp.ModifiedText
}

// call contains processor panics so they surface as transport failures.
func (d *Dispatcher) call(ctx context.Context, req textproc.Request) (resp textproc.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &textproc.TransportError{Op: "processText", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	resp, err = d.proc.ProcessText(ctx, req)
	if err != nil {
		var te *textproc.TransportError
		if !errors.As(err, &te) {
			err = &textproc.TransportError{Op: "processText", Err: err}
		}
	}
	return resp, err
}
