package batch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/shpitdev/text-humanizer/internal/dispatch"
	"github.com/shpitdev/text-humanizer/internal/textproc"
	"github.com/shpitdev/text-humanizer/pkg/redact"
)

// Options controls a batch run. Every item gets at most one request; there are no retries.
type Options struct {
	Workers        int
	RequestTimeout time.Duration

	// RateLimitRPS is a global limit across all workers. Set to <=0 to disable.
	RateLimitRPS float64

	// FailFast aborts the run on the first failed item.
	FailFast bool

	// Template supplies the options sent with every text.
	Template textproc.Options

	// Logger receives failure detail; output rows only carry the generic failure text.
	// Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.RequestTimeout < 0 {
		o.RequestTimeout = 0
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// Row is the stable output schema for one input text.
type Row struct {
	Text         string
	ModifiedText string
	Status       string
	Error        string
}

const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Header returns the stable CSV header for Row.
func Header() []string {
	return []string{"text", "modified_text", "status", "error"}
}

func (r Row) record() []string {
	return []string{r.Text, r.ModifiedText, r.Status, r.Error}
}

// Run sends every text through p and returns one Row per input, in input order.
//
// Blank texts are marked invalid without a request. Unless FailFast is set, failures are
// recorded per row and do not fail the run.
func Run(ctx context.Context, texts []string, p textproc.Processor, opts Options) ([]Row, error) {
	opts = opts.withDefaults()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	out := make([]Row, len(texts))

	type job struct {
		idx  int
		text string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			if runCtx.Err() != nil {
				return
			}
			row, err := processOne(runCtx, j.idx, j.text, p, limiter, opts)
			out[j.idx] = row
			if err != nil && opts.FailFast {
				fail(err)
				return
			}
		}
	}

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go worker()
	}

feed:
	for i, text := range texts {
		select {
		case jobs <- job{idx: i, text: text}:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	mu.Lock()
	err := firstErr
	mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func failedRow(idx int, text string, err error, opts Options) Row {
	opts.Logger.WithFields(logrus.Fields{
		"row":   idx,
		"error": redact.Secrets(err.Error()),
	}).Error("batch text failed")
	return Row{Text: text, Status: StatusError, Error: dispatch.FailureText}
}

func processOne(ctx context.Context, idx int, text string, p textproc.Processor, limiter *rate.Limiter, opts Options) (Row, error) {
	req := textproc.Request{Text: text, Options: opts.Template}
	if err := req.Validate(); err != nil {
		return Row{Text: text, Status: StatusInvalid, Error: err.Error()}, err
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return failedRow(idx, text, err, opts), err
		}
	}

	reqCtx := ctx
	if opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, opts.RequestTimeout)
		defer cancel()
	}

	resp, err := p.ProcessText(reqCtx, req)
	if err != nil {
		return failedRow(idx, text, err, opts), err
	}
	return Row{Text: text, ModifiedText: resp.ModifiedText, Status: StatusOK}, nil
}
