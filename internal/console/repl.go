package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shpitdev/text-humanizer/internal/dispatch"
)

const replHelp = `Type text and press enter to process it.
Commands:
  :errors on|off        toggle "add errors"
  :professional on|off  toggle "keep professional"
  :level <value>        set the vocabulary level
  :show                 print the current options
  :quit                 exit`

// REPL drives a Dispatcher from line-oriented input. Each text line is one user
// action; the next line is read only after that action resolves.
type REPL struct {
	Dispatcher *dispatch.Dispatcher
	Surface    dispatch.Surface

	// Options holds the toggle and selection state. Text is ignored.
	Options dispatch.Input

	// Info receives help and option listings.
	Info io.Writer
}

// Run reads lines from in until EOF, :quit, or ctx ends.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	_, _ = fmt.Fprintln(r.Info, replHelp)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			quit, err := r.command(strings.Fields(strings.TrimSpace(line)))
			if err != nil {
				r.Surface.Alert(err.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		action := r.Options
		action.Text = line
		outcome, err := r.Dispatcher.Dispatch(ctx, action, r.Surface).Wait(ctx)
		if err != nil {
			return err
		}
		if outcome.State == dispatch.Rejected {
			r.Surface.Alert(dispatch.BusyAlert)
		}
	}
	return sc.Err()
}

func (r *REPL) command(fields []string) (quit bool, err error) {
	switch fields[0] {
	case ":quit", ":q":
		return true, nil
	case ":help":
		_, _ = fmt.Fprintln(r.Info, replHelp)
	case ":show":
		_, _ = fmt.Fprintf(r.Info, "add errors: %t\nkeep professional: %t\nvocabulary level: %s\n",
			r.Options.AddErrors, r.Options.KeepProfessional, r.Options.VocabularyLevel)
	case ":errors":
		v, err := onOff(fields)
		if err != nil {
			return false, err
		}
		r.Options.AddErrors = v
	case ":professional":
		v, err := onOff(fields)
		if err != nil {
			return false, err
		}
		r.Options.KeepProfessional = v
	case ":level":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: :level <value>")
		}
		r.Options.VocabularyLevel = fields[1]
	default:
		return false, fmt.Errorf("unknown command %s (try :help)", fields[0])
	}
	return false, nil
}

func onOff(fields []string) (bool, error) {
	if len(fields) != 2 {
		return false, fmt.Errorf("usage: %s on|off", fields[0])
	}
	switch strings.ToLower(fields[1]) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("usage: %s on|off", fields[0])
	}
}
