package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/shpitdev/text-humanizer/internal/dispatch"
)

// Surface renders dispatcher output on a terminal.
//
// Output text goes to out; alerts go to errOut. The processing sentinel is dimmed.
type Surface struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	alertColor   *color.Color
	pendingColor *color.Color
}

var _ dispatch.Surface = (*Surface)(nil)

// NewSurface builds a Surface. noColor forces plain output regardless of the terminal.
func NewSurface(out, errOut io.Writer, noColor bool) *Surface {
	s := &Surface{
		out:          out,
		errOut:       errOut,
		alertColor:   color.New(color.FgYellow, color.Bold),
		pendingColor: color.New(color.Faint),
	}
	if noColor {
		s.alertColor.DisableColor()
		s.pendingColor.DisableColor()
	}
	return s
}

func (s *Surface) Alert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.errOut, s.alertColor.Sprint(msg))
}

func (s *Surface) SetOutput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == dispatch.ProcessingText {
		_, _ = fmt.Fprintln(s.out, s.pendingColor.Sprint(text))
		return
	}
	_, _ = fmt.Fprintln(s.out, text)
}
