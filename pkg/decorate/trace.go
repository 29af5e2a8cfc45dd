package decorate

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// TracePhase marks whether an event was emitted before or after the
// wrapped operation.
type TracePhase string

const (
	PhaseBegin TracePhase = "begin"
	PhaseEnd   TracePhase = "end"
)

// TraceEvent is one structured record of an intercepted call.
type TraceEvent struct {
	Time    time.Time
	Phase   TracePhase
	Kind    CallKind
	Name    string
	Locator string
	Session string
	Elapsed time.Duration
	Err     error
}

// TraceSink receives trace events. Sinks may be written to from
// multiple test goroutines concurrently and must serialize their own
// output.
type TraceSink interface {
	Emit(ev TraceEvent)
}

// Trace is the logging decorator: it emits a begin event, runs the
// operation, and emits an end event carrying elapsed time and any
// failure. The failure is always re-propagated untouched.
type Trace struct {
	sink TraceSink
}

// NewTrace creates a trace decorator writing to sink.
func NewTrace(sink TraceSink) *Trace {
	return &Trace{sink: sink}
}

// Wrap implements Decorator.
func (t *Trace) Wrap(call Call, op Operation) Operation {
	return func() error {
		start := time.Now()
		t.sink.Emit(TraceEvent{
			Time:    start,
			Phase:   PhaseBegin,
			Kind:    call.Kind,
			Name:    call.Name,
			Locator: locatorLabel(call),
			Session: call.Session,
		})

		err := op()

		t.sink.Emit(TraceEvent{
			Time:    time.Now(),
			Phase:   PhaseEnd,
			Kind:    call.Kind,
			Name:    call.Name,
			Locator: locatorLabel(call),
			Session: call.Session,
			Elapsed: time.Since(start),
			Err:     err,
		})
		return err
	}
}

func locatorLabel(call Call) string {
	if call.Locator.IsZero() {
		return ""
	}
	return call.Locator.String()
}

var (
	traceNameStyle    = lipgloss.NewStyle().Bold(true)
	traceLocatorStyle = lipgloss.NewStyle().Faint(true)
	traceOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	traceFailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// ConsoleSink renders trace events as single styled lines, one per
// event. Writes are mutex-guarded because parallel test goroutines
// share one terminal.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink creates a console sink writing to out.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

// Emit implements TraceSink.
func (s *ConsoleSink) Emit(ev TraceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("%s %s %s",
		ev.Time.Format("15:04:05.000"),
		traceNameStyle.Render(ev.Name),
		traceLocatorStyle.Render(ev.Locator))

	switch {
	case ev.Phase == PhaseBegin:
		line += " ..."
	case ev.Err != nil:
		line += fmt.Sprintf(" %s (%s): %v", traceFailStyle.Render("FAIL"), ev.Elapsed.Round(time.Millisecond), ev.Err)
	default:
		line += fmt.Sprintf(" %s (%s)", traceOKStyle.Render("ok"), ev.Elapsed.Round(time.Millisecond))
	}

	fmt.Fprintln(s.out, line)
}
