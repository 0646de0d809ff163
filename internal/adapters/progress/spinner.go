package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/catapult/internal/domain/models"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

var (
	confirmedColor = color.New(color.FgGreen)
	presumedColor  = color.New(color.FgWhite, color.Faint)
	faultedColor   = color.New(color.FgRed, color.Bold)
	infoColor      = color.New(color.FgCyan)
	errorColor     = color.New(color.FgRed)
)

// SpinnerSink renders plan and bootstrap progress as status lines, with a
// spinner while a transaction is waiting for its receipt.
type SpinnerSink struct {
	out       io.Writer
	spinner   *spinner.Spinner
	startedAt time.Time
}

// NewSpinnerSink creates a sink writing to stdout
func NewSpinnerSink() *SpinnerSink {
	return NewSpinnerSinkTo(os.Stdout)
}

// NewSpinnerSinkTo creates a sink writing to w
func NewSpinnerSinkTo(w io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.HideCursor = false
	return &SpinnerSink{out: w, spinner: s}
}

// OnProgress handles progress events
func (s *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Spinner {
		s.spinner.Suffix = " " + s.label(event)
		if !s.spinner.Active() {
			s.startedAt = time.Now()
			s.spinner.Start()
		}
		return
	}
	s.stop()

	outcome, _ := event.Metadata.(*models.StepOutcome)
	switch {
	case event.Stage == "step_confirmed" && outcome != nil:
		line := fmt.Sprintf("✓ %s", s.label(event))
		if outcome.Kind == models.StepDeploy {
			line += "  " + outcome.Address.Hex()
		}
		if !s.startedAt.IsZero() {
			line += fmt.Sprintf(" (%s)", time.Since(s.startedAt).Round(time.Millisecond))
		}
		confirmedColor.Fprintln(s.out, line)
	case event.Stage == "step_presumed" && outcome != nil:
		presumedColor.Fprintf(s.out, "⊘ %s  %s (slot %d consumed)\n", s.label(event), outcome.Predicted.Hex(), outcome.Slot)
	case event.Stage == "step_faulted":
		faultedColor.Fprintf(s.out, "✗ %s\n", s.label(event))
	case event.Message != "":
		infoColor.Fprintln(s.out, event.Message)
	}
}

// Info prints an info message
func (s *SpinnerSink) Info(message string) {
	s.pause(func() { infoColor.Fprintln(s.out, message) })
}

// Error prints an error message
func (s *SpinnerSink) Error(message string) {
	s.pause(func() { errorColor.Fprintln(s.out, message) })
}

func (s *SpinnerSink) label(event usecase.ProgressEvent) string {
	if event.Total > 0 && event.Current > 0 {
		return fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, event.Message)
	}
	return event.Message
}

func (s *SpinnerSink) stop() {
	if s.spinner.Active() {
		s.spinner.Stop()
	}
}

// pause stops the spinner around fn and restarts it if it was running
func (s *SpinnerSink) pause(fn func()) {
	wasActive := s.spinner.Active()
	s.stop()
	fn()
	if wasActive {
		s.spinner.Start()
	}
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
