package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Display shows one spinner line per long-running step. On a non-TTY it
// prints plain start/finish lines instead, so logs stay readable.
type Display struct {
	caps    TerminalCapabilities
	symbols ProgressSymbols
	out     io.Writer
	spin    *spinner.Spinner
}

// NewDisplay creates a Display for the detected terminal.
func NewDisplay() *Display {
	caps := DetectTerminalCapabilities()
	return &Display{
		caps:    caps,
		symbols: SelectSymbols(caps),
		out:     os.Stdout,
	}
}

// Start begins a step with the given message.
func (d *Display) Start(message string) {
	if !d.caps.IsTTY {
		fmt.Fprintf(d.out, "%s...\n", message)
		return
	}
	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond,
		spinner.WithWriter(d.out))
	d.spin.Suffix = " " + message
	d.spin.Start()
}

// Update replaces the message of the running step.
func (d *Display) Update(message string) {
	if d.spin != nil {
		d.spin.Suffix = " " + message
	}
}

// Succeed finishes the step with a success mark.
func (d *Display) Succeed(message string) {
	d.stop()
	fmt.Fprintf(d.out, "%s %s\n", d.symbols.Checkmark, message)
}

// Fail finishes the step with a failure mark.
func (d *Display) Fail(message string) {
	d.stop()
	fmt.Fprintf(d.out, "%s %s\n", d.symbols.Failure, message)
}

func (d *Display) stop() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}
