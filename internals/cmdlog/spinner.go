package cmdlog

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// MaybeSpinner is a spinner that just logs text when not attached to a terminal
type MaybeSpinner struct {
	Spin    bool
	Spinner *spinner.Spinner
}

// Start might start the spinner
func (m *MaybeSpinner) Start() {
	if m.Spin {
		m.Spinner.Start()
	}
}

// Stop will stop the spinner
func (m *MaybeSpinner) Stop() {
	if m.Spin {
		m.Spinner.Stop()
	}
}

// Update will update the spinner text
func (m *MaybeSpinner) Update(t string) {
	m.Spinner.Suffix = " " + t
	if !m.Spin {
		fmt.Println(t)
	}
}

// IsTerminal reports whether stdout is an interactive terminal
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewMaybeSpinner returns a spinner that only spins when spin is true
func NewMaybeSpinner(spin bool) *MaybeSpinner {
	s := &MaybeSpinner{
		Spin:    spin,
		Spinner: spinner.New(spinner.CharSets[9], 120*time.Millisecond),
	}
	s.Spinner.Prefix = " "
	return s
}
