// Package cmdlog prints build progress and results for people watching the
// terminal. Structured logs go through zap
package cmdlog

import (
	"fmt"
	"os"

	"github.com/gookit/color"
)

var (
	styleHeadline = color.Style{color.FgCyan, color.OpBold}
	styleWarn     = color.Style{color.FgYellow, color.OpBold}
	styleSuccess  = color.Style{color.FgGreen, color.OpBold}
)

// Logger writes colored lines to stdout
type Logger struct {
	emojis bool
}

// New returns a Logger. Colors are turned off on CI
func New() *Logger {
	if os.Getenv("CI") != "" {
		color.Disable()
	}
	return &Logger{emojis: EmojiSupported()}
}

// prefix returns e and a space when emojis are shown
func (l *Logger) prefix(e string) string {
	if !l.emojis || e == "" {
		return ""
	}
	return e + " "
}

// Headline starts a section, like "Building fancy-swords"
func (l *Logger) Headline(s string) {
	styleHeadline.Println(s)
}

// Info prints s as it is
func (l *Logger) Info(s string) {
	fmt.Println(s)
}

// Log prints s dimmed
func (l *Logger) Log(s string) {
	color.LightWhite.Println(s)
}

// Warn prints s in yellow
func (l *Logger) Warn(s string) {
	styleWarn.Println(l.prefix("⚠️") + s)
}

// Success prints s in green with a check mark
func (l *Logger) Success(s string) {
	styleSuccess.Println(l.prefix("✓") + s)
}

// NewTask returns a Task that counts up to steps
func (l *Logger) NewTask(steps int) *Task {
	return &Task{logger: l, steps: steps}
}

// Task prints numbered steps, "[2 / 6] 🧊 models"
type Task struct {
	logger  *Logger
	current int
	steps   int
}

// Step advances the task and prints the step named s
func (t *Task) Step(e string, s string) {
	t.current++
	fmt.Println(color.Cyan.Sprintf("[%d / %d] %s%s", t.current, t.steps, t.logger.prefix(e), s))
}

// Current returns the number of steps printed so far
func (t *Task) Current() int {
	return t.current
}
