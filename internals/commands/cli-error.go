package commands

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/minepkg/propack/internals/cmdlog"
)

// CliError is an error that might get displayed to the user
type CliError struct {
	Text        string
	Code        string
	Suggestions []string
	Help        string
	// Err is the underlying error, if any
	Err error
}

func (e *CliError) Error() string {
	return e.Text
}

func (e *CliError) Unwrap() error { return e.Err }

// RichError renders the error box with help and suggestions
func (e *CliError) RichError() string {
	rendered := ErrorBox(e.Text, e.Help)
	if len(e.Suggestions) != 0 {
		suggestionText := "Suggestion:\n"
		if len(e.Suggestions) > 1 {
			suggestionText = "Suggestions:\n"
		}
		suggestionText = cmdlog.Emoji("📎 ") + suggestionText
		for _, s := range e.Suggestions {
			suggestionText += " ⦁ " + s + "\n"
		}
		rendered = lipgloss.JoinVertical(lipgloss.Left, rendered, styleHelpBox.Render(suggestionText))
	}
	return rendered
}

// FromErrors turns an aggregated error into a CliError listing every
// contained error in Help
func FromErrors(text string, err error) *CliError {
	errs := multierr.Errors(pkgerrors.Cause(err))
	if len(errs) <= 1 {
		return &CliError{Text: text + ": " + err.Error(), Err: err}
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = " ⦁ " + e.Error()
	}
	return &CliError{Text: text, Help: strings.Join(lines, "\n"), Err: err}
}

// Render formats err for the terminal
func Render(err error) string {
	var asCliErr *CliError
	if errors.As(err, &asCliErr) {
		return asCliErr.RichError() + "\n"
	}
	return ErrorBox(err.Error(), "")
}
