package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/bnema/permstore/internal/application/port"
	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/logging"
)

var (
	// ErrNoTerminal is returned when a prompt is needed but stdin or stdout
	// is not a terminal.
	ErrNoTerminal = errors.New("permission prompt needs an interactive terminal")

	// ErrPromptDismissed is returned when the user closes the prompt
	// without answering.
	ErrPromptDismissed = errors.New("permission prompt dismissed")
)

// TerminalPrompter asks permission questions with a Bubble Tea dialog.
type TerminalPrompter struct {
	theme  *styles.Theme
	input  io.Reader
	output io.Writer

	// interactive reports whether a dialog can be shown.
	interactive func() bool
}

var _ port.PermissionPrompter = (*TerminalPrompter)(nil)

// NewTerminalPrompter prompts on the process's stdin and stdout.
func NewTerminalPrompter(theme *styles.Theme) *TerminalPrompter {
	return &TerminalPrompter{
		theme:       theme,
		input:       os.Stdin,
		output:      os.Stdout,
		interactive: stdioIsTerminal,
	}
}

func stdioIsTerminal() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PromptPermission shows the dialog and blocks until it is answered,
// dismissed, or ctx is done.
func (p *TerminalPrompter) PromptPermission(
	ctx context.Context,
	origin string,
	kind entity.PermissionKind,
) (port.PermissionPromptResult, error) {
	log := logging.FromContext(ctx)

	if p.interactive != nil && !p.interactive() {
		log.Debug().Msg("not a terminal, cannot prompt")
		return port.PermissionPromptResult{}, ErrNoTerminal
	}

	program := tea.NewProgram(
		styles.NewPrompt(p.theme, origin, kind),
		tea.WithContext(ctx),
		tea.WithInput(p.input),
		tea.WithOutput(p.output),
	)
	final, err := program.Run()
	if err != nil {
		return port.PermissionPromptResult{}, fmt.Errorf("permission prompt: %w", err)
	}

	prompt, ok := final.(styles.PromptModel)
	if !ok {
		return port.PermissionPromptResult{}, fmt.Errorf("permission prompt: unexpected model %T", final)
	}
	result, answered := prompt.Result()
	if !answered {
		return port.PermissionPromptResult{}, ErrPromptDismissed
	}
	return result, nil
}
