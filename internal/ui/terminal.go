package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ecosistema/ecosistema-session/internal/api"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// ErrNotInteractive is returned by PromptConfirmer when there is no TTY to
// ask on.
var ErrNotInteractive = errors.New("ui: not an interactive terminal")

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Terminal renders notifications and the loading indicator as lines on a
// writer.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	loading string
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Success(title, message string) { t.toast(successStyle, "✓", title, message) }
func (t *Terminal) Error(title, message string)   { t.toast(errorStyle, "✗", title, message) }
func (t *Terminal) Info(title, message string)    { t.toast(infoStyle, "i", title, message) }
func (t *Terminal) Warning(title, message string) { t.toast(warningStyle, "!", title, message) }

func (t *Terminal) toast(style lipgloss.Style, icon, title, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, style.Render(icon+" "+title))
	if message != "" {
		for _, line := range strings.Split(message, "\n") {
			fmt.Fprintln(t.out, bodyStyle.Render("  "+line))
		}
	}
}

func (t *Terminal) Show(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loading = message
	fmt.Fprintln(t.out, bodyStyle.Render("… "+message))
}

func (t *Terminal) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = ""
}

// Loading returns the message of the indicator currently shown, if any.
func (t *Terminal) Loading() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// LogNavigator records redirects. A CLI has no pages to move between, so the
// route is logged and kept for whoever wants to act on it.
type LogNavigator struct {
	mu   sync.Mutex
	last string
}

func (n *LogNavigator) Redirect(route string) {
	n.mu.Lock()
	n.last = route
	n.mu.Unlock()
	log.Info().Str("route", route).Msg("redirect")
}

// Last returns the most recent route.
func (n *LogNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// LogRoleMarker logs the role and permissions applied to the UI.
type LogRoleMarker struct{}

func (LogRoleMarker) ApplyUser(user *api.User) {
	if user == nil {
		log.Debug().Msg("role markers cleared")
		return
	}
	log.Debug().Str("userId", user.ID).Str("role", user.Role).Strs("permissions", user.Permissions).Msg("role markers applied")
}

// PromptConfirmer asks on the terminal with a huh confirm field.
type PromptConfirmer struct {
	// Interactive reports whether a prompt can be shown. Defaults to
	// IsInteractiveTerminal.
	Interactive func() bool
}

func (p PromptConfirmer) Confirm(ctx context.Context, title, message string) (bool, error) {
	interactive := p.Interactive
	if interactive == nil {
		interactive = IsInteractiveTerminal
	}
	if !interactive() {
		return false, ErrNotInteractive
	}

	var answer bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(message).
				Affirmative("Sí").
				Negative("No").
				Value(&answer),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.RunWithContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, err
	}
	return answer, nil
}

// IsInteractiveTerminal returns true if both stdin and stdout are TTYs.
func IsInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
