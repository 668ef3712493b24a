// Package ui holds the collaborators the session controller drives to talk
// to the person in front of the screen: notifications, a loading indicator,
// navigation, a confirm dialog and role markers.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ecosistema/ecosistema-session/internal/api"
	"github.com/lithammer/dedent"
)

// Notifier shows toast-style messages.
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
	Info(title, message string)
	Warning(title, message string)
}

// Loader is a blocking loading indicator.
type Loader interface {
	Show(message string)
	Hide()
}

// Navigator moves the user to another route.
type Navigator interface {
	Redirect(route string)
}

// Confirmer asks a yes/no question. Implementations must return when ctx is
// done.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// RoleMarker updates role-gated UI for the signed-in user. A nil user means
// nobody is signed in.
type RoleMarker interface {
	ApplyUser(user *api.User)
}

// FormatMessage dedents a multi-line message and applies fmt verbs.
func FormatMessage(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}
