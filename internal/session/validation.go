package session

import (
	"regexp"
	"strings"

	"github.com/ecosistema/ecosistema-session/internal/api"
)

const (
	minLoginPasswordLength    = 6
	minRegisterPasswordLength = 8
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError lists every problem found in a form before it is sent.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func validateLogin(email, password string) error {
	var problems []string
	if !isValidEmail(email) {
		problems = append(problems, MsgInvalidEmail)
	}
	switch {
	case password == "":
		problems = append(problems, MsgPasswordRequired)
	case len([]rune(password)) < minLoginPasswordLength:
		problems = append(problems, MsgPasswordTooShort(minLoginPasswordLength))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateRegistration(r api.Registration) error {
	var problems []string
	if strings.TrimSpace(r.FirstName) == "" {
		problems = append(problems, MsgFirstNameRequired)
	}
	if strings.TrimSpace(r.LastName) == "" {
		problems = append(problems, MsgLastNameRequired)
	}
	if !isValidEmail(r.Email) {
		problems = append(problems, MsgInvalidEmail)
	}
	if len([]rune(r.Password)) < minRegisterPasswordLength {
		problems = append(problems, MsgPasswordTooShort(minRegisterPasswordLength))
	}
	if r.Password != r.ConfirmPassword {
		problems = append(problems, MsgPasswordMismatch)
	}
	if !r.AcceptTerms {
		problems = append(problems, MsgTermsRequired)
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
