package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/ecosistema/ecosistema-session/internal/api"
	"github.com/ecosistema/ecosistema-session/internal/events"
	"github.com/ecosistema/ecosistema-session/internal/ui"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var errNotSignedIn = errors.New("not signed in, run login first")

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	remember := fs.Bool("remember", true, "keep the session after the process exits; -remember=false ends it with the process")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if (*email == "" || *password == "") && ui.IsInteractiveTerminal() {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Correo electrónico").Value(email),
				huh.NewInput().Title("Contraseña").EchoMode(huh.EchoModePassword).Value(password),
				huh.NewConfirm().Title("¿Recordar sesión?").Affirmative("Sí").Negative("No").Value(remember),
			),
		).WithTheme(huh.ThemeBase16())
		if err := form.RunWithContext(ctx); err != nil {
			return err
		}
	}

	return a.controller.Login(ctx, strings.TrimSpace(*email), *password, *remember)
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	var reg api.Registration
	fs.StringVar(&reg.FirstName, "first-name", "", "first name")
	fs.StringVar(&reg.LastName, "last-name", "", "last name")
	fs.StringVar(&reg.Email, "email", "", "account email")
	fs.StringVar(&reg.Password, "password", "", "account password")
	fs.StringVar(&reg.ConfirmPassword, "confirm-password", "", "repeat the password; defaults to -password")
	fs.StringVar(&reg.Role, "role", "", "requested role")
	fs.BoolVar(&reg.AcceptTerms, "accept-terms", false, "accept the terms and conditions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if reg.Email == "" && ui.IsInteractiveTerminal() {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Nombre").Value(&reg.FirstName),
				huh.NewInput().Title("Apellido").Value(&reg.LastName),
				huh.NewInput().Title("Correo electrónico").Value(&reg.Email),
			),
			huh.NewGroup(
				huh.NewInput().Title("Contraseña").EchoMode(huh.EchoModePassword).Value(&reg.Password),
				huh.NewInput().Title("Repite la contraseña").EchoMode(huh.EchoModePassword).Value(&reg.ConfirmPassword),
				huh.NewConfirm().Title("¿Aceptas los términos y condiciones?").Affirmative("Sí").Negative("No").Value(&reg.AcceptTerms),
			),
		).WithTheme(huh.ThemeBase16())
		if err := form.RunWithContext(ctx); err != nil {
			return err
		}
	} else if reg.ConfirmPassword == "" {
		reg.ConfirmPassword = reg.Password
	}

	return a.controller.Register(ctx, reg)
}

func runLogout(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("logout")
	quiet := fs.Bool("quiet", false, "don't print a confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.controller.LoadSession()
	a.controller.Logout(ctx, !*quiet)
	return nil
}

func runStatus(ctx context.Context, a *app, args []string) error {
	if err := newFlagSet("status").Parse(args); err != nil {
		return err
	}

	if !a.controller.LoadSession() {
		a.printf("Sin sesión\n")
		return nil
	}
	if !a.controller.CheckAuthStatus(ctx) && !a.controller.IsAuthenticated() {
		a.printf("Sesión expirada\n")
		return nil
	}
	a.printSession()
	return nil
}

func runRefresh(ctx context.Context, a *app, args []string) error {
	if err := newFlagSet("refresh").Parse(args); err != nil {
		return err
	}

	if !a.controller.LoadSession() {
		return errNotSignedIn
	}
	if !a.controller.RefreshToken(ctx) {
		return errors.New("could not refresh the session")
	}
	a.printSession()
	return nil
}

func runWhoami(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("whoami")
	asJSON := fs.Bool("json", false, "print the user as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.controller.LoadSession() {
		return errNotSignedIn
	}
	if *asJSON {
		data, err := json.MarshalIndent(a.controller.CurrentUser(), "", "  ")
		if err != nil {
			return err
		}
		a.printf("%s\n", data)
		return nil
	}
	a.printSession()
	return nil
}

// runGet fetches an arbitrary API path with the session attached, going
// through the same refresh-on-401 handling as every other request.
func runGet(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: get <path>")
	}

	a.controller.LoadSession()

	var body json.RawMessage
	if err := a.client.Get(ctx, fs.Arg(0), &body); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		a.printf("%s\n", body)
		return nil
	}
	a.printf("%s\n", out.String())
	return nil
}

// runWatch keeps the session alive: expiry warnings and silent refreshes
// fire on schedule, and the backend is polled every -interval. Returns when
// interrupted or when the session ends.
func runWatch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("watch")
	interval := fs.Duration("interval", 5*time.Minute, "how often to confirm the session with the backend")
	metricsAddr := fs.String("metrics", "", "serve Prometheus metrics on this address, e.g. :9090")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.controller.LoadSession() {
		return errNotSignedIn
	}
	if !a.controller.CheckAuthStatus(ctx) && !a.controller.IsAuthenticated() {
		return errNotSignedIn
	}
	a.printSession()

	g, ctx := errgroup.WithContext(ctx)
	ended := make(chan struct{})
	var endOnce sync.Once

	unsubscribe := events.Subscribe(a.bus, events.StatusChanged, func(s events.StatusChange) {
		if s.IsAuthenticated {
			log.Info().Str("userId", s.User.ID).Msg("session renewed")
			return
		}
		endOnce.Do(func() { close(ended) })
	})
	defer unsubscribe()

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		g.Go(func() error {
			log.Info().Str("addr", *metricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ended:
				return errSessionEnded
			case <-ticker.C:
				a.controller.CheckAuthStatus(ctx)
			}
		}
	})

	err := g.Wait()
	switch {
	case errors.Is(err, errSessionEnded):
		log.Info().Msg("session ended, stopping watch")
		return nil
	case errors.Is(err, context.Canceled):
		log.Info().Msg("watch interrupted")
		return nil
	default:
		return err
	}
}

var errSessionEnded = errors.New("session ended")

func (a *app) printSession() {
	s := a.controller.Snapshot()
	if !s.IsAuthenticated {
		a.printf("Sin sesión\n")
		return
	}

	name := s.User.FullName()
	if name == "" {
		name = s.User.Email
	}
	a.printf("Usuario:   %s <%s>\n", name, s.User.Email)
	a.printf("ID:        %s\n", s.User.ID)
	a.printf("Rol:       %s\n", s.User.Role)
	if len(s.User.Permissions) > 0 {
		a.printf("Permisos:  %s\n", strings.Join(s.User.Permissions, ", "))
	}
	if !s.ExpiresAt.IsZero() {
		a.printf("Expira:    %s\n", s.ExpiresAt.Local().Format(time.DateTime))
	}
	a.printf("Recordar:  %t\n", s.RememberMe)
}
