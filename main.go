package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ecosistema/ecosistema-session/config"
	"github.com/ecosistema/ecosistema-session/internal/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: ecosistema-session <command> [flags]

Commands:
  setup     write the configuration file interactively
  login     sign in with email and password (-remember=false to forget it on exit)
  register  create an account
  logout    end the current session
  status    confirm the session with the backend
  refresh   exchange the refresh token for a new access token
  whoami    print the signed-in user
  get       GET an API path with the session token
  watch     keep the session alive until interrupted
`

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":    runLogin,
	"register": runRegister,
	"logout":   runLogout,
	"status":   runStatus,
	"refresh":  runRefresh,
	"whoami":   runWhoami,
	"get":      runGet,
	"watch":    runWatch,
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	name, args := os.Args[1], os.Args[2:]

	config.LoadEnvFile()

	if name == "setup" {
		if !runSetupWizard() {
			waitOnWindows()
			os.Exit(1)
		}
		return
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	if missing := config.MissingRequired(); len(missing) > 0 {
		if ui.IsInteractiveTerminal() {
			if !runSetupWizard() {
				waitOnWindows()
				os.Exit(1)
			}
		} else {
			fatalWithWait("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fatalWithWait("invalid configuration: %v", err)
	}

	closeLog := setupLogging(cfg.LogLevel)
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		fatalWithWait("failed to start: %v", err)
	}
	defer a.Close()

	if err := cmd(ctx, a, args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(2)
		}
		log.Error().Err(err).Str("command", name).Msg("command failed")
		a.Close()
		os.Exit(1)
	}
}

// setupLogging writes console logs to stderr, and additionally to the file
// named by ECOSISTEMA_LOG_FILE when set.
func setupLogging(level zerolog.Level) func() {
	zerolog.SetGlobalLevel(level)

	logPath := os.Getenv("ECOSISTEMA_LOG_FILE")
	if logPath == "" {
		return func() {}
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fatalWithWait("failed to open log file: %v", err)
	}

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
	log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
	log.Debug().Str("logFile", logPath).Msg("logging to file")

	return func() { logFile.Close() }
}
