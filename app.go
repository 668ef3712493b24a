package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ecosistema/ecosistema-session/config"
	"github.com/ecosistema/ecosistema-session/internal/api"
	"github.com/ecosistema/ecosistema-session/internal/events"
	"github.com/ecosistema/ecosistema-session/internal/session"
	"github.com/ecosistema/ecosistema-session/internal/storage"
	"github.com/ecosistema/ecosistema-session/internal/ui"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// clientIDKey holds the identifier sent as X-Client-ID on every request.
const clientIDKey = "clientId"

// app is everything a command needs, built once per process.
type app struct {
	cfg        *config.Config
	store      *storage.Store
	client     *api.Client
	bus        *events.Bus
	terminal   *ui.Terminal
	navigator  *ui.LogNavigator
	controller *session.Controller
	out        io.Writer

	closeOnce sync.Once
}

func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	return newAppWith(cfg, out, ui.PromptConfirmer{}, prometheus.DefaultRegisterer)
}

func newAppWith(cfg *config.Config, out io.Writer, confirmer ui.Confirmer, reg prometheus.Registerer) (*app, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	store := storage.NewStore(backend, cfg.StoragePrefix)

	id, err := clientID(store)
	if err != nil {
		store.Close()
		return nil, err
	}

	client := api.NewClient(api.ClientOpts{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.HTTPTimeout,
		ClientID: id,
	})

	a := &app{
		cfg:       cfg,
		store:     store,
		client:    client,
		bus:       events.NewBus(),
		terminal:  ui.NewTerminal(out),
		navigator: &ui.LogNavigator{},
		out:       out,
	}
	a.controller = session.NewController(session.Options{
		API:        client,
		Store:      store,
		Bus:        a.bus,
		Notifier:   a.terminal,
		Loader:     a.terminal,
		Navigator:  a.navigator,
		Confirmer:  confirmer,
		RoleMarker: ui.LogRoleMarker{},
		Routes: session.Routes{
			LoginSuccess:    cfg.Routes.LoginSuccess,
			LogoutSuccess:   cfg.Routes.LogoutSuccess,
			RegisterSuccess: cfg.Routes.RegisterSuccess,
		},
		WarningWindow:      cfg.WarningWindow,
		RefreshThreshold:   cfg.RefreshThreshold,
		DisableAutoRefresh: !cfg.AutoRefresh,
		Registerer:         reg,
	})

	log.Debug().
		Str("env", cfg.Environment.Name).
		Str("api", cfg.APIBaseURL).
		Str("storage", cfg.Storage).
		Msg("session client ready")
	return a, nil
}

// openBackend opens the durable storage selected in cfg.
func openBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemoryBackend(), nil

	case config.StorageSQLite:
		key, err := storage.DeriveKey(cfg.TokenKey)
		if err != nil {
			return nil, fmt.Errorf("failed to derive encryption key: %w", err)
		}
		b, err := storage.NewSQLiteBackend(cfg.DBPath, key)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		log.Debug().Str("dbPath", cfg.DBPath).Msg("session store initialized")
		return b, nil

	case config.StorageRedis:
		b := storage.NewRedisBackend(cfg.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		defer cancel()
		if err := b.Ping(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return b, nil

	case config.StorageKeyring:
		return storage.NewKeyringBackend(storage.DefaultKeyringService), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// clientID returns the installation's client identifier, creating it on
// first use.
func clientID(store *storage.Store) (string, error) {
	var id string
	found, err := store.Get(clientIDKey, &id)
	if err != nil {
		log.Warn().Err(err).Msg("replacing unreadable client id")
	}
	if found && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := store.Set(clientIDKey, id); err != nil {
		return "", fmt.Errorf("failed to save client id: %w", err)
	}
	return id, nil
}

func (a *app) Close() {
	a.closeOnce.Do(func() {
		a.controller.Destroy()
		if err := a.store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close session store")
		}
	})
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
