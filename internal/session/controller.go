// Package session owns the authentication state of the running client: who
// is signed in, with which tokens, until when. It persists that state,
// keeps it fresh with expiry-warning and auto-refresh timers, and announces
// every change on the event bus.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ecosistema/ecosistema-session/internal/api"
	"github.com/ecosistema/ecosistema-session/internal/events"
	"github.com/ecosistema/ecosistema-session/internal/storage"
	"github.com/ecosistema/ecosistema-session/internal/ui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"
)

// Persisted keys, before the store prefix.
const (
	KeyAuthToken    = "authToken"
	KeyCurrentUser  = "currentUser"
	KeyRefreshToken = "refreshToken"
	KeyExpiresAt    = "authToken_expires_at"
)

var sessionKeys = []string{KeyAuthToken, KeyCurrentUser, KeyRefreshToken, KeyExpiresAt}

const (
	DefaultWarningWindow    = 5 * time.Minute
	DefaultRefreshThreshold = 10 * time.Minute
	DefaultWarningTimeout   = time.Minute
)

// ErrNoRefreshToken is logged when a refresh is requested without a refresh
// token.
var ErrNoRefreshToken = errors.New("session: no refresh token")

// AuthAPI is the slice of the backend the controller talks to.
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, reg api.Registration) (*api.RegisterResponse, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*api.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error)
}

// interceptable is implemented by HTTP adapters that decorate requests with
// the session token and report 401s back.
type interceptable interface {
	SetTokenSource(ts api.TokenSource)
	OnUnauthorized(h api.UnauthorizedHandler)
}

// Routes are where the user is sent after each operation.
type Routes struct {
	LoginSuccess    string
	LogoutSuccess   string
	RegisterSuccess string
}

type Options struct {
	API AuthAPI
	// Store holds sessions that should survive a restart ("remember me").
	Store *storage.Store
	// SessionStore holds sessions that last only while the process runs.
	// Defaults to an in-memory store.
	SessionStore *storage.Store
	Bus          *events.Bus

	Notifier   ui.Notifier
	Loader     ui.Loader
	Navigator  ui.Navigator
	Confirmer  ui.Confirmer
	RoleMarker ui.RoleMarker

	Routes Routes

	// Zero values fall back to the package defaults.
	WarningWindow    time.Duration
	RefreshThreshold time.Duration
	WarningTimeout   time.Duration

	DisableAutoRefresh bool

	Clock      Clock
	Registerer prometheus.Registerer
}

// Session is a read-only snapshot of the authentication state.
type Session struct {
	IsAuthenticated bool
	User            *api.User
	AccessToken     string
	RefreshToken    string
	ExpiresAt       time.Time
	RememberMe      bool
}

// authUpdate carries every field of a transition to authenticated.
type authUpdate struct {
	User         *api.User
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
	RememberMe   bool
}

// anyGeneration commits regardless of logouts that happened meanwhile.
const anyGeneration = ^uint64(0)

// Controller is the single owner of the session. Create one per process
// with NewController and call Destroy when done with it.
type Controller struct {
	api          AuthAPI
	store        *storage.Store
	sessionStore *storage.Store
	bus          *events.Bus

	notifier   ui.Notifier
	loader     ui.Loader
	navigator  ui.Navigator
	confirmer  ui.Confirmer
	roleMarker ui.RoleMarker

	routes           Routes
	warningWindow    time.Duration
	refreshThreshold time.Duration
	warningTimeout   time.Duration
	autoRefresh      bool

	clock   Clock
	timers  *scheduler
	metrics *metrics

	ctx    context.Context
	cancel context.CancelFunc

	// commitMu serializes transitions so memory and storage change together.
	commitMu sync.Mutex

	mu    sync.RWMutex
	state Session
	// generation advances on every transition to unauthenticated; results of
	// calls started under an older generation are dropped.
	generation   uint64
	statusCancel context.CancelFunc

	checking     atomic.Bool
	refreshGroup singleflight.Group

	unsubscribe []func()
}

func NewController(opts Options) *Controller {
	c := &Controller{
		api:              opts.API,
		store:            opts.Store,
		sessionStore:     opts.SessionStore,
		bus:              opts.Bus,
		notifier:         opts.Notifier,
		loader:           opts.Loader,
		navigator:        opts.Navigator,
		confirmer:        opts.Confirmer,
		roleMarker:       opts.RoleMarker,
		routes:           opts.Routes,
		warningWindow:    opts.WarningWindow,
		refreshThreshold: opts.RefreshThreshold,
		warningTimeout:   opts.WarningTimeout,
		autoRefresh:      !opts.DisableAutoRefresh,
		clock:            opts.Clock,
	}

	if c.sessionStore == nil {
		c.sessionStore = storage.NewStore(storage.NewMemoryBackend(), "")
	}
	if c.bus == nil {
		c.bus = events.NewBus()
	}
	if c.warningWindow <= 0 {
		c.warningWindow = DefaultWarningWindow
	}
	if c.refreshThreshold <= 0 {
		c.refreshThreshold = DefaultRefreshThreshold
	}
	if c.warningTimeout <= 0 {
		c.warningTimeout = DefaultWarningTimeout
	}
	if c.clock == nil {
		c.clock = clock.RealClock{}
	}

	c.timers = newScheduler(c.clock)
	c.metrics = newMetrics(opts.Registerer)
	c.ctx, c.cancel = context.WithCancel(context.Background())

	if hooks, ok := c.api.(interceptable); ok {
		hooks.SetTokenSource(c)
		hooks.OnUnauthorized(c.HandleUnauthorized)
	}

	c.unsubscribe = append(c.unsubscribe,
		events.Subscribe(c.bus, events.RequestLogout, func(req events.LogoutRequest) {
			c.Logout(c.ctx, req.Notify)
		}),
		events.Subscribe(c.bus, events.RequestRefresh, func(events.RefreshRequest) {
			c.RefreshToken(c.ctx)
		}),
	)

	return c
}

// Bus returns the event bus state changes are published on.
func (c *Controller) Bus() *events.Bus {
	return c.bus
}

// --- Read side ---

// Token returns the current access token, or "" when signed out.
func (c *Controller) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.AccessToken
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (c *Controller) CurrentUser() *api.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.User.Clone()
}

func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsAuthenticated
}

// ExpiresAt returns the access token expiry, if known.
func (c *Controller) ExpiresAt() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.ExpiresAt, !c.state.ExpiresAt.IsZero()
}

// HasRole reports whether the signed-in user has any of roles.
func (c *Controller) HasRole(roles ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state.User == nil {
		return false
	}
	return slices.Contains(roles, c.state.User.Role)
}

func (c *Controller) HasPermission(permission string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.User.HasPermission(permission)
}

// Snapshot returns the whole session state at once.
func (c *Controller) Snapshot() Session {
	s, _ := c.snapshot()
	return s
}

func (c *Controller) snapshot() (Session, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.User = s.User.Clone()
	return s, c.generation
}

// --- Lifecycle ---

// LoadSession restores a persisted session without contacting the backend.
// Returns true if one was found.
func (c *Controller) LoadSession() bool {
	for _, src := range []struct {
		store      *storage.Store
		rememberMe bool
	}{
		{c.store, true},
		{c.sessionStore, false},
	} {
		if src.store == nil {
			continue
		}
		update, ok := readSession(src.store)
		if !ok {
			continue
		}
		update.RememberMe = src.rememberMe
		c.updateAuthState(true, update)
		log.Info().Str("userId", update.User.ID).Bool("rememberMe", src.rememberMe).Msg("session restored from storage")
		return true
	}
	return false
}

func readSession(store *storage.Store) (authUpdate, bool) {
	var u authUpdate
	var user api.User

	foundToken, err := store.Get(KeyAuthToken, &u.Token)
	if err == nil && foundToken {
		var foundUser bool
		foundUser, err = store.Get(KeyCurrentUser, &user)
		if err == nil && !foundUser {
			return u, false
		}
	}
	if err != nil {
		log.Warn().Err(err).Msg("discarding unreadable stored session")
		if err := store.Remove(sessionKeys...); err != nil {
			log.Error().Err(err).Msg("failed to remove unreadable session")
		}
		return u, false
	}
	if !foundToken || u.Token == "" {
		return u, false
	}
	u.User = &user

	if _, err := store.Get(KeyRefreshToken, &u.RefreshToken); err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable refresh token")
	}

	var expiresAt string
	if found, err := store.Get(KeyExpiresAt, &expiresAt); err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable token expiry")
	} else if found {
		if t, err := time.Parse(time.RFC3339Nano, expiresAt); err == nil {
			u.ExpiresAt = t
		} else {
			log.Warn().Err(err).Str("expiresAt", expiresAt).Msg("ignoring unparseable token expiry")
		}
	}
	return u, true
}

// CheckAuthStatus confirms the session with the backend. Only one check
// runs at a time; overlapping calls return false right away.
func (c *Controller) CheckAuthStatus(ctx context.Context) bool {
	if !c.checking.CompareAndSwap(false, true) {
		log.Debug().Msg("auth status check already in flight")
		return false
	}
	defer c.checking.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.statusCancel = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.statusCancel = nil
		c.mu.Unlock()
		cancel()
	}()

	snap, gen := c.snapshot()
	if snap.AccessToken == "" {
		c.updateAuthState(false, authUpdate{})
		return false
	}

	if !snap.ExpiresAt.IsZero() && c.clock.Now().After(snap.ExpiresAt) {
		log.Info().Time("expiresAt", snap.ExpiresAt).Msg("access token expired locally, refreshing")
		return c.RefreshToken(ctx)
	}

	resp, err := c.api.Status(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			log.Info().Msg("backend rejected session")
			c.commit(gen, false, authUpdate{})
			return false
		}
		log.Warn().Err(err).Msg("auth status check failed")
		return false
	}

	c.handleAuthResponse(resp, snap, gen)
	return c.IsAuthenticated()
}

// handleAuthResponse merges a login, refresh or status response into the
// session. prev is the state the request was made under.
func (c *Controller) handleAuthResponse(resp *api.AuthResponse, prev Session, gen uint64) bool {
	switch {
	case resp.AccessToken != "":
		user := resp.User
		if user == nil {
			user = prev.User
		}
		if user == nil {
			log.Warn().Msg("auth response has a token but no user")
			return c.commit(gen, false, authUpdate{})
		}
		now := c.clock.Now()
		expiresAt := resolveExpiry(resp, now)
		if err := checkExpiry(expiresAt, now); err != nil {
			log.Warn().Err(err).Time("expiresAt", expiresAt).Msg("auth response rejected")
			return c.commit(gen, false, authUpdate{})
		}
		refreshToken := resp.RefreshToken
		if refreshToken == "" {
			refreshToken = prev.RefreshToken
		}
		return c.commit(gen, true, authUpdate{
			User:         user,
			Token:        resp.AccessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    expiresAt,
			RememberMe:   prev.RememberMe,
		})

	case resp.IsAuthenticated != nil && *resp.IsAuthenticated:
		user := resp.User
		if user == nil {
			user = prev.User
		}
		if user == nil || prev.AccessToken == "" {
			return c.commit(gen, false, authUpdate{})
		}
		return c.commit(gen, true, authUpdate{
			User:         user,
			Token:        prev.AccessToken,
			RefreshToken: prev.RefreshToken,
			ExpiresAt:    prev.ExpiresAt,
			RememberMe:   prev.RememberMe,
		})

	default:
		return c.commit(gen, false, authUpdate{})
	}
}

// Login signs in with email and password. Validation problems are returned
// before any request is made.
func (c *Controller) Login(ctx context.Context, email, password string, rememberMe bool) error {
	if err := validateLogin(email, password); err != nil {
		c.metrics.logins.WithLabelValues(resultInvalid).Inc()
		return err
	}

	c.showLoading(MsgLoggingIn)
	defer c.hideLoading()

	resp, err := c.api.Login(ctx, api.Credentials{
		Email:      email,
		Password:   password,
		RememberMe: rememberMe,
	})
	if err != nil {
		c.metrics.logins.WithLabelValues(resultFailure).Inc()
		log.Warn().Err(err).Msg("login failed")
		c.updateAuthState(false, authUpdate{})
		c.notifyError(MsgLoginFailedTitle, messageOr(err, MsgLoginFailed))
		return fmt.Errorf("login failed: %w", err)
	}

	now := c.clock.Now()
	expiresAt := resolveExpiry(resp, now)
	if err := checkExpiry(expiresAt, now); err != nil {
		c.metrics.logins.WithLabelValues(resultFailure).Inc()
		log.Warn().Err(err).Time("expiresAt", expiresAt).Msg("login failed")
		c.updateAuthState(false, authUpdate{})
		c.notifyError(MsgLoginFailedTitle, MsgLoginFailed)
		return fmt.Errorf("login failed: %w", err)
	}

	c.updateAuthState(true, authUpdate{
		User:         resp.User,
		Token:        resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
		RememberMe:   rememberMe,
	})
	c.metrics.logins.WithLabelValues(resultSuccess).Inc()
	log.Info().Str("userId", resp.User.ID).Str("role", resp.User.Role).Msg("logged in")

	name := resp.User.FullName()
	if name == "" {
		name = resp.User.Email
	}
	c.notifySuccess(MsgWelcomeTitle, fmt.Sprintf(MsgWelcome, name))
	c.redirect(c.routes.LoginSuccess)
	return nil
}

// Register creates an account. It does not sign the user in.
func (c *Controller) Register(ctx context.Context, reg api.Registration) error {
	if err := validateRegistration(reg); err != nil {
		return err
	}

	c.showLoading(MsgRegistering)
	defer c.hideLoading()

	resp, err := c.api.Register(ctx, reg)
	if err != nil {
		log.Warn().Err(err).Msg("registration failed")
		c.notifyError(MsgRegisterFailed, messageOr(err, MsgRegisterFailedBody))
		return fmt.Errorf("registration failed: %w", err)
	}

	msg := resp.Message
	if msg == "" {
		msg = MsgRegistered
	}
	c.notifySuccess(MsgRegisterTitle, msg)
	c.redirect(c.routes.RegisterSuccess)
	return nil
}

// Logout ends the session. The backend is told on a best-effort basis;
// local state is cleared no matter what. notify controls the "session
// closed" message.
func (c *Controller) Logout(ctx context.Context, notify bool) {
	c.abortStatusCheck()

	if c.Token() != "" {
		// ctx may be the status check cancelled just above.
		if err := c.api.Logout(context.WithoutCancel(ctx)); err != nil {
			log.Debug().Err(err).Msg("backend logout failed, clearing session anyway")
		}
	}

	c.updateAuthState(false, authUpdate{})
	c.metrics.logouts.Inc()
	log.Info().Msg("logged out")

	if notify {
		c.notifyInfo(MsgLoggedOutTitle, MsgLoggedOut)
	}
	c.redirect(c.routes.LogoutSuccess)
}

// RefreshToken exchanges the refresh token for a new access token.
// Concurrent calls share one request. On failure the session is ended.
func (c *Controller) RefreshToken(ctx context.Context) bool {
	v, _, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.refresh(ctx), nil
	})
	return v.(bool)
}

func (c *Controller) refresh(ctx context.Context) bool {
	snap, gen := c.snapshot()
	if snap.RefreshToken == "" {
		log.Info().Err(ErrNoRefreshToken).Msg("cannot refresh session")
		c.metrics.refreshes.WithLabelValues(resultFailure).Inc()
		c.Logout(ctx, false)
		return false
	}

	resp, err := c.api.Refresh(ctx, snap.RefreshToken)
	if err != nil {
		c.metrics.refreshes.WithLabelValues(resultFailure).Inc()
		if ctx.Err() != nil {
			log.Debug().Err(err).Msg("token refresh cancelled")
			return false
		}
		log.Warn().Err(err).Msg("token refresh failed")
		if c.currentGeneration() == gen {
			c.Logout(ctx, false)
		}
		return false
	}

	if !c.handleAuthResponse(resp, snap, gen) {
		log.Info().Msg("dropping refresh result, session ended meanwhile")
		return false
	}
	if !c.IsAuthenticated() {
		c.metrics.refreshes.WithLabelValues(resultFailure).Inc()
		return false
	}
	c.metrics.refreshes.WithLabelValues(resultSuccess).Inc()
	log.Info().Msg("access token refreshed")
	return true
}

// HandleUnauthorized is called by the HTTP adapter when a request comes back
// with 401. It tries one silent refresh; if that isn't possible the session
// is ended and the user told it expired. Returns true if the request may be
// retried with a new token.
func (c *Controller) HandleUnauthorized(ctx context.Context) bool {
	snap := c.Snapshot()
	if !snap.IsAuthenticated {
		return false
	}

	if snap.RefreshToken != "" && c.RefreshToken(ctx) {
		return true
	}
	if ctx.Err() != nil {
		// The caller gave up; the session itself may still be good.
		return false
	}

	if c.IsAuthenticated() {
		c.Logout(ctx, false)
	}
	c.metrics.forcedLogouts.Inc()
	c.notifyWarning(MsgSessionExpiredTitle, MsgSessionExpired)
	return false
}

// Destroy stops timers, aborts a running status check and detaches from
// the bus. The controller must not be used afterwards.
func (c *Controller) Destroy() {
	c.abortStatusCheck()
	c.cancel()
	c.timers.cancelAll()
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
}

func (c *Controller) abortStatusCheck() {
	c.mu.Lock()
	cancel := c.statusCancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// --- State transitions ---

// updateAuthState is the choke point for every change of the session.
func (c *Controller) updateAuthState(authenticated bool, u authUpdate) {
	c.commit(anyGeneration, authenticated, u)
}

// commit applies a transition if no logout happened since generation gen
// was observed. It reports whether the transition was applied.
func (c *Controller) commit(gen uint64, authenticated bool, u authUpdate) bool {
	if authenticated && (u.User == nil || u.Token == "") {
		log.Error().Msg("refusing authenticated state without user and token")
		authenticated = false
	}

	c.commitMu.Lock()

	c.mu.Lock()
	if gen != anyGeneration && gen != c.generation {
		c.mu.Unlock()
		c.commitMu.Unlock()
		return false
	}
	if authenticated {
		c.state = Session{
			IsAuthenticated: true,
			User:            u.User,
			AccessToken:     u.Token,
			RefreshToken:    u.RefreshToken,
			ExpiresAt:       u.ExpiresAt,
			RememberMe:      u.RememberMe,
		}
	} else {
		c.state = Session{}
		c.generation++
	}
	snap := c.state
	c.mu.Unlock()

	if authenticated {
		c.persist(u)
		c.setupSessionManagement(u.ExpiresAt)
	} else {
		c.purge()
		c.timers.cancelAll()
	}
	if c.roleMarker != nil {
		c.roleMarker.ApplyUser(snap.User)
	}

	c.commitMu.Unlock()

	change := events.AuthChange{User: snap.User, Token: snap.AccessToken}
	if authenticated {
		events.Publish(c.bus, events.Authenticated, change)
	} else {
		events.Publish(c.bus, events.Unauthenticated, change)
	}
	events.Publish(c.bus, events.StatusChanged, events.StatusChange{
		IsAuthenticated: snap.IsAuthenticated,
		User:            snap.User,
	})
	return true
}

func (c *Controller) persist(u authUpdate) {
	target, other := c.store, c.sessionStore
	if !u.RememberMe || target == nil {
		target, other = c.sessionStore, c.store
	}

	if err := writeSession(target, u); err != nil {
		log.Error().Err(err).Msg("failed to persist session")
	}
	if other != nil && other != target {
		if err := other.Remove(sessionKeys...); err != nil {
			log.Warn().Err(err).Msg("failed to clear stale session copy")
		}
	}
}

func writeSession(store *storage.Store, u authUpdate) error {
	if err := store.Set(KeyAuthToken, u.Token); err != nil {
		return err
	}
	if err := store.Set(KeyCurrentUser, u.User); err != nil {
		return err
	}

	var errs []error
	if u.RefreshToken != "" {
		errs = append(errs, store.Set(KeyRefreshToken, u.RefreshToken))
	} else {
		errs = append(errs, store.Remove(KeyRefreshToken))
	}
	if !u.ExpiresAt.IsZero() {
		errs = append(errs, store.Set(KeyExpiresAt, formatTimestamp(u.ExpiresAt)))
	} else {
		errs = append(errs, store.Remove(KeyExpiresAt))
	}
	return errors.Join(errs...)
}

func (c *Controller) purge() {
	for _, store := range []*storage.Store{c.store, c.sessionStore} {
		if store == nil {
			continue
		}
		if err := store.Remove(sessionKeys...); err != nil {
			log.Error().Err(err).Msg("failed to purge session")
		}
	}
}

// setupSessionManagement arms the expiry warning and the silent refresh for
// a token expiring at expiresAt, replacing any timers already pending.
func (c *Controller) setupSessionManagement(expiresAt time.Time) {
	c.timers.cancelAll()
	if expiresAt.IsZero() {
		return
	}

	remaining := expiresAt.Sub(c.clock.Now())

	if warnIn := remaining - c.warningWindow; warnIn > 0 {
		c.timers.reschedule(warningTimer, warnIn, c.onSessionWarning)
	}
	if c.autoRefresh {
		if refreshIn := remaining - c.refreshThreshold; refreshIn > 0 {
			c.timers.reschedule(refreshTimer, refreshIn, c.onAutoRefresh)
		}
	}

	log.Debug().
		Time("expiresAt", expiresAt).
		Bool("warning", c.timers.isPending(warningTimer)).
		Bool("autoRefresh", c.timers.isPending(refreshTimer)).
		Msg("session timers scheduled")
}

func (c *Controller) onSessionWarning() {
	if c.ctx.Err() != nil {
		return
	}

	minutes := int(c.warningWindow.Round(time.Minute) / time.Minute)
	if exp, ok := c.ExpiresAt(); ok {
		minutes = int(exp.Sub(c.clock.Now()).Round(time.Minute) / time.Minute)
	}

	extend := false
	if c.confirmer != nil {
		ctx, cancel := context.WithTimeout(c.ctx, c.warningTimeout)
		var err error
		extend, err = c.confirmer.Confirm(ctx, MsgSessionWarningTitle, ui.FormatMessage(MsgSessionWarning, minutes))
		cancel()
		if err != nil {
			log.Info().Err(err).Msg("no answer to session expiry warning")
			extend = false
		}
	}

	if c.ctx.Err() != nil {
		return
	}
	if extend {
		c.RefreshToken(c.ctx)
		return
	}
	c.Logout(c.ctx, true)
}

func (c *Controller) onAutoRefresh() {
	if c.ctx.Err() != nil {
		return
	}
	log.Debug().Msg("auto-refreshing access token")
	c.RefreshToken(c.ctx)
}

// --- UI helpers ---

func (c *Controller) showLoading(msg string) {
	if c.loader != nil {
		c.loader.Show(msg)
	}
}

func (c *Controller) hideLoading() {
	if c.loader != nil {
		c.loader.Hide()
	}
}

func (c *Controller) redirect(route string) {
	if c.navigator != nil && route != "" {
		c.navigator.Redirect(route)
	}
}

func (c *Controller) notifySuccess(title, msg string) {
	if c.notifier != nil {
		c.notifier.Success(title, msg)
	}
}

func (c *Controller) notifyError(title, msg string) {
	if c.notifier != nil {
		c.notifier.Error(title, msg)
	}
}

func (c *Controller) notifyInfo(title, msg string) {
	if c.notifier != nil {
		c.notifier.Info(title, msg)
	}
}

func (c *Controller) notifyWarning(title, msg string) {
	if c.notifier != nil {
		c.notifier.Warning(title, msg)
	}
}

// messageOr returns the server's message from err, or fallback.
func messageOr(err error, fallback string) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
