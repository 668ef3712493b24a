package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ecosistema/ecosistema-session/internal/api"
	"k8s.io/utils/clock"
)

// fakeClock fires due timers synchronously from Advance, outside its lock,
// so callbacks may schedule new timers.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f, ch: make(chan time.Time, 1), active: true}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	var due []*fakeTimer
	for _, t := range c.timers {
		if t.active && !t.at.After(now) {
			t.active = false
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

// active returns the number of timers that have neither fired nor stopped.
func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.active {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	clock  *fakeClock
	at     time.Time
	fn     func()
	ch     chan time.Time
	active bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.active
	t.active = false
	return was
}

func (t *fakeTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.active
	t.at = t.clock.now.Add(d)
	t.active = true
	return was
}

// fakeAPI answers each call with the configured function, or fails.
type fakeAPI struct {
	mu sync.Mutex

	login    func(api.Credentials) (*api.AuthResponse, error)
	register func(api.Registration) (*api.RegisterResponse, error)
	status   func(context.Context) (*api.AuthResponse, error)
	refresh  func(context.Context, string) (*api.AuthResponse, error)
	logout   func() error

	calls map[string]int
}

var errNotConfigured = errors.New("fake api: not configured")

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Login(_ context.Context, creds api.Credentials) (*api.AuthResponse, error) {
	f.record("login")
	if f.login == nil {
		return nil, errNotConfigured
	}
	return f.login(creds)
}

func (f *fakeAPI) Register(_ context.Context, reg api.Registration) (*api.RegisterResponse, error) {
	f.record("register")
	if f.register == nil {
		return nil, errNotConfigured
	}
	return f.register(reg)
}

func (f *fakeAPI) Logout(context.Context) error {
	f.record("logout")
	if f.logout == nil {
		return nil
	}
	return f.logout()
}

func (f *fakeAPI) Status(ctx context.Context) (*api.AuthResponse, error) {
	f.record("status")
	if f.status == nil {
		return nil, errNotConfigured
	}
	return f.status(ctx)
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error) {
	f.record("refresh")
	if f.refresh == nil {
		return nil, errNotConfigured
	}
	return f.refresh(ctx, refreshToken)
}

type toast struct {
	Kind, Title, Message string
}

// recordingUI implements every ui interface the controller uses.
type recordingUI struct {
	mu        sync.Mutex
	toasts    []toast
	loading   []string
	hides     int
	redirects []string
	marked    []*api.User

	confirmAnswer bool
	confirmErr    error
	confirms      int
}

func (r *recordingUI) add(kind, title, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast{kind, title, msg})
}

func (r *recordingUI) Success(title, msg string) { r.add("success", title, msg) }
func (r *recordingUI) Error(title, msg string)   { r.add("error", title, msg) }
func (r *recordingUI) Info(title, msg string)    { r.add("info", title, msg) }
func (r *recordingUI) Warning(title, msg string) { r.add("warning", title, msg) }

func (r *recordingUI) Show(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, msg)
}

func (r *recordingUI) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides++
}

func (r *recordingUI) Redirect(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, route)
}

func (r *recordingUI) ApplyUser(u *api.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marked = append(r.marked, u)
}

func (r *recordingUI) Confirm(context.Context, string, string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirms++
	return r.confirmAnswer, r.confirmErr
}

func (r *recordingUI) Toasts() []toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toast(nil), r.toasts...)
}

func (r *recordingUI) Redirects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.redirects...)
}

func (r *recordingUI) lastToast() toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return toast{}
	}
	return r.toasts[len(r.toasts)-1]
}
