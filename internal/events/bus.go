// Package events is the process-wide publish/subscribe bus UI components use
// to react to authentication changes. Topics are a closed set of typed
// handles, so a publisher and its subscribers always agree on the payload.
package events

import (
	"sync"

	"github.com/ecosistema/ecosistema-session/internal/api"
	"github.com/rs/zerolog/log"
)

// Topic names a channel on the bus carrying payloads of type T.
type Topic[T any] struct {
	name string
}

func (t Topic[T]) String() string {
	return t.name
}

// AuthChange is published when the session becomes authenticated or
// unauthenticated.
type AuthChange struct {
	User  *api.User
	Token string
}

// StatusChange is the legacy authStatusChanged payload.
type StatusChange struct {
	IsAuthenticated bool
	User            *api.User
}

// LogoutRequest asks the session controller to sign out.
type LogoutRequest struct {
	Notify bool
}

// RefreshRequest asks the session controller to refresh the access token.
type RefreshRequest struct{}

var (
	Authenticated   = Topic[AuthChange]{name: "auth:authenticated"}
	Unauthenticated = Topic[AuthChange]{name: "auth:unauthenticated"}
	StatusChanged   = Topic[StatusChange]{name: "authStatusChanged"}
	RequestLogout   = Topic[LogoutRequest]{name: "auth:requestLogout"}
	RequestRefresh  = Topic[RefreshRequest]{name: "auth:requestRefresh"}
)

type subscriber struct {
	id int
	fn func(any)
}

// Bus delivers payloads synchronously, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscriber)}
}

// Subscribe registers fn for topic and returns a function that removes it.
func Subscribe[T any](b *Bus, topic Topic[T], fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic.name] = append(b.subs[topic.name], subscriber{
		id: id,
		fn: func(payload any) { fn(payload.(T)) },
	})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic.name, id) })
	}
}

// Publish delivers payload to every current subscriber of topic.
func Publish[T any](b *Bus, topic Topic[T], payload T) {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subs[topic.name]...)
	b.mu.RUnlock()

	log.Debug().Str("topic", topic.name).Int("subscribers", len(subs)).Msg("publishing event")

	for _, s := range subs {
		deliver(topic.name, s, payload)
	}
}

// Subscribers returns how many handlers are registered for topic.
func Subscribers[T any](b *Bus, topic Topic[T]) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic.name])
}

func deliver(name string, s subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("topic", name).Interface("panic", r).Msg("event subscriber panicked")
		}
	}()
	s.fn(payload)
}

func (b *Bus) remove(name string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[name]) == 0 {
		delete(b.subs, name)
	}
}
