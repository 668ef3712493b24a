package session

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Clock is the time source the controller schedules against.
// clock.RealClock satisfies it.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clock.Timer
}

const (
	warningTimer = "warning"
	refreshTimer = "refresh"
)

type timerSlot struct {
	timer clock.Timer
	seq   uint64
}

// scheduler keeps at most one pending timer per name. Arming a name always
// stops whatever was pending under it first.
type scheduler struct {
	clock Clock

	mu    sync.Mutex
	slots map[string]*timerSlot
}

func newScheduler(c Clock) *scheduler {
	return &scheduler{clock: c, slots: make(map[string]*timerSlot)}
}

// reschedule replaces the timer under name with one that runs fn after d.
func (s *scheduler) reschedule(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[name]
	if !ok {
		slot = &timerSlot{}
		s.slots[name] = slot
	}
	slot.stop()
	slot.seq++
	seq := slot.seq

	slot.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		// A timer stopped too late to prevent firing must not run.
		if slot.seq != seq || slot.timer == nil {
			s.mu.Unlock()
			return
		}
		slot.timer = nil
		s.mu.Unlock()
		fn()
	})
}

func (s *scheduler) cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[name]; ok {
		slot.stop()
	}
}

func (s *scheduler) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		slot.stop()
	}
}

func (s *scheduler) isPending(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[name]
	return ok && slot.timer != nil
}

func (s *scheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, slot := range s.slots {
		if slot.timer != nil {
			n++
		}
	}
	return n
}

func (t *timerSlot) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
}
