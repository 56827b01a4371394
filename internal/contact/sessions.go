package contact

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	ctrl     *Controller
	lastUsed time.Time
}

// Sessions keeps one controller per visitor so a second POST that lands
// while the first is still sending sees the Sending state.
type Sessions struct {
	relay Relay
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessions(relay Relay, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{relay: relay, ttl: ttl, now: time.Now, sessions: make(map[string]*session)}
}

// Get returns the controller for id, creating a fresh session (and id) when
// id is empty or unknown.
func (s *Sessions) Get(id string) (string, *Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.lastUsed = s.now()
		return id, sess.ctrl
	}
	if id == "" {
		id = uuid.NewString()
	}
	sess := &session{ctrl: NewController(s.relay), lastUsed: s.now()}
	s.sessions[id] = sess
	return id, sess.ctrl
}

// Evict drops idle sessions and returns how many went. Sessions in the
// middle of a send are kept.
func (s *Sessions) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) && sess.ctrl.Status() != Sending {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
