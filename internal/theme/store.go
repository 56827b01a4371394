package theme

import (
	"errors"
	"log"
	"sync"
)

// ErrUnavailable is returned by persisters that cannot store anything.
var ErrUnavailable = errors.New("theme: persistence unavailable")

// Persister reads and writes the single persisted theme value.
type Persister interface {
	Load() (string, error)
	Save(value string) error
}

// Applier performs the visual side effect on the root presentation context.
type Applier interface {
	Apply(Theme)
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(Theme)

func (f ApplierFunc) Apply(t Theme) { f(t) }

// Store is the only writer of the theme. Init and Toggle write; Get reads.
type Store struct {
	mu          sync.Mutex
	persister   Persister
	applier     Applier
	prefersDark func() bool

	initOnce sync.Once
	current  Theme
	degraded bool
	nextID   int
	subs     map[int]func(Theme)
}

// NewStore wires a store. A nil persister means in-memory only; a nil
// prefersDark reads as "no preference for dark".
func NewStore(p Persister, a Applier, prefersDark func() bool) *Store {
	if prefersDark == nil {
		prefersDark = func() bool { return false }
	}
	return &Store{
		persister:   p,
		applier:     a,
		prefersDark: prefersDark,
		current:     Light,
		degraded:    p == nil,
		subs:        make(map[int]func(Theme)),
	}
}

// Init picks the persisted value when it is valid, otherwise the OS
// preference, and applies it. Only the first call does anything.
func (s *Store) Init() {
	s.initOnce.Do(func() {
		s.mu.Lock()
		t := s.resolveLocked()
		s.current = t
		s.mu.Unlock()

		s.apply(t)
	})
}

func (s *Store) resolveLocked() Theme {
	if !s.degraded {
		raw, err := s.persister.Load()
		switch {
		case errors.Is(err, ErrUnavailable):
			s.degradeLocked(err)
		case err != nil:
			log.Printf("theme: reading persisted value: %v", err)
		default:
			if t, ok := Parse(raw); ok {
				return t
			}
		}
	}
	return FromPreference(s.prefersDark())
}

// Get returns the current theme without side effects.
func (s *Store) Get() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Toggle flips the theme, applies it and persists it.
func (s *Store) Toggle() Theme {
	s.Init()

	s.mu.Lock()
	t := s.current.Opposite()
	s.current = t
	if !s.degraded {
		if err := s.persister.Save(string(t)); err != nil {
			s.degradeLocked(err)
		}
	}
	s.mu.Unlock()

	s.apply(t)
	return t
}

// Persistent reports whether the store is still writing through.
func (s *Store) Persistent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.degraded
}

func (s *Store) degradeLocked(err error) {
	s.degraded = true
	log.Printf("theme: persistence disabled for this session: %v", err)
}

// Subscribe registers fn for every applied change. The returned func
// unsubscribes and may be called more than once.
func (s *Store) Subscribe(fn func(Theme)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) apply(t Theme) {
	if s.applier != nil {
		s.applier.Apply(t)
	}

	s.mu.Lock()
	subs := make([]func(Theme), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(t)
	}
}
