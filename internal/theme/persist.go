package theme

import "sync"

// MemoryPersister keeps the value for the life of the process.
type MemoryPersister struct {
	mu    sync.Mutex
	value string
	saves int
}

func NewMemoryPersister(initial string) *MemoryPersister {
	return &MemoryPersister{value: initial}
}

func (m *MemoryPersister) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

func (m *MemoryPersister) Save(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.saves++
	return nil
}

// Saves counts writes, which tests use to check Init never persists.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// RootClass records the class attribute the page's <html> element should
// carry for the applied theme.
type RootClass struct {
	mu    sync.Mutex
	class string
}

func (r *RootClass) Apply(t Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t == Dark {
		r.class = "dark"
	} else {
		r.class = ""
	}
}

func (r *RootClass) Class() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.class
}
