// Package document is the host document that committed desk models live in.
// A model is stored as a named block of parts; committing a model under a
// name replaces whatever block carried that name before.
package document

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
)

// ErrNotFound is returned when no assembly carries the requested name.
var ErrNotFound = errors.New("assembly not found")

// Part is one committed solid.
type Part struct {
	Label string
	Kind  string
	Min   [3]float64
	Max   [3]float64
	// Solid is the kernel solid, nil when read back from persistent storage.
	Solid kernel.Solid
}

// NewPart describes a solid under the given label.
func NewPart(label, kind string, s kernel.Solid) Part {
	min, max := s.BoundingBox()
	return Part{Label: label, Kind: kind, Min: min, Max: max, Solid: s}
}

// Assembly is a named block of parts. Each commit gets a fresh revision.
type Assembly struct {
	Name      string
	Revision  uuid.UUID
	CreatedAt time.Time
	Parts     []Part
}

// Solids returns the kernel solids of all parts that still carry one.
func (a *Assembly) Solids() []kernel.Solid {
	out := make([]kernel.Solid, 0, len(a.Parts))
	for _, p := range a.Parts {
		if p.Solid != nil {
			out = append(out, p.Solid)
		}
	}
	return out
}

// Store holds committed assemblies.
type Store interface {
	// Replace erases the assembly called name, if any, and commits parts
	// under that name as one unit.
	Replace(ctx context.Context, name string, parts []Part) (*Assembly, error)
	// Assembly returns the assembly called name or ErrNotFound.
	Assembly(ctx context.Context, name string) (*Assembly, error)
	// Erase removes the assembly called name. Erasing a missing name is not
	// an error.
	Erase(ctx context.Context, name string) error
	// Names lists the stored assembly names in order.
	Names(ctx context.Context) ([]string, error)
}

func newAssembly(name string, parts []Part) *Assembly {
	return &Assembly{
		Name:      name,
		Revision:  uuid.New(),
		CreatedAt: time.Now().UTC(),
		Parts:     append([]Part(nil), parts...),
	}
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu         sync.Mutex
	assemblies map[string]*Assembly
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{assemblies: make(map[string]*Assembly)}
}

func (m *MemoryStore) Replace(_ context.Context, name string, parts []Part) (*Assembly, error) {
	a := newAssembly(name, parts)
	m.mu.Lock()
	m.assemblies[name] = a
	m.mu.Unlock()
	return a, nil
}

func (m *MemoryStore) Assembly(_ context.Context, name string) (*Assembly, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assemblies[name]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *MemoryStore) Erase(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.assemblies, name)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Names(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.assemblies))
	for n := range m.assemblies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
