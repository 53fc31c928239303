// Package subject defines the capability set a program under test exposes to
// the harness: its defect registry, an input strategy and a testing property.
package subject

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/mutsweep/internal/gen"
	"github.com/roach88/mutsweep/internal/mutant"
)

// Subject is one loaded instance of a program under test. Instances are
// owned by a single worker.
type Subject interface {
	Name() string
	Registry() *mutant.Registry
	Strategy() gen.Strategy

	// Property evaluates the testing property on input with the defects in
	// mc switched on. A returned error or a panic is a violation.
	Property(mc *mutant.Context, input any) error
}

// Factory loads a fresh, independent Subject. Declaration problems surface
// here, before any sweep starts.
type Factory func() (Subject, error)

// Catalog maps subject names to factories.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous one.
func (c *Catalog) Register(name string, f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = f
}

// Factory returns the factory registered under name.
func (c *Catalog) Factory(name string) (Factory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown subject %q (known: %v)", name, c.namesLocked())
	}
	return f, nil
}

// Load resolves name and loads one instance.
func (c *Catalog) Load(name string) (Subject, error) {
	f, err := c.Factory(name)
	if err != nil {
		return nil, err
	}
	s, err := f()
	if err != nil {
		return nil, fmt.Errorf("load subject %q: %w", name, err)
	}
	return s, nil
}

// Names returns the registered subject names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.namesLocked()
}

func (c *Catalog) namesLocked() []string {
	names := make([]string, 0, len(c.factories))
	for n := range c.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
