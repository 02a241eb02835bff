package service

import (
	"fmt"
	"sort"
	"sync"

	"vision-agent/internal/application/port/output"
)

// DetectorFactory builds a detector bound to one acquired surface. Detectors
// that only look at captures ignore the argument.
type DetectorFactory func(surface output.SurfacePort) (output.DetectorPort, error)

type DetectorRegistry struct {
	mu        sync.RWMutex
	factories map[string]DetectorFactory
}

func NewDetectorRegistry() *DetectorRegistry {
	return &DetectorRegistry{
		factories: make(map[string]DetectorFactory),
	}
}

func (r *DetectorRegistry) Register(name string, factory DetectorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

func (r *DetectorRegistry) Get(name string) (DetectorFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

func (r *DetectorRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]string, 0, len(r.factories))
	for name := range r.factories {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func (r *DetectorRegistry) Build(name string, surface output.SurfacePort) (output.DetectorPort, error) {
	factory, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown detector %q (available: %v)", name, r.Names())
	}
	detector, err := factory(surface)
	if err != nil {
		return nil, fmt.Errorf("build detector %q: %w", name, err)
	}
	return detector, nil
}
