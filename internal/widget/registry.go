package widget

import "sync"

// Registry tracks which containers on a page already have a countdown
// attached, so overlapping init calls (the embed script loading twice, a
// DOM scan re-firing) start exactly one engine per container. A container
// is claimed while its mount is in flight and attached once the engine
// exists; claimed and attached containers both refuse a second Begin.
type Registry struct {
	mu      sync.Mutex
	pending map[string]struct{}
	engines map[string]*Engine
}

// NewRegistry creates an empty container registry
func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[string]struct{}),
		engines: make(map[string]*Engine),
	}
}

// Begin claims a container for initialization. It returns false when the
// container is already claimed or has an engine attached.
func (r *Registry) Begin(containerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[containerID]; ok {
		return false
	}
	if _, ok := r.engines[containerID]; ok {
		return false
	}
	r.pending[containerID] = struct{}{}
	return true
}

// Attach records the engine for a claimed container, completing the mount
func (r *Registry) Attach(containerID string, e *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, containerID)
	r.engines[containerID] = e
}

// Release abandons a claim without attaching an engine, so a later init
// may try the container again
func (r *Registry) Release(containerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, containerID)
}

// Remove stops and forgets the engine for a container that left the page
func (r *Registry) Remove(containerID string) {
	r.mu.Lock()
	engine := r.engines[containerID]
	delete(r.engines, containerID)
	delete(r.pending, containerID)
	r.mu.Unlock()

	if engine != nil {
		engine.Stop()
	}
}

// Engine returns the engine attached to a container, if any
func (r *Registry) Engine(containerID string) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[containerID]
	return e, ok
}

// Len reports how many containers currently have engines attached
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}
