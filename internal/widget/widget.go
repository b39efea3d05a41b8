// Package widget is the Go client for the countdown service: it resolves
// the visitor identity, fetches the assigned deadline with retries, and
// drives the per-container render loop that the embed script performs in
// the browser.
package widget

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyMounted is returned when a container already has a mount in
// flight or an engine attached
var ErrAlreadyMounted = errors.New("container already mounted")

// ErrPageNotTargeted is returned when the campaign's target list excludes
// the current page
var ErrPageNotTargeted = errors.New("page not targeted by campaign")

// Container describes one widget placement on a page
type Container struct {
	ID         string
	CampaignID string
	PageURL    string
	Renderer   Renderer
}

// Widget wires identity, the service client, and the render loop for one
// page. Mount is safe to call concurrently for different containers;
// concurrent mounts of the same container collapse to one.
type Widget struct {
	api      *Client
	identity *Identity
	registry *Registry
	interval time.Duration
	now      func() time.Time
}

// WidgetOption configures a Widget
type WidgetOption func(*Widget)

// WithTickInterval overrides the render loop interval for engines the
// widget creates
func WithTickInterval(d time.Duration) WidgetOption {
	return func(w *Widget) {
		w.interval = d
	}
}

// WithWidgetClock overrides the time source for engines the widget
// creates
func WithWidgetClock(now func() time.Time) WidgetOption {
	return func(w *Widget) {
		w.now = now
	}
}

// NewWidget creates a widget host for one page
func NewWidget(api *Client, identity *Identity, opts ...WidgetOption) *Widget {
	w := &Widget{
		api:      api,
		identity: identity,
		registry: NewRegistry(),
		interval: time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Mount initializes the countdown for one container: claim the container,
// render the loading placeholder, resolve the visitor id, ask the service
// for the deadline and render config, then start the ticking engine. Any
// failure along the way leaves the engine in the terminal Error state;
// the page has to reload before the container is tried again.
func (w *Widget) Mount(ctx context.Context, c Container) (*Engine, error) {
	if c.ID == "" || c.CampaignID == "" || c.Renderer == nil {
		return nil, errors.New("container needs an id, a campaign id, and a renderer")
	}
	if !w.registry.Begin(c.ID) {
		return nil, ErrAlreadyMounted
	}

	engine := NewEngine(c.Renderer, WithClock(w.now), WithInterval(w.interval))

	visitorID, err := w.identity.VisitorID(ctx)
	if err != nil {
		return w.fail(c.ID, engine, err)
	}

	if _, err := w.api.SetDeadline(ctx, visitorID, c.CampaignID); err != nil {
		return w.fail(c.ID, engine, err)
	}

	storage, err := w.api.Storage(ctx, visitorID, c.CampaignID)
	if err != nil {
		return w.fail(c.ID, engine, err)
	}

	if c.PageURL != "" && !storage.CampaignConfig.MatchesPage(c.PageURL) {
		// Keep the claim so rescans skip the container; just never render
		engine.Stop()
		c.Renderer.Clear()
		w.registry.Attach(c.ID, engine)
		return engine, ErrPageNotTargeted
	}

	engine.Start(storage.Deadline, storage.CampaignConfig)
	w.registry.Attach(c.ID, engine)
	return engine, nil
}

// fail moves the engine to the Error state and records it so the
// container is not retried until the page reloads
func (w *Widget) fail(containerID string, engine *Engine, err error) (*Engine, error) {
	engine.Fail("countdown unavailable")
	w.registry.Attach(containerID, engine)
	return engine, err
}

// Unmount stops the countdown for a container that left the page and
// frees its registry slot
func (w *Widget) Unmount(containerID string) {
	w.registry.Remove(containerID)
}

// Engine returns the engine attached to a container, if any
func (w *Widget) Engine(containerID string) (*Engine, bool) {
	return w.registry.Engine(containerID)
}
