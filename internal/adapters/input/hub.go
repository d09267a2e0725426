package input

import (
	"figview/internal/core/domain"
	"figview/internal/core/port"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type handlerEntry struct {
	id      uint64
	scope   port.Scope
	handler port.EventHandler
	passive bool
}

// Hub fans host input out to subscribers. Each window owns one hub; there is no shared
// registry between windows.
type Hub struct {
	nextID    uint64
	handlers  map[port.EventKind][]handlerEntry
	container domain.Rect
	logger    zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		handlers: make(map[port.EventKind][]handlerEntry),
		logger:   log.With().Str("component", "input").Logger(),
	}
}

// SetContainer updates the rectangle container-scope handlers listen on.
func (h *Hub) SetContainer(bounds domain.Rect) {
	h.container = bounds
}

func (h *Hub) Subscribe(scope port.Scope, kind port.EventKind, handler port.EventHandler,
	opts port.SubscribeOptions) (port.Subscription, error) {
	if handler == nil {
		return port.Subscription{}, fmt.Errorf("nil handler for %s", kind)
	}
	if scope != port.ScopeWindow && scope != port.ScopeContainer {
		return port.Subscription{}, domain.ErrUnsupportedScope
	}
	// Keys have no position, so they can only be heard by the whole window.
	if kind == port.KeyDown && scope != port.ScopeWindow {
		return port.Subscription{}, fmt.Errorf("%w: %s only at window scope", domain.ErrUnsupportedScope, kind)
	}

	h.nextID++
	entry := handlerEntry{id: h.nextID, scope: scope, handler: handler, passive: opts.Passive}
	h.handlers[kind] = append(h.handlers[kind], entry)

	h.logger.Debug().
		Uint64("id", entry.id).
		Str("kind", kind.String()).
		Bool("passive", opts.Passive).
		Msg("handler subscribed")

	return port.Subscription{ID: entry.id, Scope: scope, Kind: kind}, nil
}

func (h *Hub) Unsubscribe(sub port.Subscription) {
	entries := h.handlers[sub.Kind]
	for i, entry := range entries {
		if entry.id != sub.ID {
			continue
		}

		// Copy instead of shifting in place so a dispatch holding the old slice is untouched.
		remaining := make([]handlerEntry, 0, len(entries)-1)
		remaining = append(remaining, entries[:i]...)
		remaining = append(remaining, entries[i+1:]...)
		h.handlers[sub.Kind] = remaining

		h.logger.Debug().Uint64("id", sub.ID).Str("kind", sub.Kind.String()).Msg("handler removed")
		return
	}
}

// Count returns how many handlers are registered for kind.
func (h *Hub) Count(kind port.EventKind) int {
	return len(h.handlers[kind])
}

// Dispatch delivers ev to window-scope handlers and then, if the position falls inside the
// container, to container-scope handlers. It reports whether the default was prevented.
func (h *Hub) Dispatch(ev *port.Event) bool {
	snapshot := h.handlers[ev.Kind]
	if len(snapshot) == 0 {
		return false
	}

	inside := ev.Kind != port.KeyDown && h.container.Contains(ev.Position)

	for _, scope := range []port.Scope{port.ScopeWindow, port.ScopeContainer} {
		if scope == port.ScopeContainer && !inside {
			continue
		}

		for _, entry := range snapshot {
			if entry.scope != scope || !h.live(ev.Kind, entry.id) {
				continue
			}
			h.deliver(entry, ev)
		}
	}

	return ev.DefaultPrevented()
}

func (h *Hub) deliver(entry handlerEntry, ev *port.Event) {
	if !entry.passive {
		entry.handler(ev)
		return
	}

	passive := *ev
	passive.Passive = true
	entry.handler(&passive)
}

func (h *Hub) live(kind port.EventKind, id uint64) bool {
	for _, entry := range h.handlers[kind] {
		if entry.id == id {
			return true
		}
	}
	return false
}
