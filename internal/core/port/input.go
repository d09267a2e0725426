package port

import (
	"figview/internal/core/domain"

	"github.com/rs/zerolog/log"
)

type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	Wheel
	KeyDown
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	case Wheel:
		return "wheel"
	case KeyDown:
		return "keydown"
	default:
		return "unknown"
	}
}

// Scope selects where a subscription listens: the whole window or only the viewer's container.
type Scope int

const (
	ScopeWindow Scope = iota
	ScopeContainer
)

// Event is a single input occurrence. Position is in window coordinates.
// DeltaY follows the browser convention: positive means scrolling down.
type Event struct {
	Kind     EventKind
	Position domain.Point
	DeltaY   float64
	Key      string

	// Passive is set on the copy handed to a passive subscriber.
	Passive bool

	defaultPrevented bool
}

// PreventDefault suppresses the host's default handling of the event. It has no effect on
// an event delivered to a passive subscriber.
func (e *Event) PreventDefault() {
	if e.Passive {
		log.Warn().Str("kind", e.Kind.String()).Msg("preventDefault ignored inside passive handler")
		return
	}
	e.defaultPrevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

type EventHandler func(ev *Event)

type SubscribeOptions struct {
	// Passive handlers cannot suppress the default behaviour.
	Passive bool
}

// Subscription is the token returned by Subscribe; it is the only way to remove the handler.
type Subscription struct {
	ID    uint64
	Scope Scope
	Kind  EventKind
}

type InputSource interface {
	// Subscribe registers a handler for one event kind at the given scope and returns its token.
	Subscribe(scope Scope, kind EventKind, handler EventHandler, opts SubscribeOptions) (Subscription, error)
	// Unsubscribe removes the handler behind the token. Unknown or already removed tokens are ignored.
	Unsubscribe(sub Subscription)
}
