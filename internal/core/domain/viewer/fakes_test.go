package viewer

import (
	"context"
	"figview/internal/core/domain"
	"figview/internal/core/port"
	"time"
)

type fakeSubscription struct {
	sub     port.Subscription
	handler port.EventHandler
	opts    port.SubscribeOptions
}

type fakeSource struct {
	nextID    uint64
	active    map[uint64]fakeSubscription
	removed   []port.Subscription
	failAfter int
}

func newFakeSource() *fakeSource {
	return &fakeSource{active: make(map[uint64]fakeSubscription), failAfter: -1}
}

func (f *fakeSource) Subscribe(scope port.Scope, kind port.EventKind, handler port.EventHandler,
	opts port.SubscribeOptions) (port.Subscription, error) {
	if f.failAfter >= 0 && len(f.active) >= f.failAfter {
		return port.Subscription{}, domain.ErrUnsupportedScope
	}

	f.nextID++
	sub := port.Subscription{ID: f.nextID, Scope: scope, Kind: kind}
	f.active[sub.ID] = fakeSubscription{sub: sub, handler: handler, opts: opts}

	return sub, nil
}

func (f *fakeSource) Unsubscribe(sub port.Subscription) {
	if _, ok := f.active[sub.ID]; !ok {
		return
	}
	delete(f.active, sub.ID)
	f.removed = append(f.removed, sub)
}

// emit delivers an event to every active handler of its kind, ignoring scope.
func (f *fakeSource) emit(ev *port.Event) *port.Event {
	for _, s := range f.snapshot(ev.Kind) {
		if _, ok := f.active[s.sub.ID]; !ok {
			continue
		}
		s.handler(ev)
	}
	return ev
}

func (f *fakeSource) snapshot(kind port.EventKind) []fakeSubscription {
	var subs []fakeSubscription
	for id := uint64(1); id <= f.nextID; id++ {
		if s, ok := f.active[id]; ok && s.sub.Kind == kind {
			subs = append(subs, s)
		}
	}
	return subs
}

func (f *fakeSource) find(kind port.EventKind) (fakeSubscription, bool) {
	subs := f.snapshot(kind)
	if len(subs) == 0 {
		return fakeSubscription{}, false
	}
	return subs[0], true
}

type fakeGeometry struct {
	bounds    domain.Rect
	hasBounds bool
	size      domain.Size
	hasSize   bool
}

func (g *fakeGeometry) ContainerBounds() (domain.Rect, bool) {
	return g.bounds, g.hasBounds
}

func (g *fakeGeometry) ImageSize() (domain.Size, bool) {
	return g.size, g.hasSize
}

type scheduledTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

type fakeScheduler struct {
	tasks []*scheduledTask
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) func() {
	task := &scheduledTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() { task.cancelled = true }
}

func (s *fakeScheduler) fire() {
	for _, task := range s.tasks {
		if !task.cancelled {
			task.cancelled = true
			task.fn()
		}
	}
}

type fakeSaver struct {
	ctx      context.Context
	source   string
	filename string
	err      error
}

func (s *fakeSaver) SaveAs(ctx context.Context, source string, filename string) (string, error) {
	s.ctx = ctx
	s.source = source
	s.filename = filename
	if s.err != nil {
		return "", s.err
	}
	return "/downloads/" + filename, nil
}

func pointerEvent(kind port.EventKind, x, y float64) *port.Event {
	return &port.Event{Kind: kind, Position: domain.Point{X: x, Y: y}}
}

func keyEvent(key string) *port.Event {
	return &port.Event{Kind: port.KeyDown, Key: key}
}

func wheelEvent(x, y, deltaY float64) *port.Event {
	return &port.Event{Kind: port.Wheel, Position: domain.Point{X: x, Y: y}, DeltaY: deltaY}
}
