package clock

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

type task struct {
	id        uint64
	due       time.Time
	fn        func()
	cancelled bool
}

// FrameScheduler holds deferred calls until the host's update loop asks for due work.
// It is not safe for concurrent use; everything runs on the update thread.
type FrameScheduler struct {
	now    func() time.Time
	nextID uint64
	tasks  []*task
}

func NewFrameScheduler(now func() time.Time) *FrameScheduler {
	if now == nil {
		now = time.Now
	}

	return &FrameScheduler{now: now}
}

func (s *FrameScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.nextID++
	t := &task{id: s.nextID, due: s.now().Add(d), fn: fn}
	s.tasks = append(s.tasks, t)

	log.Debug().Uint64("task", t.id).Dur("delay", d).Msg("scheduled deferred call")

	return func() {
		t.cancelled = true
	}
}

// Pending returns the number of tasks that have neither run nor been cancelled.
func (s *FrameScheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// RunDue runs every task due at or before now, earliest first, and returns how many ran.
// Tasks scheduled by a running task wait for the next call.
func (s *FrameScheduler) RunDue(now time.Time) int {
	var due, waiting []*task
	for _, t := range s.tasks {
		switch {
		case t.cancelled:
		case !t.due.After(now):
			due = append(due, t)
		default:
			waiting = append(waiting, t)
		}
	}
	s.tasks = waiting

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].due.Before(due[j].due)
	})

	ran := 0
	for _, t := range due {
		// An earlier task in this batch may have cancelled it.
		if t.cancelled {
			continue
		}
		t.cancelled = true
		t.fn()
		ran++
	}

	return ran
}
