package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func TestRunDue(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewFrameScheduler(clk.now)
	var ran []string

	s.AfterFunc(100*time.Millisecond, func() { ran = append(ran, "late") })
	s.AfterFunc(10*time.Millisecond, func() { ran = append(ran, "early") })

	assert.Equal(t, 0, s.RunDue(clk.t.Add(5*time.Millisecond)))
	assert.Equal(t, 1, s.RunDue(clk.t.Add(50*time.Millisecond)))
	assert.Equal(t, 1, s.RunDue(clk.t.Add(100*time.Millisecond)))
	assert.Equal(t, 0, s.RunDue(clk.t.Add(time.Hour)))

	assert.Equal(t, []string{"early", "late"}, ran)
	assert.Equal(t, 0, s.Pending())
}

func TestRunDueOrdersByDeadline(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewFrameScheduler(clk.now)
	var ran []int

	s.AfterFunc(30*time.Millisecond, func() { ran = append(ran, 3) })
	s.AfterFunc(10*time.Millisecond, func() { ran = append(ran, 1) })
	s.AfterFunc(20*time.Millisecond, func() { ran = append(ran, 2) })

	s.RunDue(clk.t.Add(time.Second))

	assert.Equal(t, []int{1, 2, 3}, ran)
}

func TestCancel(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	s := NewFrameScheduler(clk.now)
	called := false

	cancel := s.AfterFunc(time.Millisecond, func() { called = true })
	cancel()
	cancel()

	assert.Equal(t, 0, s.RunDue(clk.t.Add(time.Second)))
	assert.False(t, called)
	assert.Equal(t, 0, s.Pending())
}

func TestCancelFromEarlierTask(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	s := NewFrameScheduler(clk.now)
	called := false

	var cancelSecond func()
	s.AfterFunc(time.Millisecond, func() { cancelSecond() })
	cancelSecond = s.AfterFunc(2*time.Millisecond, func() { called = true })

	assert.Equal(t, 1, s.RunDue(clk.t.Add(time.Second)))
	assert.False(t, called)
}

func TestTaskScheduledWhileRunningWaits(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	s := NewFrameScheduler(clk.now)
	nested := false

	s.AfterFunc(0, func() {
		s.AfterFunc(0, func() { nested = true })
	})

	assert.Equal(t, 1, s.RunDue(clk.t))
	assert.False(t, nested)
	assert.Equal(t, 1, s.Pending())

	assert.Equal(t, 1, s.RunDue(clk.t))
	assert.True(t, nested)
}
