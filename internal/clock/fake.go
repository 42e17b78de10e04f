package clock

import (
	"slices"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock only moves when Advance or Set is called. Callbacks whose
// deadline is reached fire synchronously, in deadline order, on the
// goroutine that moved the clock. Callbacks may schedule new timers.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	callback func()
	done     bool
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := &fakeWaiter{deadline: c.current.Add(d), callback: f}
	c.waiters = append(c.waiters, w)

	return &Timer{stopFunc: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()

		if w.done {
			return false
		}

		w.done = true

		return true
	}}
}

// Pending reports how many callbacks are still scheduled.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0

	for _, w := range c.waiters {
		if !w.done {
			n++
		}
	}

	return n
}

// Advance moves the clock forward by d, firing due callbacks.
func (c *FakeClock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

// Set moves the clock to t, firing every callback due at or before t.
// Each callback observes Now() equal to its own deadline.
func (c *FakeClock) Set(t time.Time) {
	for {
		c.mu.Lock()

		next := c.nextDue(t)
		if next == nil {
			c.current = t
			c.mu.Unlock()

			return
		}

		next.done = true
		c.current = next.deadline
		c.mu.Unlock()

		next.callback()
	}
}

func (c *FakeClock) nextDue(t time.Time) *fakeWaiter {
	c.waiters = slices.DeleteFunc(c.waiters, func(w *fakeWaiter) bool { return w.done })

	var next *fakeWaiter

	for _, w := range c.waiters {
		if w.deadline.After(t) {
			continue
		}

		if next == nil || w.deadline.Before(next.deadline) {
			next = w
		}
	}

	return next
}
