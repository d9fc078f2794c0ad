// Package eventloop implements the single-threaded scheduler shared by
// both execution engines: a microtask queue for promise reactions and a
// timer queue for delayed callbacks. Nothing here spawns goroutines; the
// loop runs on whichever goroutine drives evaluation, so interleaving is
// bounded to explicit scheduling points.
package eventloop

import (
	"sort"
)

// Task is a unit of queued work.
type Task func()

// Timer is one pending delayed callback, ordered by (due, seq).
type Timer struct {
	ID       int
	Delay    float64
	Seq      int
	Callback Task
	canceled bool
}

// Loop owns the microtask and timer queues. Microtasks always drain to
// exhaustion before the next timer is released.
type Loop struct {
	microtasks []Task
	timers     []*Timer
	nextID     int
	nextSeq    int

	// clock is virtual: releasing a timer advances it to the timer's due
	// time, keeping ordering deterministic without host sleeps.
	clock float64
}

func New() *Loop {
	return &Loop{nextID: 1}
}

// ScheduleMicrotask queues a reaction to run after the current synchronous
// work completes.
func (l *Loop) ScheduleMicrotask(t Task) {
	l.microtasks = append(l.microtasks, t)
}

// ScheduleTimer queues a delayed callback and returns its handle.
func (l *Loop) ScheduleTimer(delay float64, t Task) int {
	if delay < 0 {
		delay = 0
	}
	id := l.nextID
	l.nextID++
	timer := &Timer{ID: id, Delay: l.clock + delay, Seq: l.nextSeq, Callback: t}
	l.nextSeq++
	l.timers = append(l.timers, timer)
	return id
}

// ClearTimer cancels a pending timer; unknown handles are ignored.
func (l *Loop) ClearTimer(id int) {
	for _, t := range l.timers {
		if t.ID == id {
			t.canceled = true
			return
		}
	}
}

// DrainMicrotasks runs queued microtasks until none remain, including
// ones scheduled while draining. Reports whether any ran.
func (l *Loop) DrainMicrotasks() bool {
	ran := false
	for len(l.microtasks) > 0 {
		task := l.microtasks[0]
		l.microtasks = l.microtasks[1:]
		ran = true
		task()
	}
	return ran
}

// HasPending reports whether any work remains in either queue.
func (l *Loop) HasPending() bool {
	if len(l.microtasks) > 0 {
		return true
	}
	for _, t := range l.timers {
		if !t.canceled {
			return true
		}
	}
	return false
}

// releaseNextTimer pops and runs the earliest-due live timer. The caller
// must have drained microtasks first.
func (l *Loop) releaseNextTimer() bool {
	live := l.timers[:0]
	for _, t := range l.timers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	l.timers = live
	if len(l.timers) == 0 {
		return false
	}
	sort.SliceStable(l.timers, func(i, j int) bool {
		if l.timers[i].Delay != l.timers[j].Delay {
			return l.timers[i].Delay < l.timers[j].Delay
		}
		return l.timers[i].Seq < l.timers[j].Seq
	})
	next := l.timers[0]
	l.timers = l.timers[1:]
	if next.Delay > l.clock {
		l.clock = next.Delay
	}
	next.Callback()
	return true
}

// Tick drains microtasks, then releases at most one timer. Reports
// whether any work was done.
func (l *Loop) Tick() bool {
	ran := l.DrainMicrotasks()
	if l.releaseNextTimer() {
		return true
	}
	return ran
}

// Run drives the loop until both queues are empty.
func (l *Loop) Run() {
	for l.Tick() {
	}
}

// RunUntil drives the loop until done() reports true or no work remains.
// Used by await: the condition is the awaited promise settling.
func (l *Loop) RunUntil(done func() bool) {
	for !done() {
		if !l.Tick() {
			return
		}
	}
}
