package eventloop

import (
	"reflect"
	"testing"
)

func TestMicrotasksRunBeforeTimers(t *testing.T) {
	l := New()
	var order []string
	l.ScheduleTimer(0, func() { order = append(order, "timer") })
	l.ScheduleMicrotask(func() { order = append(order, "micro") })
	l.Run()
	if !reflect.DeepEqual(order, []string{"micro", "timer"}) {
		t.Errorf("order %v", order)
	}
}

func TestMicrotasksDrainToExhaustion(t *testing.T) {
	l := New()
	var order []string
	l.ScheduleMicrotask(func() {
		order = append(order, "a")
		l.ScheduleMicrotask(func() { order = append(order, "b") })
	})
	l.ScheduleTimer(0, func() { order = append(order, "timer") })
	l.Run()
	if !reflect.DeepEqual(order, []string{"a", "b", "timer"}) {
		t.Errorf("order %v", order)
	}
}

func TestTimerOrdering(t *testing.T) {
	l := New()
	var order []int
	l.ScheduleTimer(10, func() { order = append(order, 10) })
	l.ScheduleTimer(1, func() { order = append(order, 1) })
	l.ScheduleTimer(5, func() { order = append(order, 51) })
	l.ScheduleTimer(5, func() { order = append(order, 52) })
	l.Run()
	if !reflect.DeepEqual(order, []int{1, 51, 52, 10}) {
		t.Errorf("order %v", order)
	}
}

func TestVirtualClockAccumulates(t *testing.T) {
	l := New()
	var order []string
	l.ScheduleTimer(5, func() {
		order = append(order, "outer")
		// Scheduled at clock 5, due at 6: runs before the timer due at 10.
		l.ScheduleTimer(1, func() { order = append(order, "inner") })
	})
	l.ScheduleTimer(10, func() { order = append(order, "late") })
	l.Run()
	if !reflect.DeepEqual(order, []string{"outer", "inner", "late"}) {
		t.Errorf("order %v", order)
	}
}

func TestClearTimer(t *testing.T) {
	l := New()
	ran := false
	id := l.ScheduleTimer(1, func() { ran = true })
	l.ClearTimer(id)
	if l.HasPending() {
		t.Error("canceled timer still counts as pending")
	}
	l.Run()
	if ran {
		t.Error("canceled timer ran")
	}
	l.ClearTimer(999) // unknown handle is a no-op
}

func TestMicrotasksBetweenTimers(t *testing.T) {
	l := New()
	var order []string
	l.ScheduleTimer(1, func() {
		order = append(order, "t1")
		l.ScheduleMicrotask(func() { order = append(order, "m") })
	})
	l.ScheduleTimer(2, func() { order = append(order, "t2") })
	l.Run()
	if !reflect.DeepEqual(order, []string{"t1", "m", "t2"}) {
		t.Errorf("order %v", order)
	}
}

func TestRunUntil(t *testing.T) {
	l := New()
	done := false
	l.ScheduleTimer(1, func() { done = true })
	l.ScheduleTimer(2, func() { t.Error("ran past the condition") })
	l.RunUntil(func() bool { return done })
	if !done {
		t.Fatal("condition never became true")
	}
	// Remaining work is still pending for a later Run.
	if !l.HasPending() {
		t.Error("second timer was lost")
	}
}
