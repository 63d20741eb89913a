package sched

import (
	"reflect"
	"testing"
)

func TestRunDueFiresInDeadlineOrder(t *testing.T) {
	r := New()
	var got []string
	r.At(30, "b", func() { got = append(got, "c") })
	r.At(10, "a", func() { got = append(got, "a") })
	r.At(10, "a", func() { got = append(got, "b") })
	r.At(50, "a", func() { got = append(got, "late") })

	if ran := r.RunDue(30); ran != 3 {
		t.Fatalf("ran %d callbacks, want 3", ran)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if next, ok := r.Next(); !ok || next != 50 {
		t.Fatalf("next = %d,%v want 50,true", next, ok)
	}
}

func TestCallbacksMayReschedule(t *testing.T) {
	r := New()
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 5 {
			r.At(int64(count*10), "loop", tick)
		}
	}
	r.At(0, "loop", tick)
	r.RunDue(25)
	if count != 3 {
		t.Fatalf("count = %d, want 3 (frames 0,10,20)", count)
	}
	if r.Count("loop") != 1 {
		t.Fatalf("pending loop timers = %d, want 1", r.Count("loop"))
	}
}

func TestCancelKindIsSelective(t *testing.T) {
	r := New()
	fired := map[Kind]int{}
	for i := 0; i < 3; i++ {
		r.At(int64(i), "arpeggio_note", func() { fired["arpeggio_note"]++ })
	}
	r.At(1, "pad", func() { fired["pad"]++ })

	if n := r.CancelKind("arpeggio_note"); n != 3 {
		t.Fatalf("canceled %d, want 3", n)
	}
	if r.Count("arpeggio_note") != 0 || r.Len() != 1 {
		t.Fatalf("unexpected pending state: arp=%d len=%d", r.Count("arpeggio_note"), r.Len())
	}
	r.RunDue(100)
	if fired["arpeggio_note"] != 0 || fired["pad"] != 1 {
		t.Fatalf("fired = %v", fired)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	r := New()
	fired := false
	id := r.At(5, "x", func() { fired = true })
	if !r.Cancel(id) {
		t.Fatal("first cancel should succeed")
	}
	if r.Cancel(id) {
		t.Fatal("second cancel should be a no-op")
	}
	r.RunDue(10)
	if fired {
		t.Fatal("canceled timer fired")
	}
}

func TestCancelAllFromCallback(t *testing.T) {
	r := New()
	fired := 0
	r.At(1, "stop", func() { r.CancelAll() })
	r.At(2, "x", func() { fired++ })
	r.At(3, "y", func() { fired++ })
	r.RunDue(10)
	if fired != 0 {
		t.Fatalf("timers fired after CancelAll: %d", fired)
	}
	if r.Len() != 0 {
		t.Fatalf("pending = %d, want 0", r.Len())
	}
	if _, ok := r.Next(); ok {
		t.Fatal("Next should report no deadline")
	}
	if n := r.CancelAll(); n != 0 {
		t.Fatalf("second CancelAll = %d, want 0", n)
	}
}
