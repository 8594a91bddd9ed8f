package notify

import (
	"testing"
)

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		ct   ChangeType
		want string
	}{
		{ChangeSet, "set"},
		{ChangeReload, "reload"},
		{ChangeCommit, "commit"},
		{ChangeType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestNotifier_SubscribePath(t *testing.T) {
	n := New()
	defer n.Close()

	var all, holdtap, exact []string
	n.Subscribe(func(c Change) { all = append(all, c.Path) })
	n.SubscribePath("holdtap", func(c Change) { holdtap = append(holdtap, c.Path) })
	n.SubscribePath("autoshift.timeout", func(c Change) { exact = append(exact, c.Path) })

	n.NotifySet("holdtap.timeout", "200", "250", "command")
	n.NotifySet("holdtapx.timeout", "1", "2", "command")
	n.NotifySet("autoshift.timeout", "175", "150", "command")
	n.NotifySet("autoshift.timeouts", "1", "2", "command")
	n.NotifyReload("file")

	wantAll := []string{"holdtap.timeout", "holdtapx.timeout", "autoshift.timeout", "autoshift.timeouts", ""}
	if len(all) != len(wantAll) {
		t.Fatalf("global observer got %v, want %v", all, wantAll)
	}
	for i := range wantAll {
		if all[i] != wantAll[i] {
			t.Errorf("global[%d] = %q, want %q", i, all[i], wantAll[i])
		}
	}
	if len(holdtap) != 2 || holdtap[0] != "holdtap.timeout" || holdtap[1] != "" {
		t.Errorf("holdtap observer got %v", holdtap)
	}
	if len(exact) != 2 || exact[0] != "autoshift.timeout" {
		t.Errorf("exact observer got %v", exact)
	}
}

func TestNotifier_Order(t *testing.T) {
	n := New()
	var order []int
	for i := 0; i < 5; i++ {
		n.Subscribe(func(Change) { order = append(order, i) })
	}
	n.NotifyCommit("test")
	for i, got := range order {
		if got != i {
			t.Fatalf("delivery order = %v, want subscription order", order)
		}
	}
}

func TestNotifier_ChangeFields(t *testing.T) {
	n := New()
	var got Change
	n.Subscribe(func(c Change) { got = c })

	n.NotifySet("multitap.timeout", "200", "300", "file")
	want := Change{Path: "multitap.timeout", Type: ChangeSet, OldValue: "200", NewValue: "300", Source: "file"}
	if got != want {
		t.Errorf("change = %+v, want %+v", got, want)
	}
}

func TestSubscription_Unsubscribe(t *testing.T) {
	n := New()
	count := 0
	sub := n.Subscribe(func(Change) { count++ })

	n.NotifyReload("test")
	sub.Unsubscribe()
	n.NotifyReload("test")

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if n.Len() != 0 {
		t.Errorf("Len() = %d, want 0", n.Len())
	}
}

func TestNotifier_Close(t *testing.T) {
	n := New()
	count := 0
	n.Subscribe(func(Change) { count++ })
	n.Close()
	n.Close()
	n.NotifyReload("test")
	if count != 0 {
		t.Errorf("closed notifier delivered %d changes", count)
	}
}

func TestBatch(t *testing.T) {
	n := New()
	var got []string
	n.Subscribe(func(c Change) { got = append(got, c.Path+"="+c.NewValue) })

	b := n.NewBatch()
	b.Set("a", "", "1", "test")
	b.Set("b", "", "2", "test")
	if b.Len() != 2 || len(got) != 0 {
		t.Fatalf("batch delivered early: %v", got)
	}
	b.Commit()
	if len(got) != 2 || got[0] != "a=1" || got[1] != "b=2" {
		t.Errorf("got %v", got)
	}

	b.Set("c", "", "3", "test")
	b.Discard()
	b.Commit()
	if len(got) != 2 {
		t.Errorf("discarded change delivered: %v", got)
	}
}
