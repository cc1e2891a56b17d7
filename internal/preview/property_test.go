package preview

import "testing"

func TestPropertyNotifiesOnChange(t *testing.T) {
	var p Property[string]
	var changes [][2]string
	unsubscribe := p.Subscribe(func(old, next string) {
		changes = append(changes, [2]string{old, next})
	})

	if !p.Set("a") {
		t.Error("Set(a) = false")
	}
	if p.Set("a") {
		t.Error("Set(a) again = true")
	}
	p.Set("b")

	want := [][2]string{{"", "a"}, {"a", "b"}}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}

	unsubscribe()
	unsubscribe()
	p.Set("c")
	if len(changes) != 2 {
		t.Errorf("notified after unsubscribe: %v", changes)
	}
	if p.Get() != "c" {
		t.Errorf("Get() = %q, want c", p.Get())
	}
}

func TestPropertyClear(t *testing.T) {
	var p Property[int]
	calls := 0
	p.Subscribe(func(_, _ int) { calls++ })
	p.Subscribe(func(_, _ int) { calls++ })

	p.Set(1)
	p.clear()
	p.Set(2)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
