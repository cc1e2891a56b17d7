package host

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

func newCard() *preview.Card {
	return preview.New(preview.FetcherFunc(func(ctx context.Context, u string) (preview.Metadata, error) {
		return preview.Metadata{Title: u, Link: u}, nil
	}))
}

func TestNewHost(t *testing.T) {
	h := New(0)
	if h == nil {
		t.Fatal("New() returned nil")
	}
	if h.Count() != 0 {
		t.Errorf("New() should start empty, got %d", h.Count())
	}
}

func TestAddGetRemove(t *testing.T) {
	h := New(0)
	card := newCard()

	id, err := h.Add(card)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if id == "" {
		t.Fatal("Add() returned empty id")
	}

	got, ok := h.Get(id)
	if !ok || got != card {
		t.Fatalf("Get(%q) = %v, %v; want the added card", id, got, ok)
	}

	if !h.Remove(id) {
		t.Error("Remove() should report an existing card")
	}
	if h.Remove(id) {
		t.Error("Remove() twice should report false")
	}
	if _, ok := h.Get(id); ok {
		t.Error("Get() after Remove() should fail")
	}

	// Removing destroys the card.
	if card.SetURL("https://example.com") {
		t.Error("SetURL() on a removed card should be ignored")
	}
}

func TestAddRespectsLimit(t *testing.T) {
	h := New(2)
	for i := 0; i < 2; i++ {
		if _, err := h.Add(newCard()); err != nil {
			t.Fatalf("Add() #%d error = %v", i, err)
		}
	}
	if _, err := h.Add(newCard()); err != ErrFull {
		t.Errorf("Add() over limit error = %v, want ErrFull", err)
	}
}

func TestGetTouchesLastSeen(t *testing.T) {
	h := New(0)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	id, _ := h.Add(newCard())
	now = now.Add(time.Hour)
	h.Get(id)

	infos := h.List()
	if len(infos) != 1 {
		t.Fatalf("List() = %d entries, want 1", len(infos))
	}
	if !infos[0].LastSeen.Equal(now) {
		t.Errorf("LastSeen = %v, want %v", infos[0].LastSeen, now)
	}
	if infos[0].Created.Equal(now) {
		t.Error("Created should not move on Get()")
	}
}

func TestCloseAll(t *testing.T) {
	h := New(0)
	for i := 0; i < 3; i++ {
		if _, err := h.Add(newCard()); err != nil {
			t.Fatal(err)
		}
	}
	h.CloseAll()
	if h.Count() != 0 {
		t.Errorf("Count() after CloseAll() = %d, want 0", h.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	h := New(0)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := h.Add(newCard())
			if err != nil {
				t.Errorf("Add() error = %v", err)
				return
			}
			h.Get(id)
			h.Touch(id)
			h.Remove(id)
		}()
	}
	wg.Wait()

	if h.Count() != 0 {
		t.Errorf("Count() = %d, want 0", h.Count())
	}
}

func TestEvictIdle(t *testing.T) {
	h := New(0)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	stale := newCard()
	staleID, _ := h.Add(stale)

	now = now.Add(time.Hour)
	freshID, _ := h.Add(newCard())

	ids := h.EvictIdle(now.Add(-30 * time.Minute))
	if len(ids) != 1 || ids[0] != staleID {
		t.Fatalf("EvictIdle() = %v, want [%s]", ids, staleID)
	}
	if _, ok := h.Get(freshID); !ok {
		t.Error("fresh card was evicted")
	}
	if stale.SetURL("https://example.com") {
		t.Error("evicted card should be closed")
	}
}
