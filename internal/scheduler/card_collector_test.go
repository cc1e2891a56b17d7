package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/host"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

func newCard() *preview.Card {
	return preview.New(preview.FetcherFunc(func(_ context.Context, u string) (preview.Metadata, error) {
		return preview.Metadata{Title: u, Link: u}, nil
	}))
}

func TestCardCollector_Collect(t *testing.T) {
	log := logger.New("error", false)
	h := host.New(0)

	idleCard := newCard()
	idle, err := h.Add(idleCard)
	if err != nil {
		t.Fatal(err)
	}
	active, err := h.Add(newCard())
	if err != nil {
		t.Fatal(err)
	}

	cc := NewCardCollector(h, log, time.Hour, 30*time.Minute)

	// Nothing is idle yet
	if n := cc.Collect(); n != 0 {
		t.Fatalf("Collect() = %d, want 0", n)
	}

	// 45 minutes later neither card has been read
	h.Touch(active)
	cc.now = func() time.Time { return time.Now().Add(45 * time.Minute) }

	if n := cc.Collect(); n != 2 {
		t.Fatalf("Collect() = %d, want 2", n)
	}
	if h.Count() != 0 {
		t.Errorf("Count() = %d, want 0", h.Count())
	}
	if _, ok := h.Get(idle); ok {
		t.Error("idle card still hosted")
	}
	if idleCard.SetURL("https://example.com") {
		t.Error("evicted card should be closed")
	}
}

func TestCardCollector_KeepsRecentCards(t *testing.T) {
	h := host.New(0)
	id, err := h.Add(newCard())
	if err != nil {
		t.Fatal(err)
	}

	cc := NewCardCollector(h, logger.NewNop(), time.Hour, 30*time.Minute)
	cc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	if n := cc.Collect(); n != 0 {
		t.Errorf("Collect() = %d, want 0", n)
	}
	if _, ok := h.Get(id); !ok {
		t.Error("recent card was evicted")
	}
}

func TestCardCollector_DefaultTTL(t *testing.T) {
	cc := NewCardCollector(host.New(0), logger.NewNop(), time.Minute, 0)
	if cc.ttl != DefaultCardIdleTTL {
		t.Errorf("ttl = %v, want %v", cc.ttl, DefaultCardIdleTTL)
	}
}

func TestCardCollector_StartStop(t *testing.T) {
	h := host.New(0)
	if _, err := h.Add(newCard()); err != nil {
		t.Fatal(err)
	}

	cc := NewCardCollector(h, logger.NewNop(), 10*time.Millisecond, time.Millisecond)
	if err := cc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer cc.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for h.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.Count() != 0 {
		t.Errorf("Count() = %d, want idle card collected", h.Count())
	}
}
