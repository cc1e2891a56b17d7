package host

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

// ErrFull is returned when the host already holds its maximum number of cards.
var ErrFull = errors.New("card host is full")

// Host keeps live card instances addressable by id. Removing a card from the
// host destroys it.
type Host struct {
	mu       sync.RWMutex
	cards    map[string]*entry // ID -> card
	maxCards int               // 0 = unlimited
	now      func() time.Time
}

type entry struct {
	card     *preview.Card
	created  time.Time
	lastSeen time.Time
}

// Info describes a hosted card without exposing it.
type Info struct {
	ID       string
	Created  time.Time
	LastSeen time.Time
}

// New creates an empty host.
func New(maxCards int) *Host {
	return &Host{
		cards:    make(map[string]*entry),
		maxCards: maxCards,
		now:      time.Now,
	}
}

// Add takes ownership of card and returns its new id.
func (h *Host) Add(card *preview.Card) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxCards > 0 && len(h.cards) >= h.maxCards {
		return "", ErrFull
	}

	id := uuid.NewString()
	now := h.now()
	h.cards[id] = &entry{card: card, created: now, lastSeen: now}
	return id, nil
}

// Get returns the card for id and marks it as seen.
func (h *Host) Get(id string) (*preview.Card, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.cards[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = h.now()
	return e.card, true
}

// Touch marks id as seen without returning the card.
func (h *Host) Touch(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.cards[id]; ok {
		e.lastSeen = h.now()
	}
}

// Remove destroys the card for id. It reports whether the card existed.
func (h *Host) Remove(id string) bool {
	h.mu.Lock()
	e, ok := h.cards[id]
	delete(h.cards, id)
	h.mu.Unlock()

	if ok {
		e.card.Close()
	}
	return ok
}

// Count returns the number of live cards.
func (h *Host) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.cards)
}

// List returns a description of every live card.
func (h *Host) List() []Info {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]Info, 0, len(h.cards))
	for id, e := range h.cards {
		infos = append(infos, Info{ID: id, Created: e.created, LastSeen: e.lastSeen})
	}
	return infos
}

// CloseAll destroys every card.
func (h *Host) CloseAll() {
	h.mu.Lock()
	cards := h.cards
	h.cards = make(map[string]*entry)
	h.mu.Unlock()

	for _, e := range cards {
		e.card.Close()
	}
}

// EvictIdle destroys every card not seen since cutoff and returns their ids.
func (h *Host) EvictIdle(cutoff time.Time) []string {
	h.mu.Lock()
	var evicted []*preview.Card
	var ids []string
	for id, e := range h.cards {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.card)
			ids = append(ids, id)
			delete(h.cards, id)
		}
	}
	h.mu.Unlock()

	for _, c := range evicted {
		c.Close()
	}
	return ids
}
