package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// gatedFetcher blocks each request until its url is released.
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	results map[string]Metadata
	errs    map[string]error
	calls   atomic.Int32
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates:   make(map[string]chan struct{}),
		results: make(map[string]Metadata),
		errs:    make(map[string]error),
	}
}

func (g *gatedFetcher) gate(u string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[u]
	if !ok {
		ch = make(chan struct{})
		g.gates[u] = ch
	}
	return ch
}

func (g *gatedFetcher) release(u string) { close(g.gate(u)) }

func (g *gatedFetcher) Fetch(ctx context.Context, u string) (Metadata, error) {
	g.calls.Add(1)
	select {
	case <-g.gate(u):
	case <-ctx.Done():
		return Metadata{}, &FetchError{Kind: KindNetwork, URL: u, Err: ctx.Err()}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.results[u], g.errs[u]
}

func waitSettled(t *testing.T, c *Card) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestCardInitialState(t *testing.T) {
	c := New(newGatedFetcher())
	defer c.Close()

	if got := c.State(); got != (State{}) {
		t.Errorf("initial State() = %+v, want zero", got)
	}
	waitSettled(t, c)
}

func TestCardSuccessfulFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"title":"Ex","description":"D","og:image":"https://ex.com/og.png","url":"https://example.com/"}}`))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(FetcherOptions{Endpoint: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	var settled []Settlement
	var mu sync.Mutex
	c := New(f, WithSettleHook(func(s Settlement) {
		mu.Lock()
		settled = append(settled, s)
		mu.Unlock()
	}))
	defer c.Close()

	c.SetURL("https://example.com")
	waitSettled(t, c)

	want := State{
		URL:         "https://example.com",
		Title:       "Ex",
		Description: "D",
		Image:       "https://ex.com/og.png",
		Link:        "https://example.com/",
	}
	if got := c.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(settled) != 1 || settled[0].Err != nil || settled[0].URL != "https://example.com" {
		t.Errorf("settlements = %+v, want one successful", settled)
	}
}

func TestCardFailureShowsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(FetcherOptions{Endpoint: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	c := New(f, WithURL("https://broken.example"))
	defer c.Close()
	waitSettled(t, c)

	want := State{URL: "https://broken.example", Title: FallbackTitle}
	if got := c.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
}

func TestCardLoadingIsImmediate(t *testing.T) {
	g := newGatedFetcher()
	c := New(g)
	defer c.Close()

	if !c.SetURL("https://a.example") {
		t.Fatal("SetURL() = false, want true")
	}
	if !c.State().Loading {
		t.Error("Loading = false right after SetURL")
	}

	g.results["https://a.example"] = Metadata{Title: "A", Link: "https://a.example"}
	g.release("https://a.example")
	waitSettled(t, c)

	if c.State().Loading {
		t.Error("Loading = true after settle")
	}
}

func TestCardSameURLDoesNotRefetch(t *testing.T) {
	g := newGatedFetcher()
	g.release("https://a.example")
	c := New(g)
	defer c.Close()

	c.SetURL("https://a.example")
	waitSettled(t, c)

	if c.SetURL("https://a.example") {
		t.Error("SetURL(same) = true, want false")
	}
	waitSettled(t, c)
	if n := g.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestCardLatestURLWins(t *testing.T) {
	g := newGatedFetcher()
	g.results["https://a.example"] = Metadata{Title: "A", Link: "https://a.example"}
	g.results["https://b.example"] = Metadata{Title: "B", Link: "https://b.example"}

	var hooks atomic.Int32
	c := New(g, WithSettleHook(func(Settlement) { hooks.Add(1) }))
	defer c.Close()

	c.SetURL("https://a.example")
	c.SetURL("https://b.example")

	// B settles first, then A arrives late.
	g.release("https://b.example")
	waitSettled(t, c)
	g.release("https://a.example")

	// A was cancelled when B was set; give it a moment to be discarded.
	time.Sleep(20 * time.Millisecond)

	got := c.State()
	if got.URL != "https://b.example" || got.Title != "B" || got.Loading {
		t.Errorf("State() = %+v, want settled on B", got)
	}
	if n := hooks.Load(); n != 1 {
		t.Errorf("settle hooks ran %d times, want 1", n)
	}
}

func TestCardStaleResultDiscarded(t *testing.T) {
	// A fetcher that ignores cancellation still cannot overwrite newer state.
	release := make(chan struct{})
	f := FetcherFunc(func(_ context.Context, u string) (Metadata, error) {
		if u == "https://slow.example" {
			<-release
		}
		return Metadata{Title: u, Link: u}, nil
	})

	c := New(f)
	defer c.Close()

	c.SetURL("https://slow.example")
	c.SetURL("https://fast.example")
	waitSettled(t, c)
	close(release)
	time.Sleep(20 * time.Millisecond)

	if got := c.State().Title; got != "https://fast.example" {
		t.Errorf("Title = %q, want the latest url's", got)
	}
}

func TestCardEmptyURLIssuesNoRequest(t *testing.T) {
	g := newGatedFetcher()
	g.results["https://a.example"] = Metadata{Title: "A", Link: "https://a.example"}
	g.release("https://a.example")

	c := New(g, WithURL("https://a.example"))
	defer c.Close()
	waitSettled(t, c)

	c.SetURL("")
	waitSettled(t, c)

	if n := g.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
	if got := c.State(); got != (State{}) {
		t.Errorf("State() = %+v, want cleared", got)
	}
}

func TestCardSubscribeSeesLatest(t *testing.T) {
	g := newGatedFetcher()
	g.results["https://a.example"] = Metadata{Title: "A", Link: "https://a.example"}

	c := New(g)
	defer c.Close()

	var mu sync.Mutex
	var snapshots []State
	unsubscribe := c.Subscribe(func(s State) {
		mu.Lock()
		snapshots = append(snapshots, s)
		mu.Unlock()
	})
	defer unsubscribe()

	c.SetURL("https://a.example")
	g.release("https://a.example")
	waitSettled(t, c)

	mu.Lock()
	defer mu.Unlock()
	if len(snapshots) < 2 {
		t.Fatalf("got %d snapshots, want loading and settled", len(snapshots))
	}
	if !snapshots[0].Loading {
		t.Errorf("first snapshot = %+v, want loading", snapshots[0])
	}
	if last := snapshots[len(snapshots)-1]; last != c.State() {
		t.Errorf("last snapshot = %+v, want current %+v", last, c.State())
	}
}

func TestCardClose(t *testing.T) {
	g := newGatedFetcher()
	c := New(g, WithURL("https://a.example"))

	c.Close()
	c.Close()

	if c.SetURL("https://b.example") {
		t.Error("SetURL() after Close = true")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Wait(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Wait() after Close error = %v, want ErrClosed", err)
	}
	if n := g.calls.Load(); n > 1 {
		t.Errorf("fetch calls = %d, want at most 1", n)
	}
}

func TestCardDone(t *testing.T) {
	c := New(newGatedFetcher())

	select {
	case <-c.Done():
		t.Fatal("Done() closed on a live card")
	default:
	}

	c.Close()
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() not closed after Close")
	}
}
