package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://Example.com/path", "example.com"},
		{"http://example.com:8080", "example.com"},
		{"  https://sub.example.org  ", "sub.example.org"},
		{"not a url", "invalid"},
		{"", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := HostOf(tt.input); got != tt.want {
				t.Errorf("HostOf(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecordFetchAndGetHostStats(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	at := time.Unix(1700000000, 0)

	for _, outcome := range []string{"ok", "ok", "http"} {
		if err := store.RecordFetch(ctx, "https://example.com/a", outcome, at); err != nil {
			t.Fatalf("RecordFetch() error = %v", err)
		}
	}

	stats, err := store.GetHostStats(ctx, "example.com")
	if err != nil {
		t.Fatalf("GetHostStats() error = %v", err)
	}
	if stats.Outcomes["ok"] != 2 || stats.Outcomes["http"] != 1 {
		t.Errorf("Outcomes = %v, want ok=2 http=1", stats.Outcomes)
	}
	if stats.Total() != 3 {
		t.Errorf("Total() = %d, want 3", stats.Total())
	}
	if !stats.LastFetchedAt.Equal(at) {
		t.Errorf("LastFetchedAt = %v, want %v", stats.LastFetchedAt, at)
	}
	if ttl := mr.TTL(HostStatsKey("example.com")); ttl != DefaultStatsTTL {
		t.Errorf("TTL = %v, want %v", ttl, DefaultStatsTTL)
	}
}

func TestGetHostStatsNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.GetHostStats(context.Background(), "missing.example"); err == nil {
		t.Error("GetHostStats() for unknown host should fail")
	}
}

func TestGetAllStatsDropsExpiredHosts(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_ = store.RecordFetch(ctx, "https://a.example", "ok", now)
	_ = store.RecordFetch(ctx, "https://b.example", "network", now)

	mr.FastForward(DefaultStatsTTL + time.Second)
	_ = store.RecordFetch(ctx, "https://c.example", "decode", now)

	all, err := store.GetAllStats(ctx)
	if err != nil {
		t.Fatalf("GetAllStats() error = %v", err)
	}
	if len(all) != 1 || all[0].Host != "c.example" {
		t.Fatalf("GetAllStats() = %+v, want only c.example", all)
	}

	members, _ := mr.Members(AllHostsKey())
	if len(members) != 1 {
		t.Errorf("expired hosts should be pruned from the set, got %v", members)
	}
}

func TestDeleteHostStats(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_ = store.RecordFetch(ctx, "https://example.com", "ok", time.Now())
	if err := store.DeleteHostStats(ctx, "example.com"); err != nil {
		t.Fatalf("DeleteHostStats() error = %v", err)
	}
	if _, err := store.GetHostStats(ctx, "example.com"); err == nil {
		t.Error("stats should be gone after delete")
	}
}

func TestPing(t *testing.T) {
	store, mr := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Ping() against a stopped server should fail")
	}
}
