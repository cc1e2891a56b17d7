package redis

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultStatsTTL is how long a host's statistics live after its last fetch (30 days)
	DefaultStatsTTL = 30 * 24 * time.Hour

	unknownHost = "invalid"
)

// HostStats aggregates fetch outcomes for one target host.
// Only outcome counts are stored; fetched metadata never is.
type HostStats struct {
	Host          string           `json:"host"`
	Outcomes      map[string]int64 `json:"outcomes"`
	LastFetchedAt time.Time        `json:"last_fetched_at"`
}

// Total returns the number of recorded fetches.
func (s HostStats) Total() int64 {
	var n int64
	for _, c := range s.Outcomes {
		n += c
	}
	return n
}

// Store handles Redis operations for fetch statistics
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		ttl:    DefaultStatsTTL,
	}
}

// RecordFetch counts one fetch of rawURL with the given outcome label.
func (s *Store) RecordFetch(ctx context.Context, rawURL, outcome string, at time.Time) error {
	host := HostOf(rawURL)
	key := HostStatsKey(host)

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, outcome, 1)
	pipe.HSet(ctx, key, FieldLastFetched, at.Unix())
	pipe.Expire(ctx, key, s.ttl)
	pipe.SAdd(ctx, AllHostsKey(), host)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

// GetHostStats retrieves statistics for one host
func (s *Store) GetHostStats(ctx context.Context, host string) (*HostStats, error) {
	fields, err := s.client.HGetAll(ctx, HostStatsKey(host)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get host stats: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("stats not found: %s", host)
	}

	stats := &HostStats{Host: host, Outcomes: make(map[string]int64, len(fields))}
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s/%s: %w", host, field, err)
		}
		if field == FieldLastFetched {
			stats.LastFetchedAt = time.Unix(n, 0)
			continue
		}
		stats.Outcomes[field] = n
	}
	return stats, nil
}

// GetAllStats retrieves statistics for every known host, dropping hosts whose
// hash expired.
func (s *Store) GetAllStats(ctx context.Context) ([]*HostStats, error) {
	hosts, err := s.client.SMembers(ctx, AllHostsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get hosts: %w", err)
	}

	all := make([]*HostStats, 0, len(hosts))
	var expired []interface{}
	for _, host := range hosts {
		stats, err := s.GetHostStats(ctx, host)
		if err != nil {
			expired = append(expired, host)
			continue
		}
		all = append(all, stats)
	}

	if len(expired) > 0 {
		// Best effort; the next read retries.
		_ = s.client.SRem(ctx, AllHostsKey(), expired...).Err()
	}
	return all, nil
}

// DeleteHostStats removes a host's statistics
func (s *Store) DeleteHostStats(ctx context.Context, host string) error {
	if err := s.client.Del(ctx, HostStatsKey(host)).Err(); err != nil {
		return fmt.Errorf("failed to delete host stats: %w", err)
	}
	if err := s.client.SRem(ctx, AllHostsKey(), host).Err(); err != nil {
		return fmt.Errorf("failed to remove host from set: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// HostOf extracts the lowercase hostname used to group statistics.
func HostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return unknownHost
	}
	return strings.ToLower(u.Hostname())
}
