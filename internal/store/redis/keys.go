package redis

const (
	// KeyPrefixHostStats is the prefix for per-host fetch statistics hashes
	KeyPrefixHostStats = "linkpreview:stats:host:"
	// KeyAllHosts is the key for the set of every host with statistics
	KeyAllHosts = "linkpreview:stats:hosts"

	// FieldLastFetched holds the unix time of the latest recorded fetch
	FieldLastFetched = "last_fetched_at"
)

// HostStatsKey returns the Redis key for a host's statistics
func HostStatsKey(host string) string {
	return KeyPrefixHostStats + host
}

// AllHostsKey returns the key for the set of all hosts
func AllHostsKey() string {
	return KeyAllHosts
}
