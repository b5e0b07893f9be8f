package redis

const (
	// KeyRecentPasswords holds the JSON encoded history.
	KeyRecentPasswords = "recentPasswords"
	// KeyPrefixTimezone is the prefix for cached timezone lookups
	KeyPrefixTimezone = "passgen:tz:"
)

// HistoryKey returns the key of the history blob, namespaced by prefix.
func HistoryKey(prefix string) string {
	return prefix + KeyRecentPasswords
}

// TimezoneKey returns the Redis key for a cached timezone lookup
func TimezoneKey(prefix, clientKey string) string {
	return prefix + KeyPrefixTimezone + clientKey
}
