// Package kv maps the service's records onto a generic key-value store.
//
// Record layout:
//
//	count                   decimal string, never expires
//	daily:<YYYY-MM-DD>      decimal string
//	ratelimit:<client-id>   {"count":n,"windowStart":<epoch ms>}
//	presence:<epochMinute>  ["<hash>", ...]
//	echoes                  ["<text>", ...], oldest first
package kv

import (
	"voidstate/domain/core/valueobjects"
)

const (
	keyGlobalCount = "count"
	keyEchoes      = "echoes"

	prefixDaily     = "daily:"
	prefixRateLimit = "ratelimit:"
	prefixPresence  = "presence:"
)

// DailyKey returns the key of the counter for day (YYYY-MM-DD).
func DailyKey(day string) string {
	return prefixDaily + day
}

// RateLimitKey returns the key of a client's rate window.
func RateLimitKey(client valueobjects.ClientID) string {
	return prefixRateLimit + client.String()
}

// PresenceKey returns the key of a minute bucket.
func PresenceKey(bucket valueobjects.MinuteBucket) string {
	return prefixPresence + bucket.String()
}
