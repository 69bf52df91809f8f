package valueobjects

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// UnknownClient is the identity shared by every caller without a trusted
// source address header.
const UnknownClient = "unknown"

// ClientID identifies a caller for rate limiting. It is the raw source
// address and must never be persisted outside rate limit keys.
type ClientID string

// NewClientID normalises an address, falling back to UnknownClient.
func NewClientID(addr string) ClientID {
	if addr == "" {
		return ClientID(UnknownClient)
	}
	return ClientID(addr)
}

// String implements fmt.Stringer
func (c ClientID) String() string {
	return string(c)
}

// Hash one-way hashes the address with salt and keeps the first n bytes as
// lowercase hex. Collisions are tolerated; this is an approximation aid, not
// a security boundary.
func (c ClientID) Hash(salt string, n int) ClientHash {
	sum := sha256.Sum256([]byte(string(c) + salt))
	if n <= 0 || n > len(sum) {
		n = len(sum)
	}
	return ClientHash(hex.EncodeToString(sum[:n]))
}

// ClientHash is the opaque, persisted form of a client identity.
type ClientHash string

// MinuteBucket is a wall-clock minute counted from the Unix epoch.
type MinuteBucket int64

// MinuteBucketAt returns the bucket containing t.
func MinuteBucketAt(t time.Time) MinuteBucket {
	return MinuteBucket(t.Unix() / 60)
}

// Previous returns the bucket immediately before b.
func (b MinuteBucket) Previous() MinuteBucket {
	return b - 1
}

// String implements fmt.Stringer
func (b MinuteBucket) String() string {
	return strconv.FormatInt(int64(b), 10)
}

// DayKey returns the UTC calendar date of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
