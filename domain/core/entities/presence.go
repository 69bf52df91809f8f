package entities

import "voidstate/domain/core/valueobjects"

// PresenceSet holds the distinct client hashes seen during one minute bucket.
type PresenceSet struct {
	Bucket  valueobjects.MinuteBucket
	members []valueobjects.ClientHash
}

// NewPresenceSet wraps the stored members of a bucket.
func NewPresenceSet(bucket valueobjects.MinuteBucket, members []valueobjects.ClientHash) *PresenceSet {
	cp := make([]valueobjects.ClientHash, len(members))
	copy(cp, members)
	return &PresenceSet{Bucket: bucket, members: cp}
}

// Members returns a copy of the stored hashes in insertion order.
func (s *PresenceSet) Members() []valueobjects.ClientHash {
	cp := make([]valueobjects.ClientHash, len(s.members))
	copy(cp, s.members)
	return cp
}

// Has reports membership
func (s *PresenceSet) Has(h valueobjects.ClientHash) bool {
	for _, m := range s.members {
		if m == h {
			return true
		}
	}
	return false
}

// Add appends h when absent and reports whether the set changed.
func (s *PresenceSet) Add(h valueobjects.ClientHash) bool {
	if s.Has(h) {
		return false
	}
	s.members = append(s.members, h)
	return true
}

// UnionCount returns the number of distinct hashes across all sets. Nil sets
// are treated as empty.
func UnionCount(sets ...*PresenceSet) int {
	seen := make(map[valueobjects.ClientHash]struct{})
	for _, s := range sets {
		if s == nil {
			continue
		}
		for _, m := range s.members {
			seen[m] = struct{}{}
		}
	}
	return len(seen)
}
