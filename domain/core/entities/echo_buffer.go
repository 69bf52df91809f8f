package entities

// EchoBuffer is the bounded, duplicate-free sequence of replayable thoughts,
// oldest first.
type EchoBuffer struct {
	entries []string
}

// NewEchoBuffer wraps stored entries. The slice is copied.
func NewEchoBuffer(entries []string) *EchoBuffer {
	cp := make([]string, len(entries))
	copy(cp, entries)
	return &EchoBuffer{entries: cp}
}

// Entries returns a copy of the buffered echoes.
func (b *EchoBuffer) Entries() []string {
	cp := make([]string, len(b.entries))
	copy(cp, b.entries)
	return cp
}

// Len returns the number of buffered echoes
func (b *EchoBuffer) Len() int {
	return len(b.entries)
}

// Contains reports an exact-string match.
func (b *EchoBuffer) Contains(text string) bool {
	for _, e := range b.entries {
		if e == text {
			return true
		}
	}
	return false
}

// Append adds text unless it is already buffered, then drops the oldest
// entries so at most max remain. It reports whether the buffer changed.
func (b *EchoBuffer) Append(text string, max int) bool {
	if b.Contains(text) {
		return false
	}
	b.entries = append(b.entries, text)
	if max > 0 && len(b.entries) > max {
		b.entries = append([]string(nil), b.entries[len(b.entries)-max:]...)
	}
	return true
}

// At returns the echo at index i.
func (b *EchoBuffer) At(i int) string {
	return b.entries[i]
}
