package coordinator

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// EventIDSource mints identities for audit events.
type EventIDSource interface {
	NewID() string
}

// UUIDv7Source generates time-sortable UUIDv7 event identities.
//
// UUIDv7 embeds a timestamp in the most significant bits, so audit events
// sort by creation time even within a single clock tick.
//
// Thread-safety: UUIDv7Source is stateless and safe for concurrent use.
type UUIDv7Source struct{}

// NewID creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Source) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceSource returns "evt-1", "evt-2", ... for deterministic tests and
// golden traces.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceSource struct {
	mu sync.Mutex
	n  int64
}

// NewSequenceSource creates a source whose first ID is "evt-1".
func NewSequenceSource() *SequenceSource {
	return &SequenceSource{}
}

// NewID returns the next sequential event identity.
func (s *SequenceSource) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("evt-%d", s.n)
}
