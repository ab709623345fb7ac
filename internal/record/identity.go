package record

import "fmt"

// Kind names an entity collection. Used both for identity formatting and as
// the counter key in the store.
type Kind string

const (
	KindDevice   Kind = "device"
	KindEntry    Kind = "entry"
	KindConflict Kind = "conflict"
	KindSession  Kind = "session"
)

// AllKinds returns every entity kind with a sequential counter.
func AllKinds() []Kind {
	return []Kind{KindDevice, KindEntry, KindConflict, KindSession}
}

// FormatID renders the sequential identity for the n-th entity of a kind.
// Identities are 1-based: the first device is "device_1".
func FormatID(kind Kind, n int64) string {
	return fmt.Sprintf("%s_%d", kind, n)
}
