// Package coordinator implements the multi-device synchronization
// coordinator: device registry, session state machine, conflict detection,
// and pluggable conflict resolution over the SQLite store.
//
// The Coordinator facade wires five stateless operators together:
//   - DeviceRegistry: device identity, capabilities, activity state
//   - SessionManager: Created -> InProgress -> {Completed, Failed}
//   - EntryLog: append-only log of submitted entries
//   - ConflictDetector: divergence check against the latest entry for a
//     logical record
//   - ConflictResolver: policy dispatch (last/first write wins, timestamp,
//     manual review, merge)
//
// All operators hold no entity state of their own; the store owns
// everything. Each operation is an atomic read-modify-write: the store runs
// multi-entity writes in single transactions, and the Coordinator serializes
// operations per user so two concurrent submissions for the same logical
// record cannot both read a stale "latest entry" and miss a conflict.
//
// Timestamps come from a single monotonically non-decreasing Clock shared by
// every operation. Every mutating operation appends an audit event with a
// time-sortable UUIDv7 identity.
package coordinator
