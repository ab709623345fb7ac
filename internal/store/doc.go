// Package store provides SQLite-backed durable storage for the sync
// coordinator.
//
// The store owns all entity state: devices, sessions, entries, conflicts,
// audit events, the per-user device index, and the four monotonic counters
// that mint sequential identities ("device_1", "entry_1", ...).
//
// Write methods that touch more than one entity run in a single transaction
// so no operation partially applies:
//   - AppendEntry: counter + entry + optional conflict + session counters
//   - CreateSession: counter + session + device last-seen
//   - CompleteSession: session + device sync bump
//   - ApplyResolution: entry update + conflict seal (write-once enforced)
//
// Reads of collections use deterministic ordering (insertion position or
// submission time, id as tiebreak) so results are stable across runs.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - single connection: SQLite has one writer; avoids SQLITE_BUSY
package store
