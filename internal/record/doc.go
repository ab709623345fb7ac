// Package record defines the entities tracked by the sync coordinator.
//
// Four entity kinds exist, all exclusively owned by the store and keyed
// by sequential identities of the form "<kind>_<n>":
//   - Device: a registered endpoint for a user (never deleted, only deactivated)
//   - SyncSession: a bounded unit of sync work with explicit start/complete
//   - SyncEntry: one submitted version of a logical record (append-only)
//   - SyncConflict: a detected divergence between two entries, resolved once
//
// The tuple (user, data type) identifies a logical record. Multiple entries
// may exist for the same logical record over time, forming its version
// history.
//
// Fingerprints are computed in fingerprint.go: SHA-256 with domain separation
// over the NFC-normalized payload, so every device derives the same
// fingerprint for the same content.
package record
