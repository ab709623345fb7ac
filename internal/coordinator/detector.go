package coordinator

import (
	"context"

	"github.com/roach88/devsync/internal/record"
)

// ConflictDetector decides whether a newly submitted entry diverges from
// the logical record's current version.
//
// Detection is a pure query against the entry log; it creates no state.
// The returned conflict (if any) is persisted by the caller in the same
// atomic write as the new entry.
type ConflictDetector struct {
	log *EntryLog
}

// NewConflictDetector creates a detector reading from the given entry log.
func NewConflictDetector(log *EntryLog) *ConflictDetector {
	return &ConflictDetector{log: log}
}

// Detect compares an incoming submission against the most recent completed
// or conflicted entry for the logical record (user, dataType).
//
// Rules:
//   - no prior entry: no conflict
//   - fingerprints differ: "data" conflict
//   - fingerprints match and the prior entry carries the same submission
//     timestamp: "timestamp" conflict (two submissions claim the same prior
//     version; ordering is ambiguous)
//   - fingerprints match otherwise: no conflict (idempotent re-submission
//     of identical content)
//
// When a conflict is found, the returned record carries the prior entry as
// EntryID1; EntryID2 is filled in when the new entry's identity is minted.
func (d *ConflictDetector) Detect(ctx context.Context, user, dataType, fingerprint string, submittedAt int64) (*record.SyncConflict, record.SyncEntry, error) {
	prior, found, err := d.log.Latest(ctx, user, dataType)
	if err != nil {
		return nil, record.SyncEntry{}, err
	}
	if !found {
		return nil, record.SyncEntry{}, nil
	}

	var conflictType record.ConflictType
	switch {
	case prior.Fingerprint != fingerprint:
		conflictType = record.ConflictData
	case prior.SubmittedAt == submittedAt:
		conflictType = record.ConflictTimestamp
	default:
		return nil, prior, nil
	}

	conflict := &record.SyncConflict{
		User:       user,
		EntryID1:   prior.ID,
		Type:       conflictType,
		DetectedAt: submittedAt,
	}
	return conflict, prior, nil
}
