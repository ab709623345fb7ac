package record

// DeviceClass categorizes the hardware form factor of a registered device.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceDesktop DeviceClass = "desktop"
	DeviceTablet  DeviceClass = "tablet"
	DeviceWeb     DeviceClass = "web"
)

// IsValid returns true if the device class is recognized.
func (c DeviceClass) IsValid() bool {
	switch c {
	case DeviceMobile, DeviceDesktop, DeviceTablet, DeviceWeb:
		return true
	default:
		return false
	}
}

// Status tracks the lifecycle of sessions and entries.
//
// Sessions move Created -> InProgress -> {Completed, Failed}; Completed and
// Failed are terminal. Entries are stamped Completed or Conflict at
// submission and only change again during conflict resolution.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusConflict   Status = "conflict"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusConflict:
		return true
	default:
		return false
	}
}

// Terminal returns true for statuses that permit no further session
// transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Policy names a conflict resolution strategy.
type Policy string

const (
	// PolicyLastWriteWins keeps the entry with the later submission timestamp.
	PolicyLastWriteWins Policy = "last_write_wins"

	// PolicyFirstWriteWins keeps the entry with the earlier submission timestamp.
	PolicyFirstWriteWins Policy = "first_write_wins"

	// PolicyTimestampWins settles by timestamp tiebreak. Distinguished from
	// the two above only by audit label.
	PolicyTimestampWins Policy = "timestamp_wins"

	// PolicyManualReview parks the winning entry as pending until a human
	// re-resolves.
	PolicyManualReview Policy = "manual_review"

	// PolicyMergeData concatenates the winning and losing payloads.
	PolicyMergeData Policy = "merge_data"
)

// IsValid returns true if the policy is recognized.
func (p Policy) IsValid() bool {
	switch p {
	case PolicyLastWriteWins, PolicyFirstWriteWins, PolicyTimestampWins, PolicyManualReview, PolicyMergeData:
		return true
	default:
		return false
	}
}

// AllPolicies returns every supported resolution policy.
func AllPolicies() []Policy {
	return []Policy{PolicyLastWriteWins, PolicyFirstWriteWins, PolicyTimestampWins, PolicyManualReview, PolicyMergeData}
}

// ConflictType tags why two entries were found to diverge.
type ConflictType string

const (
	// ConflictData means the fingerprints of the two entries differ.
	ConflictData ConflictType = "data"

	// ConflictTimestamp means the fingerprints match but submission ordering
	// is ambiguous: both entries claim the same prior version.
	ConflictTimestamp ConflictType = "timestamp"

	// ConflictVersion is reserved for device sync-version divergence.
	ConflictVersion ConflictType = "version"
)

// MergeSeparator joins winning and losing payloads under PolicyMergeData.
const MergeSeparator = "|"

// Device is a registered endpoint belonging to a single user.
//
// SyncVersion strictly increases on every successful session completion.
// Devices are never physically deleted, only deactivated.
type Device struct {
	ID           string      `json:"id"`
	User         string      `json:"user"`
	Class        DeviceClass `json:"class"`
	Name         string      `json:"name"`
	Active       bool        `json:"active"`
	Capabilities []string    `json:"capabilities"` // e.g. "read", "write", "delete"
	CreatedAt    int64       `json:"created_at"`
	LastSeen     int64       `json:"last_seen"`
	LastSync     int64       `json:"last_sync"` // 0 until first successful completion
	SyncVersion  int64       `json:"sync_version"`
}

// SyncSession is a bounded batch of submissions from one device.
//
// Immutable once Status is terminal. CompletedAt is 0 while in progress.
type SyncSession struct {
	ID            string `json:"id"`
	User          string `json:"user"`
	DeviceID      string `json:"device_id"`
	StartedAt     int64  `json:"started_at"`
	CompletedAt   int64  `json:"completed_at,omitempty"`
	Status        Status `json:"status"`
	EntriesSynced int64  `json:"entries_synced"`
	Conflicts     int64  `json:"conflicts"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// SyncEntry is one submitted version of a logical record.
//
// Created at submission; mutated only during conflict resolution (status,
// resolution, payload on merge). All other fields are immutable.
type SyncEntry struct {
	ID            string   `json:"id"`
	User          string   `json:"user"`
	DeviceID      string   `json:"device_id"`
	DataType      string   `json:"data_type"` // e.g. "course_progress", "settings", "bookmarks"
	Fingerprint   string   `json:"fingerprint"`
	SubmittedAt   int64    `json:"submitted_at"`
	Status        Status   `json:"status"`
	Resolution    Policy   `json:"resolution,omitempty"`
	ParentEntryID string   `json:"parent_entry_id,omitempty"`
	MergedWith    []string `json:"merged_with,omitempty"`
	Payload       string   `json:"payload"`
}

// SyncConflict records a detected divergence between two entries for the
// same logical record.
//
// The resolution fields (Resolution, ResolvedAt, ResolvedBy, WinningEntryID)
// are set together exactly once and never reset.
type SyncConflict struct {
	ID             string       `json:"id"`
	User           string       `json:"user"`
	EntryID1       string       `json:"entry_id_1"` // the prior entry
	EntryID2       string       `json:"entry_id_2"` // the newly submitted entry
	Type           ConflictType `json:"type"`
	DetectedAt     int64        `json:"detected_at"`
	Resolution     Policy       `json:"resolution,omitempty"`
	ResolvedAt     int64        `json:"resolved_at,omitempty"`
	ResolvedBy     string       `json:"resolved_by,omitempty"`
	WinningEntryID string       `json:"winning_entry_id,omitempty"`
}

// Resolved returns true once the conflict has been sealed.
func (c *SyncConflict) Resolved() bool {
	return c.Resolution != ""
}

// Involves returns true if entryID is one of the conflict's two entries.
func (c *SyncConflict) Involves(entryID string) bool {
	return entryID == c.EntryID1 || entryID == c.EntryID2
}

// OtherEntry returns the conflict entry that is not entryID.
// Callers must check Involves first.
func (c *SyncConflict) OtherEntry(entryID string) string {
	if entryID == c.EntryID1 {
		return c.EntryID2
	}
	return c.EntryID1
}

// Event is an immutable audit record appended for every mutating coordinator
// operation. IDs are UUIDv7, time-sortable.
type Event struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Action    string `json:"action"`     // e.g. "device_registered"
	SubjectID string `json:"subject_id"` // the entity the action touched
	At        int64  `json:"at"`
}
