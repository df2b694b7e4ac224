package models

// MeetingLog is one logged line of meeting transcript. Rows are append-only
// and ordered by Timestamp; they are deleted in bulk when the owning meeting
// closes. There is no surrogate key: tag updates address a row by the
// compound (meeting_id, timestamp, message) key.
type MeetingLog struct {
	// MeetingID ties the entry to the meeting it was logged under. Entries
	// briefly outlive the Meeting row during the end-meeting flow.
	MeetingID string `gorm:"type:text;not null;index:idx_meeting_ts"`
	// Timestamp is the submission time in milliseconds since the epoch.
	// All lines of one multi-line message share a timestamp.
	Timestamp int64 `gorm:"not null;index:idx_meeting_ts"`
	// Sender is the opaque identifier of the user who sent the line.
	Sender string `gorm:"type:text;not null"`
	// Message is the exact line text, one row per newline-delimited line.
	Message string `gorm:"type:text;not null"`
	// Tag is the semantic label ("action", "info", ...) set by the tagging
	// engine, at most once per entry. NULL when the line matched no tag.
	Tag *string `gorm:"type:text"`
	// Topic is a snapshot of the meeting topic at the moment the line was
	// logged, so the minutes can group lines under the topic that was active.
	Topic string `gorm:"type:text;default:''"`
}

// Attendance is the per-sender message count for one meeting.
type Attendance struct {
	Sender string `json:"sender"`
	Count  int    `json:"count"`
}
