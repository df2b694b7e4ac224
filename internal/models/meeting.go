package models

import (
	"github.com/lib/pq" // required for pq.StringArray
)

// Meeting represents the one open meeting session in a room. A row exists
// if and only if a meeting is in progress; starting a meeting inserts it and
// ending the meeting deletes it together with its log entries.
type Meeting struct {
	// RoomID is the identifier of the room the meeting runs in. One meeting
	// per room at a time, hence the primary key.
	RoomID string `gorm:"primaryKey"`
	// MeetingID is the derived key "<room_id>-<YYYY-MM-DD>". It stays stable
	// for the whole lifetime of the session, even across midnight.
	MeetingID string `gorm:"type:text;not null;index"`
	// Topic is the currently active topic, mutable via the topic command.
	Topic string `gorm:"type:text;default:''"`
	// MeetingName is the display name of the meeting. Defaults to the room's
	// display name when the start command carries no argument.
	MeetingName string `gorm:"type:text;not null"`
	// Chairs are the meeting chairs. The user who started the meeting is the
	// implicit first chair.
	Chairs pq.StringArray `gorm:"type:text[]"`
}
