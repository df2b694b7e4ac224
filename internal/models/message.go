package models

// InboundMessage is one message as delivered by the chat protocol client.
// The body may span multiple lines; the router splits it and processes each
// line independently under the shared timestamp.
type InboundMessage struct {
	RoomID string `json:"room_id"`
	// Sender is the opaque user identifier recorded in the log.
	Sender string `json:"sender"`
	// SenderRef is the protocol-level reference used for privilege lookups
	// and reactions (for Telegram, the numeric user id as a string).
	SenderRef string `json:"sender_ref"`
	// EventID identifies the message for reactions.
	EventID string `json:"event_id"`
	// Timestamp is the submission time in milliseconds since the epoch.
	Timestamp int64  `json:"timestamp"`
	Body      string `json:"body"`
}

// MeetingStarted is the bus message body published when a meeting opens.
type MeetingStarted struct {
	ID        string `json:"id"`
	StartTime int64  `json:"start_time"`
	User      string `json:"user"`
	Location  string `json:"location"`
	Name      string `json:"name"`
}

// LogRef is a (type, url) reference to one rendered log artifact.
type LogRef struct {
	Type string `json:"log_type"`
	URL  string `json:"url"`
}

// MeetingCompleted is the bus message body published when a meeting closes.
type MeetingCompleted struct {
	ID        string       `json:"id"`
	StartTime int64        `json:"start_time"`
	EndTime   int64        `json:"end_time"`
	User      string       `json:"user"`
	Location  string       `json:"location"`
	Name      string       `json:"name"`
	URL       string       `json:"url"`
	Attendees []Attendance `json:"attendees"`
	Chairs    []string     `json:"chairs"`
	Logs      []LogRef     `json:"logs"`
}
