// Package chat defines the boundary to the chat protocol client. The bot
// core never talks to a concrete protocol; everything it needs from the
// room (notices, reactions, uploads, state queries) goes through Client.
package chat

// Client is the interface to the chat protocol (e.g. Telegram, Matrix).
// Implementations are expected to be safe for use from multiple rooms'
// goroutines.
type Client interface {
	// Notify posts a plain notice into the room.
	Notify(roomID, text string) error
	// React attaches a reaction symbol to the message identified by eventID.
	// Reacting twice with the same symbol must succeed both times; duplicate
	// reactions are a benign race, not a fault.
	React(roomID, eventID, symbol string) error
	// UploadFile delivers a rendered document into the room as an attachment.
	UploadFile(roomID, filename, mimeType string, data []byte) error
	// RoomName returns the room's display name, or "" when it has none
	// (direct messages typically don't).
	RoomName(roomID string) (string, error)
	// PowerLevel returns the privilege level of senderRef in the room. It is
	// queried per invocation, never cached.
	PowerLevel(roomID, senderRef string) (int, error)
}
