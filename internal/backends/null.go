package backends

import (
	"context"
	"log"

	"meetgogo/backend/internal/models"
)

// nullBackend has no external effect beyond the process log. It is the
// default when no backend is configured.
type nullBackend struct{}

func init() {
	Register("null", func(Deps) (Backend, error) {
		return &nullBackend{}, nil
	})
}

func (b *nullBackend) Name() string { return "null" }

func (b *nullBackend) OnStart(_ context.Context, meeting *models.Meeting, _ models.InboundMessage) error {
	log.Printf("INFO: Meeting %s started in room %s", meeting.MeetingID, meeting.RoomID)
	return nil
}

func (b *nullBackend) OnEnd(_ context.Context, meeting *models.Meeting, entries []models.MeetingLog,
	_ []models.Attendance, _ models.InboundMessage) error {
	log.Printf("INFO: Meeting %s ended in room %s with %d entries", meeting.MeetingID, meeting.RoomID, len(entries))
	return nil
}
