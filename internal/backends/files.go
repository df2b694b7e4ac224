package backends

import (
	"context"
	"log"

	"meetgogo/backend/internal/models"
	"meetgogo/backend/internal/render"
)

// filesBackend renders all document variants and delivers them back into the
// room as uploaded attachments.
type filesBackend struct {
	deps Deps
}

func init() {
	Register("files", func(deps Deps) (Backend, error) {
		return &filesBackend{deps: deps}, nil
	})
}

func (b *filesBackend) Name() string { return "files" }

// renderInput assembles the renderer input shared by the publishing
// backends. The room name lookup is best effort.
func renderInput(deps Deps, meeting *models.Meeting, entries []models.MeetingLog,
	attendance []models.Attendance) render.Input {
	roomName, err := deps.Chat.RoomName(meeting.RoomID)
	if err != nil {
		log.Printf("WARN: Failed to get display name for room %s: %v", meeting.RoomID, err)
	}
	symbols := make(map[string]string, len(deps.Config.Tags))
	for _, tag := range deps.Config.Tags {
		symbols[tag.Label] = tag.Symbol
	}
	return render.Input{
		Meeting:    meeting,
		Entries:    entries,
		Attendance: attendance,
		RoomName:   roomName,
		TagSymbols: symbols,
	}
}

func (b *filesBackend) OnStart(_ context.Context, meeting *models.Meeting, _ models.InboundMessage) error {
	log.Printf("INFO: Meeting %s started in room %s", meeting.MeetingID, meeting.RoomID)
	return nil
}

func (b *filesBackend) OnEnd(_ context.Context, meeting *models.Meeting, entries []models.MeetingLog,
	attendance []models.Attendance, _ models.InboundMessage) error {
	docs := render.Documents(renderInput(b.deps, meeting, entries, attendance))
	for _, doc := range docs {
		if err := b.deps.Chat.UploadFile(meeting.RoomID, doc.Name, doc.MIME, doc.Data); err != nil {
			// One failing upload must not block the remaining documents.
			log.Printf("ERROR: Failed to upload %s to room %s: %v", doc.Name, meeting.RoomID, err)
		}
	}
	return nil
}
