package backends

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"meetgogo/backend/internal/config"
	"meetgogo/backend/internal/models"
	"meetgogo/backend/internal/render"
)

// archiveBackend writes the rendered documents under a per-room/per-date
// directory and announces their URLs in the room. When the filesystem write
// fails, delivery degrades to in-room uploads and the room is told so.
type archiveBackend struct {
	deps Deps
	data config.ArchiveData
}

func init() {
	Register("archive", func(deps Deps) (Backend, error) {
		data := deps.Config.BackendData.Archive
		if data.Root == "" {
			return nil, fmt.Errorf("archive backend requires backend_data.archive.root")
		}
		return &archiveBackend{deps: deps, data: data}, nil
	})
}

func (b *archiveBackend) Name() string { return "archive" }

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify reduces a room identifier to a filesystem- and URL-safe path
// segment.
func slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// writeArchive stores the documents under <root>/<slug(room)>/<date>/ and
// returns one LogRef per successfully written document. Failures are
// per-document; the returned error is non-nil only when nothing could be
// written at all.
func writeArchive(data config.ArchiveData, meeting *models.Meeting, date string,
	docs []render.Document) ([]models.LogRef, error) {
	dir := filepath.Join(data.Root, slugify(meeting.RoomID), date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}

	var refs []models.LogRef
	var lastErr error
	for _, doc := range docs {
		path := filepath.Join(dir, doc.Name)
		if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
			log.Printf("ERROR: Failed to write %s: %v", path, err)
			lastErr = err
			continue
		}
		refs = append(refs, models.LogRef{
			Type: doc.Name,
			URL:  fmt.Sprintf("%s/%s/%s/%s", strings.TrimSuffix(data.BaseURL, "/"), slugify(meeting.RoomID), date, doc.Name),
		})
	}
	if len(refs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return refs, nil
}

func (b *archiveBackend) OnStart(_ context.Context, meeting *models.Meeting, _ models.InboundMessage) error {
	log.Printf("INFO: Meeting %s started in room %s", meeting.MeetingID, meeting.RoomID)
	return nil
}

func (b *archiveBackend) OnEnd(_ context.Context, meeting *models.Meeting, entries []models.MeetingLog,
	attendance []models.Attendance, _ models.InboundMessage) error {
	in := renderInput(b.deps, meeting, entries, attendance)
	docs := render.Documents(in)

	date := ""
	if len(entries) > 0 {
		date = render.FormatDate(entries[0].Timestamp)
	}

	refs, err := writeArchive(b.data, meeting, date, docs)
	if err != nil {
		// Degrade to in-room delivery rather than failing the whole
		// end-meeting flow.
		log.Printf("ERROR: Archive write failed for meeting %s, falling back to uploads: %v", meeting.MeetingID, err)
		for _, doc := range docs {
			if upErr := b.deps.Chat.UploadFile(meeting.RoomID, doc.Name, doc.MIME, doc.Data); upErr != nil {
				log.Printf("ERROR: Failed to upload %s to room %s: %v", doc.Name, meeting.RoomID, upErr)
			}
		}
		if nErr := b.deps.Chat.Notify(meeting.RoomID,
			"Warning: could not archive the meeting documents; they were uploaded to the room instead"); nErr != nil {
			log.Printf("ERROR: Failed to notify room %s: %v", meeting.RoomID, nErr)
		}
		return nil
	}

	var lines []string
	for _, ref := range refs {
		lines = append(lines, fmt.Sprintf("%s: %s", ref.Type, ref.URL))
	}
	if err := b.deps.Chat.Notify(meeting.RoomID, "Meeting documents:\n"+strings.Join(lines, "\n")); err != nil {
		log.Printf("ERROR: Failed to notify room %s: %v", meeting.RoomID, err)
	}
	return nil
}
