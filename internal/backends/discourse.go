package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"meetgogo/backend/internal/config"
	"meetgogo/backend/internal/models"
	"meetgogo/backend/internal/render"
)

// discourseBackend uploads the raw transcript to a Discourse instance and
// creates a forum post with the minutes linking to it. Non-200 responses are
// soft failures: logged, reported to the room, never fatal to cleanup.
type discourseBackend struct {
	deps Deps
	data config.DiscourseData
}

func init() {
	Register("discourse", func(deps Deps) (Backend, error) {
		data := deps.Config.BackendData.Discourse
		if data.URL == "" || data.User == "" || data.Key == "" {
			return nil, fmt.Errorf("discourse backend requires discourse_url, discourse_user and discourse_key")
		}
		return &discourseBackend{deps: deps, data: data}, nil
	})
}

func (b *discourseBackend) Name() string { return "discourse" }

func (b *discourseBackend) authorize(req *http.Request) {
	req.Header.Set("Api-Key", b.data.Key)
	req.Header.Set("Api-Username", b.data.User)
}

// uploadLog posts the transcript to /uploads.json and returns the markdown
// attachment link, or "" on soft failure.
func (b *discourseBackend) uploadLog(ctx context.Context, logData []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("type", "text"); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("files[]", "full_log.txt")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(logData); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.data.URL+"/uploads.json", &body)
	if err != nil {
		return "", err
	}
	b.authorize(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := b.deps.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(res.Body)
		log.Printf("WARN: Discourse upload returned %d: %s", res.StatusCode, payload)
		return "", nil
	}
	var upload struct {
		ShortURL string `json:"short_url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&upload); err != nil {
		return "", err
	}
	return fmt.Sprintf("[full_log.txt|attachment](%s)", upload.ShortURL), nil
}

// createPost posts the minutes to /posts and returns the topic id, or 0 on
// soft failure.
func (b *discourseBackend) createPost(ctx context.Context, title, raw string) (int, error) {
	form := url.Values{}
	form.Set("title", title)
	form.Set("raw", raw)
	form.Set("category", strconv.Itoa(b.data.CategoryID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.data.URL+"/posts",
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return 0, err
	}
	b.authorize(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := b.deps.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	log.Printf("INFO: Discourse POST: %d", res.StatusCode)
	if res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(res.Body)
		log.Printf("WARN: Discourse post returned %d: %s", res.StatusCode, payload)
		return 0, nil
	}
	var post struct {
		TopicID int `json:"topic_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&post); err != nil {
		return 0, err
	}
	return post.TopicID, nil
}

func (b *discourseBackend) OnStart(_ context.Context, meeting *models.Meeting, _ models.InboundMessage) error {
	log.Printf("INFO: Meeting %s started in room %s, will post to Discourse as %s",
		meeting.MeetingID, meeting.RoomID, b.data.User)
	return nil
}

func (b *discourseBackend) OnEnd(ctx context.Context, meeting *models.Meeting, entries []models.MeetingLog,
	attendance []models.Attendance, _ models.InboundMessage) error {
	if len(entries) == 0 {
		log.Printf("INFO: Meeting %s has no entries", meeting.MeetingID)
		return b.deps.Chat.Notify(meeting.RoomID, "No logs to post to Discourse")
	}

	in := renderInput(b.deps, meeting, entries, attendance)

	logData, err := render.TextLog(in)
	if err != nil {
		return err
	}
	logLink, err := b.uploadLog(ctx, logData)
	if err != nil {
		log.Printf("ERROR: Discourse upload failed for meeting %s: %v", meeting.MeetingID, err)
	}

	minutes, err := render.Minutes(in)
	if err != nil {
		return err
	}
	raw := string(minutes)
	if logLink != "" {
		raw += "\n\nFull log available here: " + logLink
	}

	topicID, err := b.createPost(ctx, render.Title(in), raw)
	if err != nil {
		log.Printf("ERROR: Discourse post failed for meeting %s: %v", meeting.MeetingID, err)
	}
	if topicID == 0 {
		return b.deps.Chat.Notify(meeting.RoomID, "Could not post the meeting logs to Discourse")
	}

	topicURL := fmt.Sprintf("%s/t/%d", b.data.URL, topicID)
	return b.deps.Chat.Notify(meeting.RoomID, fmt.Sprintf("Logs posted to Discourse: %s", topicURL))
}
