// Package render turns an ordered meeting log into the output documents:
// a plain text transcript, an HTML transcript, and a minutes view grouped by
// topic. Rendering is pure; delivery is the backends' job.
package render

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"text/template"
	"time"

	"meetgogo/backend/internal/models"

	"github.com/yuin/goldmark"
)

// Input is everything the templates need about a closed meeting.
type Input struct {
	Meeting    *models.Meeting
	Entries    []models.MeetingLog
	Attendance []models.Attendance
	RoomName   string
	// TagSymbols maps tag labels to their configured reaction symbols so the
	// minutes can highlight tagged entries.
	TagSymbols map[string]string
}

// Document is one rendered artifact.
type Document struct {
	Name string
	MIME string
	Data []byte
}

// FormatDate renders a millisecond timestamp as a UTC calendar date.
func FormatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

// FormatTime renders a millisecond timestamp as a UTC clock time.
func FormatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("15:04:05")
}

var commandPrefix = regexp.MustCompile(`^[!^][A-Za-z]+\s*`)

// RemoveCommand strips a leading marker+identifier token, so the minutes
// show "new topic" instead of "!topic new topic".
func RemoveCommand(line string) string {
	return commandPrefix.ReplaceAllString(line, "")
}

// topicGroup is a run of consecutive entries sharing a topic snapshot.
type topicGroup struct {
	Topic   string
	Entries []models.MeetingLog
}

func groupByTopic(entries []models.MeetingLog) []topicGroup {
	var groups []topicGroup
	for _, e := range entries {
		if len(groups) == 0 || groups[len(groups)-1].Topic != e.Topic {
			groups = append(groups, topicGroup{Topic: e.Topic})
		}
		last := &groups[len(groups)-1]
		last.Entries = append(last.Entries, e)
	}
	return groups
}

const textLogTemplate = `{{range .Entries}}{{formatdate .Timestamp}} {{formattime .Timestamp}} | {{.Sender}} | {{.Message}}
{{end}}`

const markdownLogTemplate = `# Meeting Log | {{.Title}}

Time | User | Message
--- | --- | ---
{{range .Entries}}{{formattime .Timestamp}} | {{.Sender}} | {{.Message}}
{{end}}`

const minutesTemplate = `# {{.Meeting.MeetingName}}

Meeting started by {{.StartedBy}} in {{.Location}} on {{.Date}}.

{{range .Groups}}{{if .Topic}}## {{.Topic}}
{{else}}## (no topic)
{{end}}{{range .Entries}}{{if .Tag}}* {{symbol .Tag}} **{{deref .Tag}}**: {{removecommand .Message}} ({{.Sender}}, {{formattime .Timestamp}})
{{end}}{{end}}
{{end}}## People present ({{len .Attendance}})

Name | Messages
--- | ---
{{range .Attendance}}{{.Sender}} | {{.Count}}
{{end}}
## Chairs

{{range .Meeting.Chairs}}* {{.}}
{{end}}`

func funcs(in Input) template.FuncMap {
	return template.FuncMap{
		"formatdate":    FormatDate,
		"formattime":    FormatTime,
		"removecommand": RemoveCommand,
		"symbol": func(tag *string) string {
			if tag == nil {
				return ""
			}
			return in.TagSymbols[*tag]
		},
		"deref": func(tag *string) string {
			if tag == nil {
				return ""
			}
			return *tag
		},
	}
}

func execute(name, text string, in Input, data any) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(funcs(in)).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Title builds the minutes title "Meeting Log | <room> | <date>" from the
// first entry's timestamp.
func Title(in Input) string {
	location := in.RoomName
	if location == "" {
		location = in.Meeting.RoomID
	}
	date := ""
	if len(in.Entries) > 0 {
		date = FormatDate(in.Entries[0].Timestamp)
	}
	return fmt.Sprintf("Meeting Log | %s | %s", location, date)
}

// TextLog renders the plain chronological transcript.
func TextLog(in Input) ([]byte, error) {
	return execute("text_log", textLogTemplate, in, struct {
		Entries []models.MeetingLog
	}{in.Entries})
}

// MarkdownLog renders the transcript as a markdown table.
func MarkdownLog(in Input) ([]byte, error) {
	return execute("markdown_log", markdownLogTemplate, in, struct {
		Title   string
		Entries []models.MeetingLog
	}{Title(in), in.Entries})
}

// Minutes renders the markdown minutes: entries grouped by the topic that
// was active when they were logged, tagged entries highlighted with their
// reaction symbols, attendance and chairs appended.
func Minutes(in Input) ([]byte, error) {
	location := in.RoomName
	if location == "" {
		location = in.Meeting.RoomID
	}
	date := ""
	if len(in.Entries) > 0 {
		date = FormatDate(in.Entries[0].Timestamp)
	}
	startedBy := ""
	if len(in.Meeting.Chairs) > 0 {
		startedBy = in.Meeting.Chairs[0]
	}
	return execute("minutes", minutesTemplate, in, struct {
		Meeting    *models.Meeting
		Groups     []topicGroup
		Attendance []models.Attendance
		Location   string
		Date       string
		StartedBy  string
	}{in.Meeting, groupByTopic(in.Entries), in.Attendance, location, date, startedBy})
}

// HTML converts rendered markdown to an HTML document.
func HTML(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return buf.Bytes(), nil
}

// Documents renders every artifact variant. A failing variant is logged and
// skipped so the others still get produced.
func Documents(in Input) []Document {
	var docs []Document

	if data, err := TextLog(in); err != nil {
		log.Printf("ERROR: Failed to render text log for meeting %s: %v", in.Meeting.MeetingID, err)
	} else {
		docs = append(docs, Document{Name: "text_log.txt", MIME: "text/plain", Data: data})
	}

	if md, err := MarkdownLog(in); err != nil {
		log.Printf("ERROR: Failed to render HTML log for meeting %s: %v", in.Meeting.MeetingID, err)
	} else if html, err := HTML(md); err != nil {
		log.Printf("ERROR: Failed to render HTML log for meeting %s: %v", in.Meeting.MeetingID, err)
	} else {
		docs = append(docs, Document{Name: "html_log.html", MIME: "text/html", Data: html})
	}

	if md, err := Minutes(in); err != nil {
		log.Printf("ERROR: Failed to render minutes for meeting %s: %v", in.Meeting.MeetingID, err)
	} else {
		docs = append(docs, Document{Name: "minutes.md", MIME: "text/markdown", Data: md})
		if html, err := HTML(md); err != nil {
			log.Printf("ERROR: Failed to render HTML minutes for meeting %s: %v", in.Meeting.MeetingID, err)
		} else {
			docs = append(docs, Document{Name: "minutes.html", MIME: "text/html", Data: html})
		}
	}
	return docs
}
