package render_test

import (
	"strings"
	"testing"

	"meetgogo/backend/internal/models"
	"meetgogo/backend/internal/render"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagged(label string) *string { return &label }

func sampleInput() render.Input {
	meeting := &models.Meeting{
		RoomID:      "-100200300",
		MeetingID:   "-100200300-2021-06-01",
		MeetingName: "Weekly Sync",
		Chairs:      pq.StringArray{"@alice"},
	}
	// 2021-06-01 12:00:00 UTC and a minute later.
	base := int64(1622548800000)
	entries := []models.MeetingLog{
		{MeetingID: meeting.MeetingID, Timestamp: base, Sender: "@alice", Message: "!startmeeting Weekly Sync"},
		{MeetingID: meeting.MeetingID, Timestamp: base + 60000, Sender: "@alice", Message: "^action fix the bug", Tag: tagged("action")},
		{MeetingID: meeting.MeetingID, Timestamp: base + 120000, Sender: "@bob", Message: "!topic release", Topic: "release"},
		{MeetingID: meeting.MeetingID, Timestamp: base + 180000, Sender: "@bob", Message: "^agreed ship on Friday", Tag: tagged("agreed"), Topic: "release"},
	}
	return render.Input{
		Meeting:  meeting,
		Entries:  entries,
		RoomName: "Engineering",
		Attendance: []models.Attendance{
			{Sender: "@bob", Count: 2},
			{Sender: "@alice", Count: 2},
		},
		TagSymbols: map[string]string{"action": "🚩", "agreed": "👍"},
	}
}

func TestFormatDateAndTime(t *testing.T) {
	assert.Equal(t, "2021-06-01", render.FormatDate(1622548800000))
	assert.Equal(t, "12:00:00", render.FormatTime(1622548800000))
	assert.Equal(t, "1970-01-01", render.FormatDate(0))
}

func TestRemoveCommand(t *testing.T) {
	assert.Equal(t, "new topic", render.RemoveCommand("!topic new topic"))
	assert.Equal(t, "fix the bug", render.RemoveCommand("^action fix the bug"))
	assert.Equal(t, "plain line", render.RemoveCommand("plain line"))
}

func TestTitle(t *testing.T) {
	in := sampleInput()
	assert.Equal(t, "Meeting Log | Engineering | 2021-06-01", render.Title(in))

	in.RoomName = ""
	assert.Equal(t, "Meeting Log | -100200300 | 2021-06-01", render.Title(in))
}

func TestTextLog(t *testing.T) {
	data, err := render.TextLog(sampleInput())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "2021-06-01 12:00:00 | @alice | !startmeeting Weekly Sync", lines[0])
	assert.Equal(t, "2021-06-01 12:01:00 | @alice | ^action fix the bug", lines[1])
}

func TestMarkdownLog(t *testing.T) {
	data, err := render.MarkdownLog(sampleInput())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "# Meeting Log | Engineering | 2021-06-01")
	assert.Contains(t, out, "12:02:00 | @bob | !topic release")
}

func TestMinutes_GroupsByTopicRuns(t *testing.T) {
	data, err := render.Minutes(sampleInput())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# Weekly Sync")
	assert.Contains(t, out, "Meeting started by @alice in Engineering on 2021-06-01.")

	// Untopiced preamble comes first, then the release run.
	noTopic := strings.Index(out, "## (no topic)")
	release := strings.Index(out, "## release")
	require.GreaterOrEqual(t, noTopic, 0)
	require.Greater(t, release, noTopic)

	// Tagged entries carry their symbol and the stripped message text.
	assert.Contains(t, out, "🚩 **action**: fix the bug (@alice, 12:01:00)")
	assert.Contains(t, out, "👍 **agreed**: ship on Friday (@bob, 12:03:00)")
	// Untagged lines are not minute items.
	assert.NotContains(t, out, "!startmeeting")
}

func TestMinutes_AttendanceAndChairs(t *testing.T) {
	data, err := render.Minutes(sampleInput())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "## People present (2)")
	// Attendance rows keep the order the storage layer gave them.
	bob := strings.Index(out, "@bob | 2")
	alice := strings.Index(out, "@alice | 2")
	require.GreaterOrEqual(t, bob, 0)
	require.Greater(t, alice, bob)

	assert.Contains(t, out, "## Chairs")
	assert.Contains(t, out, "* @alice")
}

func TestHTML(t *testing.T) {
	html, err := render.HTML([]byte("# Heading\n\nsome *emphasis*\n"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>Heading</h1>")
	assert.Contains(t, string(html), "<em>emphasis</em>")
}

func TestDocuments_ProducesAllVariants(t *testing.T) {
	docs := render.Documents(sampleInput())

	require.Len(t, docs, 4)
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Data)
		assert.NotEmpty(t, d.MIME)
	}
	assert.Equal(t, []string{"text_log.txt", "html_log.html", "minutes.md", "minutes.html"}, names)
}

func TestDocuments_EmptyMeeting(t *testing.T) {
	in := sampleInput()
	in.Entries = nil
	in.Attendance = nil

	docs := render.Documents(in)
	require.Len(t, docs, 4)

	text, err := render.TextLog(in)
	require.NoError(t, err)
	assert.Equal(t, "", string(text))
}
